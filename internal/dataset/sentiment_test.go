package dataset

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/chalk-ml/chalk/internal/tensor"
)

func TestBuildVocabulary(t *testing.T) {
	vocab := BuildVocabulary([]string{
		"the cat sat",
		"the cat ran",
		"the dog barked",
	}, 10)

	// "the" appears three times, "cat" twice: most frequent come first
	// after the two reserved slots.
	if got := vocab.ID("the"); got != 2 {
		t.Errorf(`ID("the") = %d, want 2`, got)
	}
	if got := vocab.ID("cat"); got != 3 {
		t.Errorf(`ID("cat") = %d, want 3`, got)
	}
	if got := vocab.ID("zebra"); got != UnknownID {
		t.Errorf("unknown word should map to %d, got %d", UnknownID, got)
	}
	// the, cat, barked, dog, ran, sat + 2 reserved
	if vocab.Size() != 8 {
		t.Errorf("size = %d, want 8", vocab.Size())
	}
}

func TestBuildVocabulary_CapsSize(t *testing.T) {
	vocab := BuildVocabulary([]string{"a a a b b c d e f"}, 4)
	if vocab.Size() != 4 {
		t.Fatalf("size = %d, want 4", vocab.Size())
	}
	// Only the two most frequent words survive.
	if vocab.ID("a") == UnknownID || vocab.ID("b") == UnknownID {
		t.Error("most frequent words must stay in a capped vocabulary")
	}
	if vocab.ID("f") != UnknownID {
		t.Error("rare words must fall out of a capped vocabulary")
	}
}

func TestWordTokenizer_Encode(t *testing.T) {
	vocab := BuildVocabulary([]string{"good movie, bad movie"}, 10)
	tok := NewWordTokenizer(vocab)

	ids, err := tok.Encode("Good... MOVIE!")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d tokens, want 2", len(ids))
	}
	if ids[0] != vocab.ID("good") || ids[1] != vocab.ID("movie") {
		t.Errorf("ids = %v: case and punctuation must not matter", ids)
	}
}

func TestTokenizeBatch_PadAndTruncate(t *testing.T) {
	vocab := BuildVocabulary([]string{"a b c d e"}, 10)
	tok := NewWordTokenizer(vocab)

	out, err := TokenizeBatch([]string{"a b", "a b c d e"}, tok, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape = %v, want [2, 3]", out.Shape())
	}
	// Short text padded with PadID on the right.
	if out.Data()[2] != PadID {
		t.Errorf("position 2 of short text = %f, want pad", out.Data()[2])
	}
	// Long text truncated to the first three tokens.
	if int(out.Data()[3+2]) != vocab.ID("c") {
		t.Errorf("truncation kept the wrong tokens: %v", out.Data()[3:])
	}
}

func TestLoadSentiment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reviews.tsv")
	content := "1\tgreat film loved it\n0\tterrible waste of time\n\n1\tgreat great great\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	vocab := BuildVocabulary([]string{"great film loved it terrible waste of time"}, 20)
	set, err := LoadSentiment(path, NewWordTokenizer(vocab), 5)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("len = %d, want 3 (blank lines skipped)", set.Len())
	}
	if set.Labels[0] != 1 || set.Labels[1] != 0 {
		t.Errorf("labels = %v, want [1 0 1]", set.Labels)
	}
	if !set.Tokens.Shape().Equal(tensor.Shape{3, 5}) {
		t.Errorf("token shape = %v, want [3, 5]", set.Tokens.Shape())
	}
}

func TestLoadSentiment_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tsv")
	if err := os.WriteFile(path, []byte("no tab separator here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	vocab := BuildVocabulary(nil, 10)
	if _, err := LoadSentiment(path, NewWordTokenizer(vocab), 5); err == nil {
		t.Error("line without a tab should fail")
	}
}

func TestBatcher_CoversEveryExampleOnce(t *testing.T) {
	inputs := tensor.MustFromSlice([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{5, 2})
	labels := []int{0, 1, 2, 3, 4}
	b := NewBatcher(inputs, labels, 2, rand.New(rand.NewSource(1)))

	if b.Batches() != 3 {
		t.Fatalf("batches = %d, want 3", b.Batches())
	}

	seen := make(map[int]bool)
	total := 0
	for {
		batch, ok := b.Next()
		if !ok {
			break
		}
		for i, label := range batch.Labels {
			seen[label] = true
			// Inputs must travel with their labels through the shuffle.
			if batch.Inputs.Data()[i*2] != float64(label*2) {
				t.Errorf("label %d paired with input %f", label, batch.Inputs.Data()[i*2])
			}
		}
		total += len(batch.Labels)
	}
	if total != 5 || len(seen) != 5 {
		t.Errorf("saw %d examples (%d distinct), want 5", total, len(seen))
	}

	// Reset starts a fresh epoch.
	b.Reset()
	if _, ok := b.Next(); !ok {
		t.Error("Next after Reset should yield a batch")
	}
}

func TestBatcher_NoShuffleKeepsOrder(t *testing.T) {
	inputs := tensor.MustFromSlice([]float64{0, 1, 2}, tensor.Shape{3, 1})
	b := NewBatcher(inputs, []int{0, 1, 2}, 2, nil)

	batch, _ := b.Next()
	if batch.Labels[0] != 0 || batch.Labels[1] != 1 {
		t.Errorf("first batch labels = %v, want [0 1]", batch.Labels)
	}
	batch, _ = b.Next()
	if len(batch.Labels) != 1 || batch.Labels[0] != 2 {
		t.Errorf("final short batch labels = %v, want [2]", batch.Labels)
	}
}
