package dataset

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts text into token IDs for the embedding layer.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int
}

// WordTokenizer splits text on whitespace and punctuation, lowercases it
// and maps each word through a fixed vocabulary. Unknown words map to the
// vocabulary's unknown ID.
type WordTokenizer struct {
	vocab *Vocabulary
}

// NewWordTokenizer creates a word-level tokenizer over vocab.
func NewWordTokenizer(vocab *Vocabulary) *WordTokenizer {
	return &WordTokenizer{vocab: vocab}
}

// SplitWords lowercases text and splits it into word tokens, dropping
// punctuation. Shared by tokenization and vocabulary building.
func SplitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// Encode maps every word of text through the vocabulary.
func (t *WordTokenizer) Encode(text string) ([]int, error) {
	words := SplitWords(text)
	ids := make([]int, len(words))
	for i, w := range words {
		ids[i] = t.vocab.ID(w)
	}
	return ids, nil
}

// VocabSize returns the vocabulary size.
func (t *WordTokenizer) VocabSize() int { return t.vocab.Size() }

// BPETokenizer wraps a tiktoken byte-pair encoding. Token IDs above the
// embedding capacity are folded with modulo so any encoding can feed a
// fixed-size embedding table.
type BPETokenizer struct {
	encoding *tiktoken.Tiktoken
	capacity int
}

// NewBPETokenizer loads a tiktoken encoding, e.g. "cl100k_base", and caps
// token IDs at capacity.
func NewBPETokenizer(encodingName string, capacity int) (*BPETokenizer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bpe tokenizer: capacity must be positive, got %d", capacity)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &BPETokenizer{encoding: encoding, capacity: capacity}, nil
}

// Encode converts text to capped token IDs.
func (t *BPETokenizer) Encode(text string) ([]int, error) {
	raw := t.encoding.Encode(text, nil, nil)
	ids := make([]int, len(raw))
	for i, id := range raw {
		ids[i] = id % t.capacity
	}
	return ids, nil
}

// VocabSize returns the embedding capacity, not the underlying BPE
// vocabulary size.
func (t *BPETokenizer) VocabSize() int { return t.capacity }
