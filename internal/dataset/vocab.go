package dataset

import "sort"

// Reserved vocabulary slots.
const (
	// PadID pads short sequences.
	PadID = 0
	// UnknownID stands in for out-of-vocabulary words.
	UnknownID   = 1
	reservedIDs = 2
)

// Vocabulary maps words to dense IDs. IDs 0 and 1 are reserved for
// padding and unknown words.
type Vocabulary struct {
	ids   map[string]int
	words []string
}

// BuildVocabulary assigns IDs to the maxSize-2 most frequent words of the
// corpus (two slots are reserved). Ties break alphabetically so the
// vocabulary is deterministic.
func BuildVocabulary(texts []string, maxSize int) *Vocabulary {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, w := range SplitWords(text) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if keep := maxSize - reservedIDs; len(words) > keep {
		words = words[:keep]
	}

	v := &Vocabulary{ids: make(map[string]int, len(words)), words: words}
	for i, w := range words {
		v.ids[w] = i + reservedIDs
	}
	return v
}

// ID returns the word's ID, or UnknownID for out-of-vocabulary words.
func (v *Vocabulary) ID(word string) int {
	if id, ok := v.ids[word]; ok {
		return id
	}
	return UnknownID
}

// Size returns the number of IDs including the reserved slots.
func (v *Vocabulary) Size() int { return len(v.words) + reservedIDs }
