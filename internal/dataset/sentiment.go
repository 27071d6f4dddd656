package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// TextSet is a tokenized text dataset: Tokens [N, maxLen] of token IDs
// stored as float64 (padded with PadID, truncated on the right), Labels
// as class indices.
type TextSet struct {
	Tokens *tensor.Tensor
	Labels []int
	MaxLen int
}

// Len returns the number of examples.
func (s *TextSet) Len() int { return len(s.Labels) }

// LoadSentiment reads a label<TAB>text file, one example per line, and
// tokenizes every line to exactly maxLen IDs.
func LoadSentiment(path string, tok Tokenizer, maxLen int) (*TextSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var texts []string
	var labels []int

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		label, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected label<TAB>text", lineNo)
		}
		cls, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad label %q: %w", lineNo, label, err)
		}
		texts = append(texts, text)
		labels = append(labels, cls)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tokens, err := TokenizeBatch(texts, tok, maxLen)
	if err != nil {
		return nil, err
	}
	return &TextSet{Tokens: tokens, Labels: labels, MaxLen: maxLen}, nil
}

// TokenizeBatch encodes every text and pads or right-truncates it to
// maxLen, returning [len(texts), maxLen].
func TokenizeBatch(texts []string, tok Tokenizer, maxLen int) (*tensor.Tensor, error) {
	out := tensor.New(tensor.Shape{len(texts), maxLen})
	data := out.Data()
	for i, text := range texts {
		ids, err := tok.Encode(text)
		if err != nil {
			return nil, fmt.Errorf("tokenize example %d: %w", i, err)
		}
		if len(ids) > maxLen {
			ids = ids[:maxLen]
		}
		for j, id := range ids {
			data[i*maxLen+j] = float64(id)
		}
		// Remaining positions stay at PadID (zero).
	}
	return out, nil
}

// Split cuts the set in two at index n: [0, n) and [n, Len).
func (s *TextSet) Split(n int) (*TextSet, *TextSet, error) {
	if n < 0 || n > s.Len() {
		return nil, nil, fmt.Errorf("split index %d out of range [0, %d]", n, s.Len())
	}
	first := tensor.New(tensor.Shape{n, s.MaxLen})
	copy(first.Data(), s.Tokens.Data()[:n*s.MaxLen])
	second := tensor.New(tensor.Shape{s.Len() - n, s.MaxLen})
	copy(second.Data(), s.Tokens.Data()[n*s.MaxLen:])

	return &TextSet{Tokens: first, Labels: s.Labels[:n], MaxLen: s.MaxLen},
		&TextSet{Tokens: second, Labels: s.Labels[n:], MaxLen: s.MaxLen}, nil
}
