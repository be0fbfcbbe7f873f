package chunking

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StrategySemantic = "semantic"
	StrategyFixed    = "fixed"
)

var ErrUnknownStrategy = errors.New("unknown chunk strategy")

// Chunk is one ordered slice of the source text handed to the model in a single call.
type Chunk struct {
	Index int
	Total int
	Text  string
}

// Segmenter splits cleaned text into ordered, non-empty chunks.
type Segmenter interface {
	Split(text string) []Chunk
	Name() string
}

// NewSegmenter returns the segmenter for strategy.
func NewSegmenter(strategy string, budget ChunkBudget) (Segmenter, error) {
	switch strategy {
	case StrategySemantic:
		return NewSemanticSegmenter(budget), nil
	case StrategyFixed:
		return NewFixedSegmenter(budget), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// finalize drops blank pieces, trims the rest, and numbers them.
func finalize(pieces []string) []Chunk {
	chunks := make([]Chunk, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: p})
	}
	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// tail returns the last n runes of s.
func tail(s []rune, n int) []rune {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
