package chunking

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// TokenCounter reports how many model tokens a piece of text costs.
type TokenCounter interface {
	CountTokens(text string) int
}

// HeuristicCounter estimates tokens as CharsPerToken characters per token, rounded up.
type HeuristicCounter struct{}

func (HeuristicCounter) CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// BPECounter counts tokens with a tiktoken BPE encoding.
type BPECounter struct {
	tk *tiktoken.Tiktoken
}

func init() {
	// Embedded dictionaries; no network access at runtime.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

func NewBPECounter(encoding string) (*BPECounter, error) {
	tk, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding %q: %w", encoding, err)
	}
	return &BPECounter{tk: tk}, nil
}

func (c *BPECounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(c.tk.Encode(text, nil, nil))
}

// NewTokenCounter returns a BPE counter for encoding, or the heuristic when encoding is empty.
func NewTokenCounter(encoding string) (TokenCounter, error) {
	if encoding == "" {
		return HeuristicCounter{}, nil
	}
	return NewBPECounter(encoding)
}
