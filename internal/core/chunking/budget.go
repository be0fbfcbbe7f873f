package chunking

import (
	"errors"
	"fmt"

	"deep-research/config"
	"deep-research/pkg/logger"
)

// Token reserves carved out of the model context before any document text is placed in it.
const (
	SystemPromptReserve  = 2000
	UserQuestionReserve  = 1000
	SafetyMarginReserve  = 1000
	MinChunkChars        = 1000
	MinOverlapChars      = 200
	OverlapDivisor       = 10
	reservedPromptTokens = SystemPromptReserve + UserQuestionReserve + SafetyMarginReserve
)

// CharsPerToken approximates how many characters one model token covers.
// It is a heuristic, not a tokenizer count.
const CharsPerToken = 4

var ErrInvalidBudget = errors.New("invalid chunk budget")

// BudgetInput is the static model configuration a ChunkBudget is derived from.
type BudgetInput struct {
	ContextLength  int // model context window, tokens
	OutputReserve  int // tokens reserved for each chunk's output
	MaxChunkSize   int // configured ceiling for chunk size, chars
	MaxOverlapSize int // configured ceiling for overlap, chars
}

// ChunkBudget holds the chunk and overlap sizes in characters. It is immutable once built.
type ChunkBudget struct {
	maxChunkChars int
	overlapChars  int
}

// NewChunkBudget builds a budget from explicit sizes.
func NewChunkBudget(maxChunkChars, overlapChars int) (ChunkBudget, error) {
	if maxChunkChars <= 0 || overlapChars <= 0 {
		return ChunkBudget{}, fmt.Errorf("%w: sizes must be positive (chunk=%d, overlap=%d)", ErrInvalidBudget, maxChunkChars, overlapChars)
	}
	if overlapChars >= maxChunkChars {
		return ChunkBudget{}, fmt.Errorf("%w: overlap %d must be smaller than chunk %d", ErrInvalidBudget, overlapChars, maxChunkChars)
	}
	return ChunkBudget{maxChunkChars: maxChunkChars, overlapChars: overlapChars}, nil
}

func (b ChunkBudget) MaxChunkChars() int { return b.maxChunkChars }
func (b ChunkBudget) OverlapChars() int  { return b.overlapChars }

// AvailableTokens returns how many tokens of document text fit into one call.
// It may be zero or negative for small models.
func (in BudgetInput) AvailableTokens() int {
	return in.ContextLength - reservedPromptTokens - in.OutputReserve
}

// CalculateBudget derives chunk and overlap sizes from a model context window.
//
// Small models whose context cannot hold the fixed reserves fall back to the
// MinChunkChars floor instead of failing.
func CalculateBudget(in BudgetInput) (ChunkBudget, error) {
	switch {
	case in.ContextLength <= 0:
		return ChunkBudget{}, fmt.Errorf("%w: context length must be positive, got %d", ErrInvalidBudget, in.ContextLength)
	case in.OutputReserve < 0:
		return ChunkBudget{}, fmt.Errorf("%w: output reserve must not be negative, got %d", ErrInvalidBudget, in.OutputReserve)
	case in.MaxChunkSize <= 0 || in.MaxOverlapSize <= 0:
		return ChunkBudget{}, fmt.Errorf("%w: configured chunk=%d overlap=%d must be positive", ErrInvalidBudget, in.MaxChunkSize, in.MaxOverlapSize)
	}

	available := in.AvailableTokens()
	if available <= 0 {
		logger.WithModule(config.ModuleChunking).WithFields(map[string]interface{}{
			"context_length": in.ContextLength,
			"output_reserve": in.OutputReserve,
		}).Warn("context window too small for prompt reserves; using minimum chunk size")
	}

	maxChars := min(available*CharsPerToken, in.MaxChunkSize)
	maxChars = max(maxChars, MinChunkChars)

	overlap := min(maxChars/OverlapDivisor, in.MaxOverlapSize)
	overlap = max(overlap, MinOverlapChars)

	logger.WithModule(config.ModuleChunking).WithFields(map[string]interface{}{
		"context_length":   in.ContextLength,
		"available_tokens": available,
		"chunk_size":       maxChars,
		"overlap_size":     overlap,
	}).Info("chunk budget calculated")

	return NewChunkBudget(maxChars, overlap)
}
