package prompt

import (
	"fmt"

	"deep-research/internal/core/chunking"
)

// Renderer binds a store to one template version and the per-chunk output budget.
type Renderer struct {
	store     *Store
	version   string
	maxTokens int
}

func NewRenderer(store *Store, version string, maxTokens int) (*Renderer, error) {
	if !store.Has(version) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, version)
	}
	return &Renderer{store: store, version: version, maxTokens: maxTokens}, nil
}

// Render builds the messages for chunk, framing it as chunk N of M.
func (r *Renderer) Render(question string, chunk chunking.Chunk) (Messages, error) {
	return r.store.Render(r.version, Params{
		Question:     question,
		ChunkContent: chunk.Text,
		ChunkIndex:   chunk.Index,
		ChunkNumber:  chunk.Index + 1,
		TotalChunks:  chunk.Total,
		MaxTokens:    r.maxTokens,
		IsFirst:      chunk.Index == 0,
		IsLast:       chunk.Index == chunk.Total-1,
	})
}

func (r *Renderer) Version() string { return r.version }
