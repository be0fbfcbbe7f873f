package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deep-research/config"
	"deep-research/internal/core/chunking"
	"deep-research/internal/core/extract"
	"deep-research/internal/core/llm"
	"deep-research/internal/core/prompt"
	corereport "deep-research/internal/core/report"
	"deep-research/internal/metrics"
	"deep-research/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyInput      = errors.New("no extractable text in document")
	ErrAllChunksFailed = errors.New("could not generate report: every chunk failed")
	ErrRunCancelled    = errors.New("report generation cancelled")
)

// PromptRenderer builds the messages for one chunk.
type PromptRenderer interface {
	Render(question string, chunk chunking.Chunk) (prompt.Messages, error)
}

// Result is what a successful run produces.
type Result struct {
	Document string
	Metadata corereport.RunMetadata
}

// PipelineDeps wires a Pipeline. Tokens is optional; when set, chunks larger than
// AvailableTokens are reported in the log.
type PipelineDeps struct {
	Cleaner         extract.Cleaner
	Segmenter       chunking.Segmenter
	Renderer        PromptRenderer
	Model           llm.Client
	ModelConfig     llm.ModelConfig
	Budget          chunking.ChunkBudget
	Assembler       *corereport.Assembler
	Tokens          chunking.TokenCounter
	AvailableTokens int
}

// Pipeline turns raw text into an assembled report. It is safe for concurrent
// runs; nothing in it is mutated after construction.
type Pipeline struct {
	deps PipelineDeps
	now  func() time.Time
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Assembler == nil {
		deps.Assembler = corereport.NewAssembler("")
	}
	return &Pipeline{deps: deps, now: time.Now}
}

// Run cleans and segments rawText, sends every chunk to the model in order and
// assembles the surviving outputs. A failed chunk is logged and skipped.
func (p *Pipeline) Run(ctx context.Context, rawText, question string) (*Result, error) {
	startedAt := p.now()
	log := logger.WithModule(config.ModuleReport)

	text := p.deps.Cleaner.Clean(rawText)
	if strings.TrimSpace(text) == "" {
		metrics.Runs.WithLabelValues(metrics.StatusEmpty).Inc()
		return nil, ErrEmptyInput
	}
	chunks := p.deps.Segmenter.Split(text)
	if len(chunks) == 0 {
		metrics.Runs.WithLabelValues(metrics.StatusEmpty).Inc()
		return nil, ErrEmptyInput
	}
	metrics.ChunksPerRun.Observe(float64(len(chunks)))
	p.checkTokens(chunks)

	log.WithFields(logrus.Fields{
		"chunks":   len(chunks),
		"strategy": p.deps.Segmenter.Name(),
		"model":    p.deps.ModelConfig.Name,
	}).Info("report generation started")

	results := make([]corereport.ChunkResult, 0, len(chunks))
	for _, ch := range chunks {
		if err := ctx.Err(); err != nil {
			metrics.Runs.WithLabelValues(metrics.StatusCancelled).Inc()
			log.WithFields(logrus.Fields{
				"attempted": len(results),
				"total":     len(chunks),
			}).Warn("report generation cancelled")
			return nil, fmt.Errorf("%w after %d of %d chunks: %w", ErrRunCancelled, len(results), len(chunks), err)
		}
		results = append(results, p.processChunk(ctx, question, ch))
	}

	finishedAt := p.now()
	md := corereport.BuildMetadata(corereport.RunInfo{
		ChunkSize:     p.deps.Budget.MaxChunkChars(),
		OverlapSize:   p.deps.Budget.OverlapChars(),
		ContextLength: p.deps.ModelConfig.ContextLength,
		TokenPerChunk: p.deps.ModelConfig.MaxTokensPerChunk,
		Model:         p.deps.ModelConfig.Name,
		Strategy:      p.deps.Segmenter.Name(),
		StartedAt:     startedAt,
	}, results, finishedAt)

	if md.ProcessedChunks == 0 {
		metrics.Runs.WithLabelValues(metrics.StatusAllFailed).Inc()
		log.WithField("total", md.TotalChunks).Error("no chunk produced content")
		return nil, fmt.Errorf("%w (%d chunks)", ErrAllChunksFailed, md.TotalChunks)
	}

	doc := p.deps.Assembler.AssembleResults(results)

	metrics.Runs.WithLabelValues(metrics.StatusOK).Inc()
	metrics.RunDuration.Observe(finishedAt.Sub(startedAt).Seconds())
	log.WithFields(logrus.Fields{
		"processed": md.ProcessedChunks,
		"failed":    md.FailedChunks,
		"seconds":   md.ProcessingTime,
	}).Info("report generation finished")

	return &Result{Document: doc, Metadata: md}, nil
}

// processChunk never fails the run. The model call runs on a context detached
// from ctx's cancellation so an in-flight call ends on its own timeout.
func (p *Pipeline) processChunk(ctx context.Context, question string, ch chunking.Chunk) corereport.ChunkResult {
	res := corereport.ChunkResult{Index: ch.Index}
	log := logger.WithModule(config.ModuleReport).WithFields(logrus.Fields{
		"chunk": ch.Index + 1,
		"total": ch.Total,
	})

	msgs, err := p.deps.Renderer.Render(question, ch)
	if err != nil {
		metrics.ChunkCalls.WithLabelValues(metrics.ResultError).Inc()
		log.WithError(err).Warn("prompt render failed, chunk skipped")
		return res
	}

	opts := p.deps.ModelConfig.Options()
	callCtx := context.WithoutCancel(ctx)
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, opts.Timeout)
		defer cancel()
	}

	out, err := p.deps.Model.Complete(callCtx, msgs, opts)
	if err != nil {
		metrics.ChunkCalls.WithLabelValues(metrics.ResultError).Inc()
		log.WithError(err).Warn("model call failed, chunk skipped")
		return res
	}
	out = strings.TrimSpace(out)
	if out == "" {
		metrics.ChunkCalls.WithLabelValues(metrics.ResultEmpty).Inc()
		log.Warn("empty model response, chunk skipped")
		return res
	}

	metrics.ChunkCalls.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Debug("chunk processed")
	res.Succeeded = true
	res.Text = out
	return res
}

func (p *Pipeline) checkTokens(chunks []chunking.Chunk) {
	if p.deps.Tokens == nil || p.deps.AvailableTokens <= 0 {
		return
	}
	largest, at := 0, 0
	for _, ch := range chunks {
		if n := p.deps.Tokens.CountTokens(ch.Text); n > largest {
			largest, at = n, ch.Index
		}
	}
	if largest > p.deps.AvailableTokens {
		logger.WithModule(config.ModuleChunking).WithFields(logrus.Fields{
			"chunk":     at + 1,
			"tokens":    largest,
			"available": p.deps.AvailableTokens,
		}).Warn("chunk exceeds the available input tokens")
	}
}
