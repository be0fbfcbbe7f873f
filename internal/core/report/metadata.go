package report

import (
	"math"
	"time"
)

// RunMetadata summarizes one generation run. It is persisted next to the document.
type RunMetadata struct {
	TotalChunks        int       `json:"total_chunks"`
	ProcessedChunks    int       `json:"processed_chunks"`
	FailedChunks       []int     `json:"failed_chunks"`
	TokenPerChunk      int       `json:"token_per_chunk"`
	ChunkSize          int       `json:"chunk_size"`
	OverlapSize        int       `json:"overlap_size"`
	ModelContextLength int       `json:"model_context_length"`
	ProcessingTime     float64   `json:"processing_time"`
	ModelUsed          string    `json:"model_used"`
	Strategy           string    `json:"strategy"`
	CreatedAt          time.Time `json:"created_at"`
}

// RunInfo is the static part of a run known before the first chunk is sent.
type RunInfo struct {
	ChunkSize     int
	OverlapSize   int
	ContextLength int
	TokenPerChunk int
	Model         string
	Strategy      string
	StartedAt     time.Time
}

// BuildMetadata aggregates chunk results into RunMetadata. Processing time is
// in seconds, rounded to two decimals.
func BuildMetadata(info RunInfo, results []ChunkResult, finishedAt time.Time) RunMetadata {
	failed := make([]int, 0)
	processed := 0
	for _, r := range results {
		if r.Succeeded {
			processed++
		} else {
			failed = append(failed, r.Index)
		}
	}

	elapsed := finishedAt.Sub(info.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return RunMetadata{
		TotalChunks:        len(results),
		ProcessedChunks:    processed,
		FailedChunks:       failed,
		TokenPerChunk:      info.TokenPerChunk,
		ChunkSize:          info.ChunkSize,
		OverlapSize:        info.OverlapSize,
		ModelContextLength: info.ContextLength,
		ProcessingTime:     math.Round(elapsed*100) / 100,
		ModelUsed:          info.Model,
		Strategy:           info.Strategy,
		CreatedAt:          finishedAt.UTC(),
	}
}
