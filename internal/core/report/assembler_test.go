package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_DuplicateSummaryKeptOnce(t *testing.T) {
	a := NewAssembler("")
	doc := a.Assemble([]string{
		"# Summary\nFirst part findings.",
		"# Summary\nSecond part findings.",
	})

	assert.Equal(t, "# Summary\nFirst part findings.\n\nSecond part findings.", doc)
	assert.Equal(t, 1, strings.Count(doc, "# Summary"))
}

func TestAssemble_DedupAcrossDepths(t *testing.T) {
	doc := NewAssembler("").Assemble([]string{
		"## Background\nA",
		"### Background\nB\n# Conclusion\nC",
	})
	assert.Equal(t, "## Background\nA\n\nB\n# Conclusion\nC", doc)
}

func TestAssemble_IdempotentWithoutDuplicates(t *testing.T) {
	a := NewAssembler("")
	in := "# Report\n\n## Part one\nText one.\n\n## Part two\nText two."
	assert.Equal(t, in, a.Assemble([]string{in}))
	assert.Equal(t, in, a.Assemble([]string{a.Assemble([]string{in})}))
}

func TestAssemble_PrependsTitle(t *testing.T) {
	assert.Equal(t, "# Research Report\n\nplain findings", NewAssembler("").Assemble([]string{"plain findings"}))
	assert.Equal(t, "# Market Study\n\nplain", NewAssembler("## Market Study").Assemble([]string{"plain"}))
}

func TestAssemble_MalformedHeadersAreContent(t *testing.T) {
	doc := NewAssembler("").Assemble([]string{"#\nbody", "#\nmore"})
	assert.Equal(t, "# Research Report\n\n#\nbody\n\n#\nmore", doc)
}

func TestAssemble_NeverReordersContent(t *testing.T) {
	doc := NewAssembler("").Assemble([]string{"# T\nline 1\nline 2", "line 3\n# T\nline 4"})
	assert.Equal(t, "# T\nline 1\nline 2\n\nline 3\nline 4", doc)
}

func TestAssembleResults_SkipsFailures(t *testing.T) {
	results := []ChunkResult{
		{Index: 0, Succeeded: true, Text: "# R\none"},
		{Index: 1, Succeeded: true, Text: "two"},
		{Index: 2, Succeeded: false},
		{Index: 3, Succeeded: true, Text: "four"},
		{Index: 4, Succeeded: true, Text: "five"},
	}
	assert.Equal(t, "# R\none\n\ntwo\n\nfour\n\nfive", NewAssembler("").AssembleResults(results))
}

func TestBuildMetadata(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	info := RunInfo{
		ChunkSize:     2000,
		OverlapSize:   200,
		ContextLength: 1000000,
		TokenPerChunk: 500,
		Model:         "qwen-turbo",
		Strategy:      "semantic",
		StartedAt:     start,
	}
	results := []ChunkResult{
		{Index: 0, Succeeded: true, Text: "a"},
		{Index: 1, Succeeded: false},
		{Index: 2, Succeeded: true, Text: "c"},
	}

	md := BuildMetadata(info, results, start.Add(1234567*time.Microsecond))
	require.Equal(t, 3, md.TotalChunks)
	assert.Equal(t, 2, md.ProcessedChunks)
	assert.Equal(t, []int{1}, md.FailedChunks)
	assert.InDelta(t, 1.23, md.ProcessingTime, 1e-9)
	assert.Equal(t, "qwen-turbo", md.ModelUsed)
	assert.Equal(t, 2000, md.ChunkSize)
	assert.Equal(t, 200, md.OverlapSize)
	assert.Equal(t, 1000000, md.ModelContextLength)
	assert.Equal(t, 500, md.TokenPerChunk)
	assert.Equal(t, "semantic", md.Strategy)

	md = BuildMetadata(info, nil, start)
	assert.NotNil(t, md.FailedChunks)
	assert.Zero(t, md.ProcessingTime)
}
