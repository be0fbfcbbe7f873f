package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_CutsAtLateSentenceBoundary(t *testing.T) {
	text := strings.Repeat("a", 80) + "." + strings.Repeat("b", 50)
	s := NewFixedSegmenter(mustBudget(t, 100, 10))

	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 80)+".", chunks[0].Text)
	assert.Equal(t, strings.Repeat("a", 9)+"."+strings.Repeat("b", 50), chunks[1].Text)
}

func TestFixed_IgnoresEarlySentenceBoundary(t *testing.T) {
	text := strings.Repeat("a", 30) + "." + strings.Repeat("b", 100)
	s := NewFixedSegmenter(mustBudget(t, 100, 10))

	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, text[:100], chunks[0].Text)
	assert.Equal(t, text[90:], chunks[1].Text)
}

func TestFixed_CutsAtLineBreak(t *testing.T) {
	text := strings.Repeat("x", 75) + "\n" + strings.Repeat("y", 60)
	s := NewFixedSegmenter(mustBudget(t, 100, 10))

	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("x", 75), chunks[0].Text)
	assert.Equal(t, text, mergeOverlapping(chunks))
}

func TestFixed_ShortTextSingleChunk(t *testing.T) {
	s := NewFixedSegmenter(mustBudget(t, 100, 10))

	chunks := s.Split("One sentence. Another one!")

	require.Len(t, chunks, 1)
	assert.Equal(t, "One sentence. Another one!", chunks[0].Text)
}

func TestFixed_NoDuplicateTailChunk(t *testing.T) {
	text := strings.Repeat("z", 250)
	s := NewFixedSegmenter(mustBudget(t, 100, 10))

	chunks := s.Split(text)

	// windows start at 0, 90, 180; the third reaches the end so the loop stops
	require.Len(t, chunks, 3)
	assert.Equal(t, text[180:], chunks[2].Text)
}
