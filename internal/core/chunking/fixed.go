package chunking

// A sentence boundary must sit at or beyond 70% of the window before we cut there.
const (
	minCutNumerator   = 7
	minCutDenominator = 10
)

// FixedSegmenter slides a fixed-size window over the text, preferring to cut at
// a sentence end or line break near the end of each window.
type FixedSegmenter struct {
	budget ChunkBudget
}

func NewFixedSegmenter(budget ChunkBudget) *FixedSegmenter {
	return &FixedSegmenter{budget: budget}
}

func (s *FixedSegmenter) Name() string { return StrategyFixed }

func (s *FixedSegmenter) Split(text string) []Chunk {
	maxChars := s.budget.MaxChunkChars()
	overlap := s.budget.OverlapChars()
	minCut := maxChars * minCutNumerator / minCutDenominator

	runes := []rune(text)
	var pieces []string

	for start := 0; start < len(runes); {
		end := min(start+maxChars, len(runes))
		if end < len(runes) {
			if i := lastBoundary(runes[start:end]); i >= minCut {
				end = start + i + 1
			}
		}
		pieces = append(pieces, string(runes[start:end]))
		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return finalize(pieces)
}

// lastBoundary returns the index of the last sentence terminator or newline in window, or -1.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?', '\n', '。', '！', '？':
			return i
		}
	}
	return -1
}
