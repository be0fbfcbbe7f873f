package chunking

import (
	"regexp"
	"strings"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

var paragraphSep = []rune("\n\n")

// SemanticSegmenter packs whole paragraphs into chunks and carries an overlap
// tail from each closed chunk into the next one.
type SemanticSegmenter struct {
	budget ChunkBudget
}

func NewSemanticSegmenter(budget ChunkBudget) *SemanticSegmenter {
	return &SemanticSegmenter{budget: budget}
}

func (s *SemanticSegmenter) Name() string { return StrategySemantic }

func (s *SemanticSegmenter) Split(text string) []Chunk {
	maxChars := s.budget.MaxChunkChars()
	overlap := s.budget.OverlapChars()

	var pieces []string
	var buf []rune

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		p := []rune(para)

		switch {
		case len(buf) == 0:
			buf = p
		case len(buf)+len(paragraphSep)+len(p) <= maxChars:
			buf = joinRunes(buf, paragraphSep, p)
		default:
			closed := strings.TrimSpace(string(buf))
			pieces = append(pieces, closed)
			buf = joinRunes(tail([]rune(closed), overlap), paragraphSep, p)
		}

		// Oversized buffer: cut at the budget and keep the overlap region for the next chunk.
		for len(buf) > maxChars {
			pieces = append(pieces, string(buf[:maxChars]))
			buf = buf[maxChars-overlap:]
		}
	}

	if strings.TrimSpace(string(buf)) != "" {
		pieces = append(pieces, string(buf))
	}
	return finalize(pieces)
}

func joinRunes(parts ...[]rune) []rune {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]rune, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
