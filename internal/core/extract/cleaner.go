package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Cleaner normalizes extracted text before segmentation.
type Cleaner interface {
	Clean(raw string) string
}

var (
	pageNumberNoise = regexp.MustCompile(`(?i)(第\s*\d+\s*页|\bpage\s*\d+(\s*of\s*\d+)?\b)`)
	inlineSpaces    = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// TextCleaner strips control characters and page-number noise and collapses
// whitespace while keeping paragraph breaks. Clean is idempotent.
type TextCleaner struct{}

func NewTextCleaner() *TextCleaner { return &TextCleaner{} }

func (TextCleaner) Clean(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = sanitizeUTF8Printable(s)
	s = pageNumberNoise.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// sanitizeUTF8Printable removes BOM and non-printable runes, keeping common whitespace.
func sanitizeUTF8Printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\uFEFF' || r == unicode.ReplacementChar {
			continue
		}
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
