package report

import (
	"strings"
)

const (
	DefaultTitle = "Research Report"

	partSeparator = "\n\n"
)

// ChunkResult is the outcome of one model call. Failed results carry no text.
type ChunkResult struct {
	Index     int
	Succeeded bool
	Text      string
}

// Assembler merges chunk outputs into one Markdown document.
type Assembler struct {
	title string
}

func NewAssembler(title string) *Assembler {
	title = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(title), "#"))
	if title == "" {
		title = DefaultTitle
	}
	return &Assembler{title: title}
}

// Title returns the canonical top-level header line.
func (a *Assembler) Title() string {
	return "# " + a.title
}

// AssembleResults keeps the successful results, in the order given, and assembles them.
func (a *Assembler) AssembleResults(results []ChunkResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Succeeded {
			parts = append(parts, r.Text)
		}
	}
	return a.Assemble(parts)
}

// Assemble joins parts with a blank line, drops repeated headers and makes sure
// the document opens with a header.
func (a *Assembler) Assemble(parts []string) string {
	doc := DedupHeaders(strings.Join(parts, partSeparator))
	if !isHeader(firstLine(doc)) {
		doc = a.Title() + partSeparator + doc
	}
	return doc
}

// DedupHeaders keeps the first header line for every payload and drops later
// ones regardless of depth. Other lines pass through untouched.
func DedupHeaders(doc string) string {
	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{})

	for _, line := range lines {
		payload, ok := headerPayload(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if _, dup := seen[payload]; dup {
			continue
		}
		seen[payload] = struct{}{}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// headerPayload reports the text of a header line. A bare run of '#' has no
// payload and is treated as ordinary content.
func headerPayload(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	payload := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	if payload == "" {
		return "", false
	}
	return payload, true
}

func isHeader(line string) bool {
	_, ok := headerPayload(line)
	return ok
}

func firstLine(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}
