package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"deep-research/internal/core/report"
)

const (
	fieldQuestion  = "**Question**: "
	fieldReportID  = "**Report ID**: "
	fieldCreatedAt = "**Created At**: "

	headerRule = "\n---\n\n"
)

// Markdown renders the downloadable file: a short header block, a rule, then the report.
func Markdown(rec ReportRecord) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", report.DefaultTitle)
	fmt.Fprintf(&b, "%s%s\n\n", fieldQuestion, singleLine(rec.Question))
	fmt.Fprintf(&b, "%s%s\n\n", fieldReportID, rec.ID)
	fmt.Fprintf(&b, "%s%s\n", fieldCreatedAt, rec.CreatedAt.UTC().Format(time.RFC3339))
	b.WriteString(headerRule)
	b.WriteString(rec.Document)
	return b.Bytes()
}

// parseMarkdown recovers the record header and body from a file written by Markdown.
// A file without a header is returned whole as the document.
func parseMarkdown(id string, data []byte) ReportRecord {
	rec := ReportRecord{ID: id}
	content := string(data)
	i := strings.Index(content, headerRule)
	if i < 0 {
		rec.Document = content
		return rec
	}
	rec.Document = content[i+len(headerRule):]
	for _, line := range strings.Split(content[:i], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, fieldQuestion):
			rec.Question = strings.TrimPrefix(line, fieldQuestion)
		case strings.HasPrefix(line, fieldReportID):
			rec.ID = strings.TrimPrefix(line, fieldReportID)
		case strings.HasPrefix(line, fieldCreatedAt):
			if t, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, fieldCreatedAt)); err == nil {
				rec.CreatedAt = t
			}
		}
	}
	return rec
}

// sidecar carries what the Markdown header cannot hold losslessly.
type sidecar struct {
	Question  string             `json:"question"`
	CreatedAt time.Time          `json:"created_at"`
	Metadata  report.RunMetadata `json:"metadata"`
}

func encodeSidecar(rec ReportRecord) ([]byte, error) {
	return json.MarshalIndent(sidecar{
		Question:  rec.Question,
		CreatedAt: rec.CreatedAt,
		Metadata:  rec.Metadata,
	}, "", "  ")
}

func applySidecar(rec *ReportRecord, data []byte) error {
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("decode metadata of %s: %w", rec.ID, err)
	}
	rec.Question = sc.Question
	rec.CreatedAt = sc.CreatedAt
	rec.Metadata = sc.Metadata
	return nil
}
