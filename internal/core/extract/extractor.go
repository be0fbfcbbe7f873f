package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"deep-research/config"
	"deep-research/pkg/logger"

	"github.com/ledongthuc/pdf"
)

var ErrExtraction = errors.New("text extraction failed")

// SupportedExtensions lists the file types Extract accepts.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// Extractor pulls raw text out of a stored document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// FileExtractor reads PDFs page by page and plain text files as UTF-8.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor { return &FileExtractor{} }

// IsSupported reports whether name has an extension Extract can handle.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(ctx, path)
	case ".txt", ".md":
		return extractPlain(path)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrExtraction, filepath.Ext(path))
	}
}

func extractPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrExtraction, filepath.Base(path))
	}
	return string(b), nil
}

// extractPDF concatenates the plain text of every page, separating pages with a blank line.
func extractPDF(ctx context.Context, path string) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: corrupt pdf: %v", ErrExtraction, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer f.Close()

	var b strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			logger.WithModule(config.ModuleExtract).WithFields(map[string]interface{}{
				"file":  filepath.Base(path),
				"page":  i,
				"error": err,
			}).Warn("skipping unreadable page")
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(content)
	}

	logger.WithModule(config.ModuleExtract).WithFields(map[string]interface{}{
		"file":  filepath.Base(path),
		"pages": pages,
		"chars": b.Len(),
	}).Info("pdf text extracted")
	return b.String(), nil
}
