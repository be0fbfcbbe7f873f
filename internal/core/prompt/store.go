package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"deep-research/config"
	"deep-research/pkg/logger"
)

const (
	DefaultVersion = "default"
	filePrefix     = "system_prompt"
	fileExt        = ".md"
)

var (
	ErrTemplateNotFound = errors.New("prompt template not found")
	ErrTemplateRender   = errors.New("prompt template render failed")
)

//go:embed templates/system_prompt.md
var builtin embed.FS

// Messages is the chat pair sent to the model for one chunk.
type Messages struct {
	System string
	User   string
}

// Params are the values a system prompt template may reference.
type Params struct {
	Question     string
	ChunkContent string
	ChunkIndex   int
	ChunkNumber  int
	TotalChunks  int
	MaxTokens    int
	IsFirst      bool
	IsLast       bool
}

// Store loads versioned system prompt templates from a directory.
//
// system_prompt.md is the "default" version and system_prompt_<v>.md is version v.
// Files are re-read on every render so edits take effect without a restart.
type Store struct {
	dir string

	mu       sync.RWMutex
	versions map[string]string // version -> file path, "" for the embedded default
}

// NewStore discovers templates in dir. An empty or missing dir leaves only the embedded default.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rescans the template directory.
func (s *Store) Reload() error {
	versions := map[string]string{DefaultVersion: ""}

	if s.dir != "" {
		matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileExt))
		if err != nil {
			return err
		}
		for _, path := range matches {
			name := strings.TrimSuffix(filepath.Base(path), fileExt)
			switch {
			case name == filePrefix:
				versions[DefaultVersion] = path
			case strings.HasPrefix(name, filePrefix+"_"):
				versions[strings.TrimPrefix(name, filePrefix+"_")] = path
			}
		}
	}

	s.mu.Lock()
	s.versions = versions
	s.mu.Unlock()

	logger.WithModule(config.ModulePrompt).WithFields(map[string]interface{}{
		"dir":      s.dir,
		"versions": s.Versions(),
	}).Info("prompt templates discovered")
	return nil
}

// Versions returns the known template ids, sorted.
func (s *Store) Versions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.versions))
	for v := range s.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Has reports whether version is known.
func (s *Store) Has(version string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.versions[version]
	return ok
}

func (s *Store) load(version string) (string, error) {
	s.mu.RLock()
	path, ok := s.versions[version]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrTemplateNotFound, version, strings.Join(s.Versions(), ", "))
	}
	var (
		b   []byte
		err error
	)
	if path == "" {
		b, err = builtin.ReadFile("templates/system_prompt.md")
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTemplateNotFound, version, err)
	}
	return string(b), nil
}

// Render fills the template version with params and returns the message pair.
func (s *Store) Render(version string, params Params) (Messages, error) {
	src, err := s.load(version)
	if err != nil {
		return Messages{}, err
	}
	tmpl, err := template.New(version).Option("missingkey=error").Parse(src)
	if err != nil {
		return Messages{}, fmt.Errorf("%w: parse %q: %v", ErrTemplateRender, version, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return Messages{}, fmt.Errorf("%w: %q: %v", ErrTemplateRender, version, err)
	}
	return Messages{
		System: buf.String(),
		User: fmt.Sprintf(
			"Following the requirements above, analyze the document excerpt and write the research report. This is chunk %d of %d.",
			params.ChunkNumber, params.TotalChunks,
		),
	}, nil
}
