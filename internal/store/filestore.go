package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"deep-research/config"
	"deep-research/pkg/logger"
)

// FileStore keeps <id>.md and <id>.json side by side in one directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) mdPath(id string) string   { return filepath.Join(s.dir, id+".md") }
func (s *FileStore) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }

func (s *FileStore) Save(ctx context.Context, rec ReportRecord) error {
	if err := CheckID(rec.ID); err != nil {
		return err
	}
	meta, err := encodeSidecar(rec)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.metaPath(rec.ID), meta); err != nil {
		return err
	}
	if err := writeFileAtomic(s.mdPath(rec.ID), Markdown(rec)); err != nil {
		return err
	}
	logger.WithModule(config.ModuleStore).WithField("report_id", rec.ID).Info("report saved")
	return nil
}

func (s *FileStore) Load(ctx context.Context, id string) (ReportRecord, error) {
	if err := CheckID(id); err != nil {
		return ReportRecord{}, err
	}
	data, err := os.ReadFile(s.mdPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ReportRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return ReportRecord{}, err
	}
	rec := parseMarkdown(id, data)

	meta, err := os.ReadFile(s.metaPath(id))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return rec, nil
	case err != nil:
		return ReportRecord{}, err
	}
	if err := applySidecar(&rec, meta); err != nil {
		return ReportRecord{}, err
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]ReportSummary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".md")
		if CheckID(id) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			logger.WithModule(config.ModuleStore).WithField("file", e.Name()).Warn("skip unreadable report")
			continue
		}
		rec := parseMarkdown(id, data)
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = info.ModTime().UTC()
		}
		out = append(out, ReportSummary{
			ID:        id,
			Question:  rec.Question,
			CreatedAt: rec.CreatedAt,
			FileSize:  info.Size(),
		})
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if err := os.Remove(s.mdPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
