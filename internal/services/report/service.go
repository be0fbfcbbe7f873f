package report

import (
	"context"
	"errors"
	"fmt"

	"deep-research/config"
	"deep-research/internal/core/extract"
	"deep-research/internal/store"
	"deep-research/pkg/logger"

	"github.com/google/uuid"
)

// ErrSaveReport marks a finished report that could not be persisted.
var ErrSaveReport = errors.New("save report")

// Runner is the part of Pipeline the service depends on.
type Runner interface {
	Run(ctx context.Context, rawText, question string) (*Result, error)
}

// Service ties extraction, the pipeline and persistence together.
type Service struct {
	runner    Runner
	extractor extract.Extractor
	objects   extract.ObjectGetter
	store     store.Store
	newID     func() string
}

// NewService builds a Service. objects may be nil when sources are never s3:// URLs.
func NewService(runner Runner, extractor extract.Extractor, objects extract.ObjectGetter, st store.Store) *Service {
	return &Service{
		runner:    runner,
		extractor: extractor,
		objects:   objects,
		store:     st,
		newID:     uuid.NewString,
	}
}

// Generate extracts the document at path (local or s3://), runs the pipeline and
// persists the report. Nothing is persisted when the run fails.
func (s *Service) Generate(ctx context.Context, path, question string) (store.ReportRecord, error) {
	id := s.newID()
	log := logger.WithModule(config.ModuleReport).WithField("report_id", id)

	local, cleanup, err := extract.FetchToLocalTemp(ctx, s.objects, path)
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("%w: %v", extract.ErrExtraction, err)
	}
	defer cleanup()

	raw, err := s.extractor.Extract(ctx, local)
	if err != nil {
		log.WithError(err).Warn("extraction failed")
		return store.ReportRecord{}, err
	}

	res, err := s.runner.Run(ctx, raw, question)
	if err != nil {
		return store.ReportRecord{}, err
	}

	rec := store.ReportRecord{
		ID:        id,
		Question:  question,
		Document:  res.Document,
		Metadata:  res.Metadata,
		CreatedAt: res.Metadata.CreatedAt,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return store.ReportRecord{}, fmt.Errorf("%w %s: %w", ErrSaveReport, id, err)
	}
	log.Info("report generated")
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (store.ReportRecord, error) {
	return s.store.Load(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]store.ReportSummary, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithModule(config.ModuleReport).WithField("report_id", id).Info("report deleted")
	return nil
}
