package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"deep-research/internal/database"
	"deep-research/internal/database/model"

	"gorm.io/gorm"
)

// DBStore keeps reports in the reports table.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Save(ctx context.Context, rec ReportRecord) error {
	if err := CheckID(rec.ID); err != nil {
		return err
	}
	row, err := toModel(rec)
	if err != nil {
		return err
	}
	return database.CreateEntity(ctx, s.db, row)
}

func (s *DBStore) Load(ctx context.Context, id string) (ReportRecord, error) {
	if err := CheckID(id); err != nil {
		return ReportRecord{}, err
	}
	row, err := database.GetEntityByID[model.Report](ctx, s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReportRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return ReportRecord{}, err
	}
	return fromModel(row)
}

func (s *DBStore) List(ctx context.Context) ([]ReportSummary, error) {
	var rows []model.Report
	err := s.db.WithContext(ctx).
		Select("id", "question", "file_size", "created_at").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ReportSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReportSummary{
			ID:        r.ID,
			Question:  r.Question,
			CreatedAt: r.CreatedAt.UTC(),
			FileSize:  r.FileSize,
		})
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	n, err := database.DeleteEntityByID[model.Report](ctx, s.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func toModel(rec ReportRecord) (*model.Report, error) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		ID:        rec.ID,
		Question:  rec.Question,
		Content:   rec.Document,
		Metadata:  string(meta),
		FileSize:  int64(len(Markdown(rec))),
		CreatedAt: rec.CreatedAt.UTC(),
	}, nil
}

func fromModel(row *model.Report) (ReportRecord, error) {
	rec := ReportRecord{
		ID:        row.ID,
		Question:  row.Question,
		Document:  row.Content,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &rec.Metadata); err != nil {
			return ReportRecord{}, fmt.Errorf("decode metadata of %s: %w", row.ID, err)
		}
	}
	return rec, nil
}
