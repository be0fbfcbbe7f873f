package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"deep-research/internal/core/report"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("report not found")
	ErrInvalidID = errors.New("invalid report id")
)

// ReportRecord is the unit handed to a store.
type ReportRecord struct {
	ID        string             `json:"report_id"`
	Question  string             `json:"question"`
	Document  string             `json:"markdown_report"`
	Metadata  report.RunMetadata `json:"report_metadata"`
	CreatedAt time.Time          `json:"created_at"`
}

// ReportSummary is one entry of List.
type ReportSummary struct {
	ID        string    `json:"report_id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
	FileSize  int64     `json:"file_size"`
}

// Store persists generated reports.
type Store interface {
	Save(ctx context.Context, rec ReportRecord) error
	Load(ctx context.Context, id string) (ReportRecord, error)
	List(ctx context.Context) ([]ReportSummary, error)
	Delete(ctx context.Context, id string) error
}

// CheckID rejects anything that is not a UUID so ids can be used as file and key names.
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func sortNewestFirst(items []ReportSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
