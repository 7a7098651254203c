// Package export archives slices of the food log as Parquet objects in an
// S3-compatible store.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/macrolog/macrolog/internal/nutrilog"
	"github.com/macrolog/macrolog/internal/observability"
	"github.com/macrolog/macrolog/internal/storage"
)

type EntryLister interface {
	ListEntries(ctx context.Context, filter nutrilog.EntryFilter) ([]nutrilog.FoodEntry, error)
}

type Service struct {
	Log         EntryLister
	ObjectStore storage.ObjectStore
	Logger      *slog.Logger
}

type Summary struct {
	ObjectKey   string
	RecordCount int64
	SizeBytes   int64
}

// Run exports all food entries in the half-open range [from, to) as one
// Parquet object. An empty range is an error; callers decide whether that is
// worth surfacing to the user.
func (s *Service) Run(ctx context.Context, from, to time.Time) (Summary, error) {
	if s.Log == nil || s.ObjectStore == nil {
		return Summary{}, fmt.Errorf("export service is not configured")
	}
	if !to.After(from) {
		return Summary{}, fmt.Errorf("export range end must be after start")
	}

	entries, err := s.Log.ListEntries(ctx, nutrilog.EntryFilter{From: from, To: to, Limit: 100000})
	if err != nil {
		return Summary{}, fmt.Errorf("list entries for export: %w", err)
	}
	if len(entries) == 0 {
		return Summary{}, fmt.Errorf("no entries in export range")
	}

	encoded, err := EncodeEntriesToParquet(entries)
	if err != nil {
		return Summary{}, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("food-entries/%s_%s_%s.parquet",
		from.Format("2006-01-02"), to.Format("2006-01-02"), uuid.NewString())
	info, err := s.ObjectStore.Put(ctx, key, bytes.NewReader(encoded.Data), int64(len(encoded.Data)), storage.PutOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return Summary{}, fmt.Errorf("upload export: %w", err)
	}

	observability.ObserveExport(encoded.RecordCount)
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "export completed",
			slog.String("key", info.Key),
			slog.Int64("records", encoded.RecordCount),
			slog.Int64("bytes", info.Size),
		)
	}
	return Summary{ObjectKey: info.Key, RecordCount: encoded.RecordCount, SizeBytes: info.Size}, nil
}
