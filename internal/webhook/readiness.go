package webhook

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"webhook_relay_backend/internal/sheets"

	"golang.org/x/sync/singleflight"
)

// SheetSetup is the part of the sheet sink used to prepare the target sheet.
type SheetSetup interface {
	CreateSheetIfMissing(ctx context.Context, title string, rowCount, columnCount int) (*sheets.SheetProperties, error)
	ReadFirstRow(ctx context.Context, title string) ([]string, error)
	WriteFirstRow(ctx context.Context, title string, values []string) error
}

// SheetReadiness remembers that the target sheet exists with the right header.
// It only moves from not ready to ready; a failed setup leaves it not ready so
// the next request retries. Concurrent callers share one setup attempt.
type SheetReadiness struct {
	ready atomic.Bool
	group singleflight.Group
}

// Ready reports whether setup has succeeded at least once.
func (r *SheetReadiness) Ready() bool {
	return r.ready.Load()
}

// EnsureReady runs sheet setup unless it has already succeeded.
func (r *SheetReadiness) EnsureReady(ctx context.Context, sink SheetSetup, title string, columns []string) error {
	if r.ready.Load() {
		return nil
	}

	_, err, _ := r.group.Do(title, func() (any, error) {
		if r.ready.Load() {
			return nil, nil
		}
		if err := setupSheet(ctx, sink, title, columns); err != nil {
			return nil, err
		}
		r.ready.Store(true)
		return nil, nil
	})
	return err
}

func setupSheet(ctx context.Context, sink SheetSetup, title string, columns []string) error {
	if _, err := sink.CreateSheetIfMissing(ctx, title, sheets.DefaultRowCount, sheets.DefaultColumnCount); err != nil {
		return fmt.Errorf("create sheet %q: %w", title, err)
	}

	header, err := sink.ReadFirstRow(ctx, title)
	if err != nil {
		return fmt.Errorf("read header of %q: %w", title, err)
	}
	if slices.Equal(header, columns) {
		return nil
	}

	if err := sink.WriteFirstRow(ctx, title, columns); err != nil {
		return fmt.Errorf("write header of %q: %w", title, err)
	}
	return nil
}
