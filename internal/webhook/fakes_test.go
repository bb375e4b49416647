package webhook

import (
	"context"
	"sync"

	"webhook_relay_backend/internal/sheets"
	"webhook_relay_backend/internal/trackdrive"
)

type fakeLeads struct {
	mu     sync.Mutex
	resp   trackdrive.Response
	err    error
	calls  int
	last   map[string]string
	ctxErr error
}

func (f *fakeLeads) SubmitLead(ctx context.Context, lead map[string]string) (trackdrive.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = lead
	f.ctxErr = ctx.Err()
	return f.resp, f.err
}

type fakeSheet struct {
	mu        sync.Mutex
	exists    bool
	header    []string
	createErr error
	readErr   error
	writeErr  error
	appendErr error
	// gate, when set, blocks CreateSheetIfMissing until closed.
	gate chan struct{}
	// entered, when set, receives one value per CreateSheetIfMissing call
	// before it blocks on gate.
	entered chan struct{}

	creates int
	reads   int
	writes  int
	rows    [][]string
}

func (f *fakeSheet) CreateSheetIfMissing(_ context.Context, title string, rowCount, columnCount int) (*sheets.SheetProperties, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.exists = true
	return &sheets.SheetProperties{
		Title:          title,
		GridProperties: &sheets.GridProperties{RowCount: rowCount, ColumnCount: columnCount},
	}, nil
}

func (f *fakeSheet) ReadFirstRow(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]string(nil), f.header...), nil
}

func (f *fakeSheet) WriteFirstRow(_ context.Context, _ string, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.header = append([]string(nil), values...)
	return nil
}

func (f *fakeSheet) AppendRow(_ context.Context, _ string, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, values)
	return nil
}
