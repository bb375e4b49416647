package webhook

import (
	"context"

	"webhook_relay_backend/internal/sheets"
	"webhook_relay_backend/internal/trackdrive"
)

// LeadSubmitter is the lead sink. Satisfied by *trackdrive.Client.
type LeadSubmitter interface {
	SubmitLead(ctx context.Context, lead map[string]string) (trackdrive.Response, error)
}

// SheetSink is the sheet sink. Satisfied by *sheets.Client.
type SheetSink interface {
	SheetSetup
	AppendRow(ctx context.Context, title string, values []string) error
}

// Unavailable stands in for a sink whose client could not be built.
// Every call fails with the construction error, so a misconfigured
// deployment still answers each request with the missing variables.
type Unavailable struct {
	Err error
}

// unavailable is implemented by sinks that know up front they cannot serve.
type unavailable interface {
	ConfigError() error
}

// ConfigError returns the construction error.
func (u Unavailable) ConfigError() error {
	return u.Err
}

func (u Unavailable) SubmitLead(context.Context, map[string]string) (trackdrive.Response, error) {
	return trackdrive.Response{}, u.Err
}

func (u Unavailable) CreateSheetIfMissing(context.Context, string, int, int) (*sheets.SheetProperties, error) {
	return nil, u.Err
}

func (u Unavailable) ReadFirstRow(context.Context, string) ([]string, error) {
	return nil, u.Err
}

func (u Unavailable) WriteFirstRow(context.Context, string, []string) error {
	return u.Err
}

func (u Unavailable) AppendRow(context.Context, string, []string) error {
	return u.Err
}

var (
	_ LeadSubmitter = (*trackdrive.Client)(nil)
	_ SheetSink     = (*sheets.Client)(nil)
	_ LeadSubmitter = Unavailable{}
	_ SheetSink     = Unavailable{}
	_ unavailable   = Unavailable{}
)
