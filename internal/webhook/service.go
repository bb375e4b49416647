package webhook

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"webhook_relay_backend/platform/apperr"
	"webhook_relay_backend/platform/logger"
)

// Sources name the sink a failure is attributed to.
const (
	SourceTrackDrive   = "trackdrive"
	SourceGoogleSheets = "google_sheets"
)

const successMessage = "Lead submitted to TrackDrive and row appended to Google Sheets"

const envLeadToken = "TRACKDRIVE_LEAD_TOKEN"

// SheetsResult confirms the row append.
type SheetsResult struct {
	Sheet    string `json:"sheet"`
	Appended bool   `json:"appended"`
}

// SuccessResponse is returned when both sinks accepted the submission.
type SuccessResponse struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	TrackDriveResponse any          `json:"trackdrive_response"`
	LeadID             any          `json:"lead_id"`
	GoogleSheets       SheetsResult `json:"google_sheets"`
}

// FailureResponse reports the first sink that failed and why.
type FailureResponse struct {
	Success         bool     `json:"success"`
	Error           string   `json:"error"`
	Source          string   `json:"source"`
	TrackDriveError any      `json:"trackdrive_error,omitempty"`
	Missing         []string `json:"missing,omitempty"`
}

// Options configure the dispatch. Zero values fall back to the defaults.
type Options struct {
	SheetTitle string
	LeadToken  string
	Columns    []string
	LeadFields map[string]string
}

// Service dispatches one webhook payload to TrackDrive, then Google Sheets.
// The two writes are not atomic: a lead accepted by TrackDrive stays accepted
// when the sheet append fails afterwards.
type Service struct {
	leads      LeadSubmitter
	sheets     SheetSink
	readiness  *SheetReadiness
	sheetTitle string
	leadToken  string
	columns    []string
	leadFields map[string]string
	log        *logger.Logger
}

// NewService creates a dispatch service. The service owns the readiness
// state of its sheet.
func NewService(leads LeadSubmitter, sink SheetSink, opts Options, log *logger.Logger) *Service {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	leadFields := opts.LeadFields
	if leadFields == nil {
		leadFields = DefaultLeadFields()
	}

	return &Service{
		leads:      leads,
		sheets:     sink,
		readiness:  &SheetReadiness{},
		sheetTitle: opts.SheetTitle,
		leadToken:  opts.LeadToken,
		columns:    columns,
		leadFields: leadFields,
		log:        log,
	}
}

// SheetReady reports whether the sheet setup has completed.
func (s *Service) SheetReady() bool {
	return s.readiness.Ready()
}

// Dispatch runs the submission flow and returns the HTTP status and body to send.
// Steps stop at the first failure; nothing is retried.
func (s *Service) Dispatch(ctx context.Context, payload Payload, rc RequestContext) (int, any) {
	log := s.log.WithContext(ctx)
	log.Debug("webhook payload received", "fields", payloadKeys(payload))

	if source, err := s.preflight(); err != nil {
		return s.failure(log, source, err)
	}

	lead := BuildLeadPayload(payload, s.leadFields, s.leadToken, rc)
	start := time.Now()
	resp, err := s.leads.SubmitLead(ctx, lead)
	log.SinkCall(SourceTrackDrive, "submit_lead", time.Since(start), err)
	if err != nil {
		return s.failure(log, SourceTrackDrive, err)
	}

	row := BuildRow(payload, s.columns)

	start = time.Now()
	err = s.readiness.EnsureReady(ctx, s.sheets, s.sheetTitle, s.columns)
	log.SinkCall(SourceGoogleSheets, "ensure_ready", time.Since(start), err)
	if err != nil {
		return s.failure(log, SourceGoogleSheets, err)
	}

	start = time.Now()
	err = s.sheets.AppendRow(ctx, s.sheetTitle, row)
	log.SinkCall(SourceGoogleSheets, "append_row", time.Since(start), err)
	if err != nil {
		return s.failure(log, SourceGoogleSheets, err)
	}

	return http.StatusOK, SuccessResponse{
		Success:            true,
		Message:            successMessage,
		TrackDriveResponse: resp.Body,
		LeadID:             extractLeadID(resp.Body),
		GoogleSheets:       SheetsResult{Sheet: s.sheetTitle, Appended: true},
	}
}

// preflight fails before any sink is called when either sink could not be
// built or the lead token is unset, so a config error never leaves a lead
// accepted without its row.
func (s *Service) preflight() (string, error) {
	if u, ok := s.leads.(unavailable); ok {
		return SourceTrackDrive, u.ConfigError()
	}
	if s.leadToken == "" {
		return SourceTrackDrive, apperr.Config([]string{envLeadToken})
	}
	if u, ok := s.sheets.(unavailable); ok {
		return SourceGoogleSheets, u.ConfigError()
	}
	return "", nil
}

func (s *Service) failure(log *logger.Logger, source string, err error) (int, any) {
	status, body := classify(source, err)
	log.Error("webhook dispatch failed",
		"source", source,
		"kind", apperr.GetKind(err).String(),
		"status", status,
		"error", err,
	)
	return status, body
}

// classify maps a sink error to the response sent to the caller.
func classify(source string, err error) (int, FailureResponse) {
	label := sourceLabel(source)
	body := FailureResponse{Source: source}

	domainErr, ok := apperr.As(err)
	if !ok {
		body.Error = fmt.Sprintf("%s: %s", label, err.Error())
		return http.StatusInternalServerError, body
	}

	switch domainErr.Kind {
	case apperr.KindConfig:
		body.Error = domainErr.Message
		body.Missing = apperr.MissingVariables(domainErr)
		return http.StatusInternalServerError, body
	case apperr.KindUpstreamRejection:
		body.Error = fmt.Sprintf("%s: %d - %s", label, domainErr.Status, domainErr.StatusText)
		body.TrackDriveError = domainErr.Details
		return domainErr.HTTPStatus(), body
	case apperr.KindUpstreamUnreachable:
		body.Error = label + ": No response received (network error)"
		return http.StatusInternalServerError, body
	default:
		body.Error = fmt.Sprintf("%s: %s", label, err.Error())
		return http.StatusInternalServerError, body
	}
}

func sourceLabel(source string) string {
	if source == SourceTrackDrive {
		return "TrackDrive API Error"
	}
	return "Google Sheets Error"
}

// extractLeadID returns the lead identifier from a TrackDrive body.
// "id" wins over "lead_id" when both are present.
func extractLeadID(body any) any {
	fields, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"id", "lead_id"} {
		if v, present := fields[key]; present && v != nil {
			return v
		}
	}
	return nil
}

func payloadKeys(payload Payload) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
