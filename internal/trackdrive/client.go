// Package trackdrive provides the HTTP client for the TrackDrive leads API.
package trackdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"webhook_relay_backend/platform/apperr"
	"webhook_relay_backend/platform/config"
	"webhook_relay_backend/platform/logger"
	"webhook_relay_backend/platform/validator"
)

// Timeout bounds every lead submission.
const Timeout = 10 * time.Second

const maxResponseBytes = 1 << 20

// Settings are the values the client cannot be built without.
type Settings struct {
	APIURL    string `env:"TRACKDRIVE_API_URL" validate:"required"`
	APIKey    string `env:"TRACKDRIVE_API_KEY" validate:"required"`
	LeadToken string `env:"TRACKDRIVE_LEAD_TOKEN" validate:"required"`
}

// Response is a successful TrackDrive answer.
type Response struct {
	Status int
	// Body is the decoded JSON body, or the raw text when it is not JSON.
	Body any
}

// Client is the HTTP client for TrackDrive.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	leadToken  string
	log        *logger.Logger
}

// New creates a TrackDrive client. Missing settings fail with a config error.
func New(cfg config.TrackDriveConfig, val *validator.Validator, log *logger.Logger) (*Client, error) {
	settings := Settings{
		APIURL:    strings.TrimSpace(cfg.GetTrackDriveAPIURL()),
		APIKey:    cfg.GetTrackDriveAPIKey(),
		LeadToken: cfg.GetTrackDriveLeadToken(),
	}
	missing, err := val.Missing(settings)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "invalid trackdrive settings", err)
	}
	if len(missing) > 0 {
		return nil, apperr.Config(missing)
	}

	return &Client{
		httpClient: &http.Client{Timeout: Timeout},
		apiURL:     settings.APIURL,
		apiKey:     settings.APIKey,
		leadToken:  settings.LeadToken,
		log:        log,
	}, nil
}

// LeadToken is the lead source token every submitted lead must carry.
func (c *Client) LeadToken() string {
	return c.leadToken
}

// SubmitLead posts a lead. A non-2xx answer is an upstream rejection carrying
// the status and the body verbatim; no answer at all is upstream unreachable.
func (c *Client) SubmitLead(ctx context.Context, lead map[string]string) (Response, error) {
	const op = "trackdrive.SubmitLead"

	payload, err := json.Marshal(lead)
	if err != nil {
		return Response{}, apperr.Internal("marshal lead", err).WithOp(op)
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, apperr.Internal("create request", err).WithOp(op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("trackdrive request failed", "error", err)
		return Response{}, apperr.UpstreamUnreachable(err).WithOp(op)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, apperr.UpstreamUnreachable(fmt.Errorf("read response: %w", err)).WithOp(op)
	}
	body := decodeBody(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("trackdrive rejected lead", "status", resp.StatusCode)
		return Response{}, apperr.UpstreamRejection(resp.StatusCode, statusText(resp), body).WithOp(op)
	}

	return Response{Status: resp.StatusCode, Body: body}, nil
}

func decodeBody(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var body any
	if err := decoder.Decode(&body); err != nil || decoder.More() {
		return string(data)
	}
	return body
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	if text := strings.TrimPrefix(resp.Status, prefix); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
