// Package sheets wraps the Google Sheets v4 API client, authenticated as a
// service account.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"webhook_relay_backend/platform/apperr"
	"webhook_relay_backend/platform/config"
	"webhook_relay_backend/platform/logger"
	"webhook_relay_backend/platform/validator"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	envPrivateKey = "GOOGLE_PRIVATE_KEY"

	// DefaultRowCount and DefaultColumnCount size newly created sheets.
	DefaultRowCount    = 1000
	DefaultColumnCount = 26

	valueInputRaw  = "RAW"
	insertRows     = "INSERT_ROWS"
	majorRows      = "ROWS"
	requestTimeout = 30 * time.Second
)

// Settings are the values the client cannot be built without.
type Settings struct {
	SpreadsheetID string `env:"GOOGLE_SHEETS_ID" validate:"required"`
	ProjectID     string `env:"GOOGLE_PROJECT_ID" validate:"required"`
	ClientEmail   string `env:"GOOGLE_CLIENT_EMAIL" validate:"required"`
	PrivateKey    string `env:"GOOGLE_PRIVATE_KEY" validate:"required"`
}

// GridProperties is the size of a sheet.
type GridProperties struct {
	RowCount    int
	ColumnCount int
}

// SheetProperties describes one sheet (tab) of a spreadsheet.
type SheetProperties struct {
	SheetID        int64
	Title          string
	GridProperties *GridProperties
}

// Client is the Sheets API client bound to one spreadsheet.
type Client struct {
	spreadsheetID string
	service       *sheetsapi.Service
	log           *logger.Logger
}

// New creates a Sheets client. Missing settings fail with a config error
// naming the variables; the values themselves are never reported.
func New(cfg config.SheetsConfig, val *validator.Validator, log *logger.Logger) (*Client, error) {
	settings := Settings{
		SpreadsheetID: cfg.GetSheetsID(),
		ProjectID:     cfg.GetGoogleProjectID(),
		ClientEmail:   cfg.GetGoogleClientEmail(),
		PrivateKey:    strings.TrimSpace(cfg.GetGooglePrivateKey()),
	}
	missing, err := val.Missing(settings)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "invalid sheets settings", err)
	}
	if len(missing) > 0 {
		return nil, apperr.Config(missing)
	}

	key, err := ResolvePrivateKey(settings.PrivateKey)
	if err != nil {
		return nil, err
	}
	log.Debug("sheets private key resolved", "encoding", key.Encoding.String())

	// Token exchanges use the same bounded client as API calls.
	base := &http.Client{Timeout: requestTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	account := serviceAccount{
		projectID: settings.ProjectID,
		email:     settings.ClientEmail,
		keyID:     cfg.GetGooglePrivateKeyID(),
		key:       key,
		tokenURL:  cfg.GetGoogleTokenURL(),
	}
	tokens, err := newTokenSource(ctx, account, cfg.GetGoogleAuthMode())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "invalid google service account", err).WithDetails([]string{envPrivateKey})
	}

	httpClient := oauth2.NewClient(ctx, tokens)
	httpClient.Timeout = requestTimeout

	service, err := sheetsapi.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(strings.TrimRight(cfg.GetSheetsAPIURL(), "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		spreadsheetID: settings.SpreadsheetID,
		service:       service,
		log:           log,
	}, nil
}

// FindSheet returns the properties of the sheet with the given title, or nil when absent.
func (c *Client) FindSheet(ctx context.Context, title string) (*SheetProperties, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", apiError(err))
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return fromAPIProperties(sheet.Properties), nil
		}
	}
	return nil, nil
}

// CreateSheetIfMissing returns the existing sheet or adds one of the given size.
func (c *Client) CreateSheetIfMissing(ctx context.Context, title string, rowCount, columnCount int) (*SheetProperties, error) {
	existing, err := c.FindSheet(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: []*sheetsapi.Request{{
		AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{
			Title: title,
			GridProperties: &sheetsapi.GridProperties{
				RowCount:    int64(rowCount),
				ColumnCount: int64(columnCount),
			},
		}},
	}}}

	resp, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("add sheet %q: %w", title, apiError(err))
	}

	c.log.Info("sheet created", "title", title, "rows", rowCount, "columns", columnCount)
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		return fromAPIProperties(resp.Replies[0].AddSheet.Properties), nil
	}
	return nil, nil
}

// ReadFirstRow returns the cells of row 1, or an empty slice when the row is blank.
func (c *Client) ReadFirstRow(ctx context.Context, title string) ([]string, error) {
	vr, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, headerRange(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", apiError(err))
	}
	if len(vr.Values) == 0 {
		return []string{}, nil
	}

	row := make([]string, 0, len(vr.Values[0]))
	for _, cell := range vr.Values[0] {
		row = append(row, fmt.Sprint(cell))
	}
	return row, nil
}

// WriteFirstRow overwrites row 1 with values.
func (c *Client) WriteFirstRow(ctx context.Context, title string, values []string) error {
	rangeA1 := headerRange(title)
	body := &sheetsapi.ValueRange{Range: rangeA1, MajorDimension: majorRows, Values: [][]any{toCells(values)}}

	_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, rangeA1, body).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header row: %w", apiError(err))
	}
	return nil
}

// AppendRow inserts values as a new row after the last row with data.
func (c *Client) AppendRow(ctx context.Context, title string, values []string) error {
	body := &sheetsapi.ValueRange{MajorDimension: majorRows, Values: [][]any{toCells(values)}}

	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, a1Range(title, "A:A"), body).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", apiError(err))
	}
	return nil
}

// apiError flattens a googleapi.Error to its status and message.
func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return fmt.Errorf("sheets api %d: %s", gerr.Code, gerr.Message)
	}
	return err
}

func fromAPIProperties(props *sheetsapi.SheetProperties) *SheetProperties {
	out := &SheetProperties{SheetID: props.SheetId, Title: props.Title}
	if props.GridProperties != nil {
		out.GridProperties = &GridProperties{
			RowCount:    int(props.GridProperties.RowCount),
			ColumnCount: int(props.GridProperties.ColumnCount),
		}
	}
	return out
}

func headerRange(title string) string {
	return a1Range(title, "1:1")
}

// a1Range qualifies cells with the sheet title, quoting titles that need it.
func a1Range(title, cells string) string {
	return quoteTitle(title) + "!" + cells
}

func quoteTitle(title string) string {
	for _, r := range title {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "'" + strings.ReplaceAll(title, "'", "''") + "'"
		}
	}
	return title
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
