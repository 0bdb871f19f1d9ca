package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu     sync.Mutex
	titles map[string]bool // tabs known to exist
}

// Ensure interface conformance
var (
	_ ports.TableWriter = (*Client)(nil)
	_ ports.TableReader = (*Client)(nil)
)

// New creates a client for one spreadsheet. opts are passed to the Sheets
// service; production callers use NewWithServiceAccount.
func New(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		titles:        make(map[string]bool),
	}, nil
}

// NewWithServiceAccount authenticates with service account credentials,
// taken from inline JSON when given and from file otherwise.
func NewWithServiceAccount(ctx context.Context, spreadsheetID, credentialsJSON, credentialsFile string) (*Client, error) {
	creds, err := serviceAccountCredentials(ctx, credentialsJSON, credentialsFile)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	return New(ctx, spreadsheetID,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func serviceAccountCredentials(ctx context.Context, inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// quoteTitle renders a tab title for use in A1 notation.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// ensureSheet creates the tab when the spreadsheet does not have it yet.
func (c *Client) ensureSheet(ctx context.Context, title string) error {
	c.mu.Lock()
	known := c.titles[title]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	c.mu.Lock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.titles[sh.Properties.Title] = true
		}
	}
	known = c.titles[title]
	c.mu.Unlock()
	if known {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created sheet", "title", title)

	c.mu.Lock()
	c.titles[title] = true
	c.mu.Unlock()
	return nil
}

// ReplaceSheet clears the tab and writes rows starting at A1. Cells are
// stored as RAW text so user content is never evaluated as a formula.
func (c *Client) ReplaceSheet(ctx context.Context, title string, rows [][]string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}

	rng := quoteTitle(title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", title, err)
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		values[i] = row
	}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", title, err)
	}

	slog.DebugContext(ctx, "Sheet replaced", "title", title, "rows", len(rows))
	return nil
}

// ReadSheet returns the tab's values as strings.
func (c *Client) ReadSheet(ctx context.Context, title string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteTitle(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", title, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		out = append(out, toStrings(r))
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
