// Package googlesheets reads worksheets through the Google Sheets API v4.
package googlesheets

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth"
	"google.golang.org/api/option"
	api "google.golang.org/api/sheets/v4"

	"github.com/agentstation/catalogsync/internal/sources"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Client is a sheets.Spreadsheet backed by one spreadsheet.
type Client struct {
	service       *api.Service
	spreadsheetID string
}

var _ sheets.Spreadsheet = (*Client)(nil)

// New opens the spreadsheet with creds. Extra client options are appended
// after the credentials.
func New(ctx context.Context, spreadsheetID string, creds *auth.Credentials, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.NewValidationError("sheet_id", spreadsheetID, "cannot be empty")
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if creds != nil {
		clientOpts = append(clientOpts, option.WithAuthCredentials(creds))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := api.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.NewConfigError(sources.ServiceSheets, "failed to create Sheets client", err)
	}
	return &Client{service: service, spreadsheetID: spreadsheetID}, nil
}

// Worksheets lists every worksheet of the spreadsheet. Rows are not read
// until Records is called on a worksheet.
func (c *Client) Worksheets(ctx context.Context) ([]sheets.Worksheet, error) {
	ss, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, sources.APIError(sources.ServiceSheets, err)
	}

	out := make([]sheets.Worksheet, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		out = append(out, &worksheet{
			client: c,
			id:     s.Properties.SheetId,
			title:  s.Properties.Title,
		})
	}
	logging.FromContext(ctx).Debug().
		Str("spreadsheet", c.spreadsheetID).
		Int("worksheets", len(out)).
		Msg("Listed worksheets")
	return out, nil
}

type worksheet struct {
	client *Client
	id     int64
	title  string
}

func (w *worksheet) ID() int64     { return w.id }
func (w *worksheet) Title() string { return w.title }

// Records reads the whole worksheet and returns one record per data row.
func (w *worksheet) Records(ctx context.Context) ([]sheets.Record, error) {
	vr, err := w.client.service.Spreadsheets.Values.Get(w.client.spreadsheetID, quoteRange(w.title)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, sources.APIError(sources.ServiceSheets, err)
	}
	return RecordsFromValues(vr.Values), nil
}

// quoteRange turns a worksheet title into an A1 range covering the sheet.
func quoteRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// RecordsFromValues converts a value grid into records keyed by the first
// row. Cells beyond a short row read as empty; columns with a blank header
// are dropped.
func RecordsFromValues(values [][]interface{}) []sheets.Record {
	if len(values) == 0 {
		return []sheets.Record{}
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(cellText(cell))
	}

	records := make([]sheets.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(sheets.Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = cellText(row[i])
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func cellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
