package sheets_test

import (
	"context"

	"github.com/agentstation/catalogsync/pkg/sheets"
)

type fakeWorksheet struct {
	id      int64
	title   string
	records []sheets.Record
	err     error
	reads   int
}

func (w *fakeWorksheet) ID() int64     { return w.id }
func (w *fakeWorksheet) Title() string { return w.title }

func (w *fakeWorksheet) Records(context.Context) ([]sheets.Record, error) {
	w.reads++
	if w.err != nil {
		return nil, w.err
	}
	return w.records, nil
}

type fakeSpreadsheet struct {
	worksheets []*fakeWorksheet
	err        error
}

func (s *fakeSpreadsheet) Worksheets(context.Context) ([]sheets.Worksheet, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]sheets.Worksheet, len(s.worksheets))
	for i, w := range s.worksheets {
		out[i] = w
	}
	return out, nil
}

func tableRow(key, desc, status string) sheets.Record {
	return sheets.Record{"BQ Table": key, "Table 說明": desc, "狀態": status}
}

func columnRow(col, desc string) sheets.Record {
	return sheets.Record{"BQ 欄位": col, "說明": desc}
}
