// Package table converts sync reports into rows for the table formatter.
package table

import (
	"strconv"

	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/internal/cmd/emoji"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// TablesToTableData converts per-table results to table format.
func TablesToTableData(tables []reconciler.TableResult) Data {
	rows := make([][]string, 0, len(tables))
	for _, tr := range tables {
		rows = append(rows, []string{
			tr.Dataset,
			tr.Table,
			StatusLabel(tr.Status),
			yesNo(tr.DescriptionChanged),
			strconv.Itoa(tr.ChangedFields),
			tr.Error,
		})
	}
	return Data{
		Headers: []string{"dataset", "table", "status", "description_changed", "fields_changed", "error"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignLeft, AlignLeft, AlignCenter, AlignRight, AlignLeft,
		},
	}
}

// ChangesToTableData lists every field description change of a result.
func ChangesToTableData(tables []reconciler.TableResult) Data {
	var rows [][]string
	for _, tr := range tables {
		for _, c := range tr.Changes {
			rows = append(rows, []string{tr.Dataset + "." + tr.Table, c.Path, c.Before, c.After})
		}
	}
	return Data{
		Headers: []string{"table", "field", "before", "after"},
		Rows:    rows,
	}
}

// WorksheetsToTableData converts the extraction report to table format.
func WorksheetsToTableData(worksheets []sheets.WorksheetResult) Data {
	rows := make([][]string, 0, len(worksheets))
	for _, ws := range worksheets {
		rows = append(rows, []string{ws.Title, ws.Table, string(ws.Status), strconv.Itoa(ws.Columns), ws.Error})
	}
	return Data{
		Headers:         []string{"worksheet", "table", "status", "columns", "error"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// DatasetFailuresToTableData lists datasets that could not be listed.
func DatasetFailuresToTableData(failures []reconciler.DatasetFailure) Data {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Dataset, f.Error})
	}
	return Data{Headers: []string{"dataset", "error"}, Rows: rows}
}

// CredentialsToTableData converts credential details to a key-value table.
func CredentialsToTableData(d *adc.Details) Data {
	rows := [][]string{
		{"state", d.State.String()},
		{"type", d.Type},
		{"account", d.Account},
		{"project", d.Project},
		{"project_source", d.ProjectSource},
		{"path", d.Path},
	}
	if !d.LastModified.IsZero() {
		rows = append(rows, []string{"last_modified", d.LastModified.Format("2006-01-02 15:04:05")})
	}
	if d.ErrorMessage != "" {
		rows = append(rows, []string{"error", d.ErrorMessage})
	}
	return Data{Headers: []string{"property", "value"}, Rows: rows}
}

// StatusLabel prefixes a table status with its symbol.
func StatusLabel(status reconciler.TableStatus) string {
	var symbol string
	switch status {
	case reconciler.StatusUpdated:
		symbol = emoji.Success
	case reconciler.StatusUnchanged:
		symbol = emoji.Unchanged
	case reconciler.StatusPlanned:
		symbol = emoji.Planned
	case reconciler.StatusFailed:
		symbol = emoji.Error
	default:
		return string(status)
	}
	return symbol + " " + string(status)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
