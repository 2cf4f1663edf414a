package output

import (
	"io"

	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/internal/cmd/alerts"
	"github.com/agentstation/catalogsync/internal/cmd/table"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// ReportOptions selects which sections of a run report are rendered in
// table format. JSON and YAML always carry the whole result.
type ReportOptions struct {
	Worksheets bool
	Changes    bool
}

// FormatResult writes the run report for result.
func FormatResult(w io.Writer, result *reconciler.Result, format Format, opts ReportOptions) error {
	if format != FormatTable && format != "" {
		return NewFormatter(format).Format(w, result)
	}

	f := &TableFormatter{}
	if opts.Worksheets && len(result.Worksheets) > 0 {
		if err := f.Format(w, table.WorksheetsToTableData(result.Worksheets)); err != nil {
			return err
		}
	}
	if len(result.Datasets) > 0 {
		if err := f.Format(w, table.DatasetFailuresToTableData(result.Datasets)); err != nil {
			return err
		}
	}
	if err := f.Format(w, table.TablesToTableData(result.Tables)); err != nil {
		return err
	}
	if changes := table.ChangesToTableData(result.Tables); opts.Changes && len(changes.Rows) > 0 {
		if err := f.Format(w, changes); err != nil {
			return err
		}
	}
	return alerts.NewWriterTo(w).WriteAlert(SummaryAlert(result))
}

// SummaryAlert turns the result summary into an alert whose level reflects
// the outcome of the run.
func SummaryAlert(result *reconciler.Result) *alerts.Alert {
	level := alerts.LevelSuccess
	switch {
	case !result.IsSuccess():
		level = alerts.LevelError
	case result.Metadata.DryRun:
		level = alerts.LevelInfo
	case failedWorksheets(result) > 0:
		level = alerts.LevelWarning
	}
	return alerts.New(level, result.Summary())
}

func failedWorksheets(result *reconciler.Result) int {
	n := 0
	for _, ws := range result.Worksheets {
		if ws.Status == sheets.WorksheetFailed {
			n++
		}
	}
	return n
}

// FormatCredentials writes credential details.
func FormatCredentials(w io.Writer, details *adc.Details, format Format) error {
	if format != FormatTable && format != "" {
		return NewFormatter(format).Format(w, details)
	}
	return NewFormatter(FormatTable).Format(w, table.CredentialsToTableData(details))
}
