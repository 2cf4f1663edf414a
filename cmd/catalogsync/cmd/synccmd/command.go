// Package synccmd provides the sync and plan commands.
package synccmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync/cmd/application"
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Flags holds the flags shared by sync and plan.
type Flags struct {
	DryRun         bool
	ShowWorksheets bool
	ShowChanges    bool
}

func addFlags(cmd *cobra.Command, withDryRun bool) *Flags {
	flags := &Flags{}
	if withDryRun {
		cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "compute changes without updating any table")
	}
	cmd.Flags().BoolVar(&flags.ShowWorksheets, "show-worksheets", false, "include the worksheet extraction report")
	cmd.Flags().BoolVar(&flags.ShowChanges, "show-changes", false, "list every field description that changes")
	return flags
}

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Sync table and column descriptions from the spreadsheet",
		Long: `Sync reads table descriptions from the table list worksheet and column
descriptions from every "sem.<table>" worksheet, then updates the description
and schema of each table in the target datasets.

A table that fails to fetch or update is reported and skipped; the other
tables are still processed. The command exits non-zero if any table failed.`,
		Example: `  catalogsync sync --datasets sales,marketing
  catalogsync sync --dry-run --show-changes
  catalogsync sync --format json > report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}
	flags = addFlags(cmd, true)
	return cmd
}

// NewPlanCommand creates the plan command, a dry run that always reports
// field changes.
func NewPlanCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "plan",
		GroupID: "core",
		Short:   "Show what sync would change without updating anything",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.DryRun = true
			flags.ShowChanges = true
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}
	flags = addFlags(cmd, false)
	return cmd
}

// Execute runs one sync and writes the report to w. The report is written
// even when the run was cut short.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())

	ss, err := app.Spreadsheet(ctx)
	if err != nil {
		return err
	}

	r, err := app.Reconciler(ctx, reconciler.WithDryRun(flags.DryRun))
	if err != nil {
		return err
	}

	result, runErr := r.Sync(ctx, ss)
	if result != nil {
		format := output.DetectFormat(app.OutputFormat())
		opts := output.ReportOptions{Worksheets: flags.ShowWorksheets, Changes: flags.ShowChanges}
		if err := output.FormatResult(w, result, format, opts); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	return result.Err()
}
