// Package application provides the application interface for catalogsync commands.
//
// The Application interface is the contract between the application layer
// and command implementations. Commands accept it rather than the concrete
// app type so they can be driven by a Mock in tests.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            r, err := app.Reconciler(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... use r
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Application defines the interface that commands need from the app.
type Application interface {
	// Spreadsheet returns the configured spreadsheet, connecting lazily.
	Spreadsheet(ctx context.Context) (sheets.Spreadsheet, error)

	// Reconciler returns a reconciler over the configured catalog with the
	// configured datasets and layout. opts are applied after those.
	Reconciler(ctx context.Context, opts ...reconciler.Option) (reconciler.Reconciler, error)

	// Credentials inspects the configured credentials locally.
	Credentials() *adc.Details

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
