// Package app provides the application context and dependency management
// for the catalogsync CLI. It centralizes configuration, the Google clients
// and lifecycle management, and hands commands an application.Application.
package app

import (
	"context"
	"sync"

	gauth "cloud.google.com/go/auth"
	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/cmd/application"
	"github.com/agentstation/catalogsync/internal/auth"
	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/internal/sources/bigquery"
	"github.com/agentstation/catalogsync/internal/sources/googlesheets"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// App represents the catalogsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Google clients (lazy-initialized, singletons)
	mu          sync.Mutex
	credentials *gauth.Credentials
	spreadsheet sheets.Spreadsheet
	catalog     reconciler.Catalog
	closers     []func() error
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Credentials inspects the configured credentials locally.
func (a *App) Credentials() *adc.Details {
	return auth.Check(a.config.Credentials)
}

// loadCredentials must be called with a.mu held.
func (a *App) loadCredentials(ctx context.Context) (*gauth.Credentials, error) {
	if a.credentials != nil {
		return a.credentials, nil
	}
	creds, err := auth.Load(ctx, auth.Options{CredentialsFile: a.config.Credentials})
	if err != nil {
		return nil, err
	}
	a.credentials = creds
	return creds, nil
}

// Spreadsheet returns the configured spreadsheet, creating the Sheets
// client on first use.
func (a *App) Spreadsheet(ctx context.Context) (sheets.Spreadsheet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.spreadsheet != nil {
		return a.spreadsheet, nil
	}
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	creds, err := a.loadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	client, err := googlesheets.New(ctx, a.config.SheetID, creds)
	if err != nil {
		return nil, err
	}
	a.spreadsheet = client
	return client, nil
}

// catalogClient returns the BigQuery catalog, creating it on first use.
func (a *App) catalogClient(ctx context.Context) (reconciler.Catalog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	creds, err := a.loadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	client, err := bigquery.New(ctx, a.config.Project, creds)
	if err != nil {
		return nil, err
	}
	a.catalog = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

// Reconciler returns a reconciler over the configured catalog, datasets
// and spreadsheet layout.
func (a *App) Reconciler(ctx context.Context, opts ...reconciler.Option) (reconciler.Reconciler, error) {
	catalog, err := a.catalogClient(ctx)
	if err != nil {
		return nil, err
	}

	base := []reconciler.Option{
		reconciler.WithDatasets(a.config.Datasets),
		reconciler.WithLayout(a.config.Layout),
	}
	return reconciler.New(catalog, append(base, opts...)...)
}

// Shutdown releases the Google clients.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSpreadsheet sets the spreadsheet (useful for testing).
func WithSpreadsheet(ss sheets.Spreadsheet) Option {
	return func(a *App) error {
		a.spreadsheet = ss
		return nil
	}
}

// WithCatalog sets the catalog (useful for testing).
func WithCatalog(catalog reconciler.Catalog) Option {
	return func(a *App) error {
		a.catalog = catalog
		return nil
	}
}
