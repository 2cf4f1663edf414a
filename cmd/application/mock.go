package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	SpreadsheetFunc  func(ctx context.Context) (sheets.Spreadsheet, error)
	ReconcilerFunc   func(ctx context.Context, opts ...reconciler.Option) (reconciler.Reconciler, error)
	CredentialsFunc  func() *adc.Details
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Spreadsheet returns a spreadsheet using the mock function or nil.
func (m *Mock) Spreadsheet(ctx context.Context) (sheets.Spreadsheet, error) {
	if m.SpreadsheetFunc != nil {
		return m.SpreadsheetFunc(ctx)
	}
	return nil, nil
}

// Reconciler returns a reconciler using the mock function or nil.
func (m *Mock) Reconciler(ctx context.Context, opts ...reconciler.Option) (reconciler.Reconciler, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc(ctx, opts...)
	}
	return nil, nil
}

// Credentials returns details using the mock function or a missing state.
func (m *Mock) Credentials() *adc.Details {
	if m.CredentialsFunc != nil {
		return m.CredentialsFunc()
	}
	return &adc.Details{State: adc.StateMissing}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
