package reconciler

import (
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// options configures a reconciler.
type options struct {
	datasets metadata.Datasets
	layout   sheets.Layout
	dryRun   bool
	runID    func() string
}

func defaultOptions() *options {
	return &options{
		layout: sheets.DefaultLayout(),
		runID:  newRunID,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if len(o.datasets) == 0 {
		return nil, &errors.ValidationError{
			Field:   "datasets",
			Message: "at least one target dataset is required",
		}
	}
	return o, nil
}

// WithDatasets sets the target datasets, in processing order.
func WithDatasets(datasets metadata.Datasets) Option {
	return func(o *options) error {
		o.datasets = metadata.NewDatasets(datasets...)
		return nil
	}
}

// WithLayout sets the spreadsheet layout used by Sync.
func WithLayout(layout sheets.Layout) Option {
	return func(o *options) error {
		o.layout = layout.WithDefaults()
		return nil
	}
}

// WithDryRun computes every table's changes without writing them.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithRunID overrides run ID generation.
func WithRunID(fn func() string) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{
				Field:   "run_id",
				Message: "cannot be nil",
			}
		}
		o.runID = fn
		return nil
	}
}
