// Package reconciler drives a sync run: it extracts the spreadsheet facts
// once, then walks every table of every target dataset, computing and
// applying one combined description+schema update per table.
//
// Failures are contained at the narrowest boundary: a worksheet, a dataset
// listing, or a single table. Only setup failures and cancellation end a run
// early. Nothing is retried; re-running is safe because an up-to-date table
// produces no field changes.
package reconciler

import (
	"context"

	"github.com/google/uuid"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Catalog is the warehouse catalog capability the reconciler writes to.
type Catalog interface {
	// ListTables returns the table names of dataset. Zero tables is not an error.
	ListTables(ctx context.Context, dataset string) ([]string, error)
	// GetTable fetches the current description and schema of one table.
	GetTable(ctx context.Context, dataset, table string) (*metadata.TableMetadata, error)
	// UpdateTable writes description and schema in one call.
	UpdateTable(ctx context.Context, dataset, table string, update metadata.TableUpdate) error
}

// Reconciler is the main interface for syncing spreadsheet metadata into the catalog.
type Reconciler interface {
	// Sync extracts facts from ss and applies them.
	Sync(ctx context.Context, ss sheets.Spreadsheet) (*Result, error)
	// Apply applies already extracted facts.
	Apply(ctx context.Context, extraction *sheets.Extraction) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	catalog   Catalog
	extractor *sheets.Extractor
	datasets  metadata.Datasets
	dryRun    bool
	runID     func() string
}

// New creates a new Reconciler writing to catalog.
func New(catalog Catalog, opts ...Option) (Reconciler, error) {
	if catalog == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		catalog:   catalog,
		extractor: sheets.NewExtractor(o.layout),
		datasets:  o.datasets,
		dryRun:    o.dryRun,
		runID:     o.runID,
	}, nil
}

func newRunID() string {
	return uuid.NewString()
}

// Sync performs extraction followed by Apply.
func (r *reconciler) Sync(ctx context.Context, ss sheets.Spreadsheet) (*Result, error) {
	extraction, err := r.extractor.Extract(ctx, ss, r.datasets)
	if err != nil {
		return nil, err
	}
	return r.Apply(ctx, extraction)
}

// Apply walks the target datasets in order. The returned error is non-nil
// only when the run was cut short; contained failures are in the Result.
func (r *reconciler) Apply(ctx context.Context, extraction *sheets.Extraction) (*Result, error) {
	if extraction == nil {
		extraction = &sheets.Extraction{}
	}
	result := NewResult(r.runID(), r.dryRun)
	result.Worksheets = extraction.Worksheets
	defer result.finish()

	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.FromContext(ctx)
	logger.Info().
		Strs("datasets", r.datasets).
		Bool("dry_run", r.dryRun).
		Msg("Starting catalog metadata sync")

	for _, dataset := range r.datasets {
		if err := r.syncDataset(ctx, dataset, extraction, result); err != nil {
			return result, err
		}
	}

	logger.Info().
		Int("tables", result.Metadata.Stats.Tables).
		Int("fields_changed", result.Metadata.Stats.FieldsChanged).
		Int("failed", result.Metadata.Stats.Failed).
		Msg(result.Summary())
	return result, nil
}

func (r *reconciler) syncDataset(ctx context.Context, dataset string, extraction *sheets.Extraction, result *Result) error {
	ctx = logging.WithDataset(ctx, dataset)
	logger := logging.FromContext(ctx)
	result.Metadata.Stats.Datasets++

	tables, err := r.catalog.ListTables(ctx, dataset)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = errors.WrapResource("list", "tables in dataset", dataset, err)
		logger.Error().Err(err).Msg("Failed to list tables, skipping dataset")
		result.addDatasetFailure(dataset, err)
		return nil
	}
	logger.Info().Int("tables", len(tables)).Msg("Processing dataset")

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.addTable(r.syncTable(ctx, dataset, table, extraction))
	}
	return nil
}

func (r *reconciler) syncTable(ctx context.Context, dataset, table string, extraction *sheets.Extraction) TableResult {
	logger := logging.FromContext(logging.WithTable(ctx, table))
	tr := TableResult{Dataset: dataset, Table: table}

	current, err := r.catalog.GetTable(ctx, dataset, table)
	if err != nil {
		tr.Status = StatusFailed
		tr.Err = errors.WrapResource("get", "table", dataset+"."+table, err)
		logger.Error().Err(tr.Err).Msg("Failed to fetch table")
		return tr
	}

	plan := Plan(current, extraction.Tables, extraction.Columns)
	tr.Description = plan.Update.Description
	tr.DescriptionChanged = plan.DescriptionChanged
	tr.ChangedFields = plan.ChangedFields
	tr.Changes = plan.Changes

	if plan.DescriptionChanged {
		logger.Info().Str("description", plan.Update.Description).Msg("Updating table description")
	}
	logger.Info().Int("changed_fields", plan.ChangedFields).Msg("Updating column descriptions")

	if r.dryRun {
		tr.Status = StatusPlanned
		return tr
	}

	if err := r.catalog.UpdateTable(ctx, dataset, table, plan.Update); err != nil {
		tr.Status = StatusFailed
		tr.Err = errors.WrapResource("update", "table", dataset+"."+table, err)
		logger.Error().Err(tr.Err).Msg("Update failed")
		return tr
	}

	if plan.HasChanges() {
		tr.Status = StatusUpdated
	} else {
		tr.Status = StatusUnchanged
	}
	logger.Info().Str("status", string(tr.Status)).Msg("Update succeeded")
	return tr
}
