package reconciler_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// memoryCatalog is an in-memory reconciler.Catalog.
type memoryCatalog struct {
	tables    map[string]map[string]*metadata.TableMetadata
	listErr   map[string]error
	getErr    map[string]error
	updateErr map[string]error
	onUpdate  func(dataset, table string)
	updates   []string
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		tables:    map[string]map[string]*metadata.TableMetadata{},
		listErr:   map[string]error{},
		getErr:    map[string]error{},
		updateErr: map[string]error{},
	}
}

func (c *memoryCatalog) put(dataset, table, desc string, fields ...metadata.Field) {
	if c.tables[dataset] == nil {
		c.tables[dataset] = map[string]*metadata.TableMetadata{}
	}
	c.tables[dataset][table] = &metadata.TableMetadata{
		Dataset:     dataset,
		Table:       table,
		Description: desc,
		Schema:      fields,
	}
}

func (c *memoryCatalog) ListTables(_ context.Context, dataset string) ([]string, error) {
	if err := c.listErr[dataset]; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.tables[dataset]))
	for name := range c.tables[dataset] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *memoryCatalog) GetTable(_ context.Context, dataset, table string) (*metadata.TableMetadata, error) {
	if err := c.getErr[dataset+"."+table]; err != nil {
		return nil, err
	}
	t, ok := c.tables[dataset][table]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("table", dataset+"."+table)
	}
	cp := *t
	cp.Schema = metadata.CloneFields(t.Schema)
	return &cp, nil
}

func (c *memoryCatalog) UpdateTable(_ context.Context, dataset, table string, update metadata.TableUpdate) error {
	if c.onUpdate != nil {
		c.onUpdate(dataset, table)
	}
	if err := c.updateErr[dataset+"."+table]; err != nil {
		return err
	}
	t := c.tables[dataset][table]
	t.Description = update.Description
	t.Schema = metadata.CloneFields(update.Schema)
	c.updates = append(c.updates, dataset+"."+table)
	return nil
}

type worksheet struct {
	id      int64
	title   string
	records []sheets.Record
}

func (w *worksheet) ID() int64     { return w.id }
func (w *worksheet) Title() string { return w.title }
func (w *worksheet) Records(context.Context) ([]sheets.Record, error) {
	return w.records, nil
}

type spreadsheet []sheets.Worksheet

func (s spreadsheet) Worksheets(context.Context) ([]sheets.Worksheet, error) { return s, nil }

func salesSpreadsheet() spreadsheet {
	return spreadsheet{
		&worksheet{id: 16282389, title: "tables", records: []sheets.Record{
			{"BQ Table": "sales.orders", "Table 說明": "Orders table", "狀態": "Active"},
			{"BQ Table": "sales.customers", "Table 說明": "Customers"},
			{"BQ Table": "finance.ledger", "Table 說明": "Ledger"},
		}},
		&worksheet{id: 1, title: "sem.orders", records: []sheets.Record{
			{"BQ 欄位": "id", "說明": "Order ID"},
			{"BQ 欄位": "amount", "說明": "Total"},
			{"BQ 欄位": "address.city", "說明": "Ship-to city"},
		}},
		&worksheet{id: 2, title: "notes", records: []sheets.Record{{"BQ 欄位": "id", "說明": "ignored"}}},
	}
}

func salesCatalog() *memoryCatalog {
	c := newMemoryCatalog()
	c.put("sales", "orders", "",
		metadata.Field{Name: "id", Type: "INTEGER", Mode: "REQUIRED"},
		metadata.Field{Name: "amount", Type: "FLOAT", Description: "Total"},
		metadata.Field{Name: "address", Type: "RECORD", Fields: []metadata.Field{
			{Name: "city", Type: "STRING"},
		}},
	)
	c.put("sales", "customers", "old", metadata.Field{Name: "name", Type: "STRING"})
	return c
}

func newReconciler(t *testing.T, catalog reconciler.Catalog, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	opts = append([]reconciler.Option{reconciler.WithRunID(func() string { return "run-1" })}, opts...)
	r, err := reconciler.New(catalog, opts...)
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	_, err := reconciler.New(nil, reconciler.WithDatasets(metadata.Datasets{"sales"}))
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(newMemoryCatalog())
	assert.True(t, pkgerrors.IsValidationError(err), "datasets are required")

	_, err = reconciler.New(newMemoryCatalog(), reconciler.WithDatasets(metadata.Datasets{" ", ""}))
	assert.True(t, pkgerrors.IsValidationError(err), "blank datasets are dropped")

	_, err = reconciler.New(newMemoryCatalog(),
		reconciler.WithDatasets(metadata.Datasets{"sales"}),
		reconciler.WithRunID(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestSync(t *testing.T) {
	catalog := salesCatalog()
	r := newReconciler(t, catalog, reconciler.WithDatasets(metadata.Datasets{"sales"}))

	result, err := r.Sync(context.Background(), salesSpreadsheet())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.NoError(t, result.Err())
	assert.Equal(t, "run-1", result.RunID)

	orders := catalog.tables["sales"]["orders"]
	assert.Equal(t, "Orders table (狀態: Active)", orders.Description)
	assert.Equal(t, []metadata.Field{
		{Name: "id", Type: "INTEGER", Mode: "REQUIRED", Description: "Order ID"},
		{Name: "amount", Type: "FLOAT", Description: "Total"},
		{Name: "address", Type: "RECORD", Fields: []metadata.Field{
			{Name: "city", Type: "STRING", Description: "Ship-to city"},
		}},
	}, orders.Schema)

	customers := catalog.tables["sales"]["customers"]
	assert.Equal(t, "Customers", customers.Description)
	assert.Equal(t, []metadata.Field{{Name: "name", Type: "STRING"}}, customers.Schema)

	tr, ok := result.Table("sales", "orders")
	require.True(t, ok)
	assert.Equal(t, reconciler.StatusUpdated, tr.Status)
	assert.True(t, tr.DescriptionChanged)
	assert.Equal(t, 2, tr.ChangedFields, "amount already had the same description")
	assert.Len(t, tr.Changes, 2)

	assert.Equal(t, 2, result.Metadata.Stats.Updated)
	assert.Equal(t, 2, result.Metadata.Stats.FieldsChanged)
	assert.Len(t, result.Worksheets, 1, "only prefixed worksheets are reported")
}

func TestSyncIdempotent(t *testing.T) {
	catalog := salesCatalog()
	r := newReconciler(t, catalog, reconciler.WithDatasets(metadata.Datasets{"sales"}))
	ctx := context.Background()

	_, err := r.Sync(ctx, salesSpreadsheet())
	require.NoError(t, err)
	afterFirst := metadata.CloneFields(catalog.tables["sales"]["orders"].Schema)

	second, err := r.Sync(ctx, salesSpreadsheet())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Metadata.Stats.FieldsChanged)
	assert.Equal(t, 0, second.Metadata.Stats.Updated)
	assert.Equal(t, 2, second.Metadata.Stats.Unchanged)
	assert.Equal(t, afterFirst, catalog.tables["sales"]["orders"].Schema)
	// The combined update is still issued for every table.
	assert.Len(t, catalog.updates, 4)
}

func TestFaultIsolation(t *testing.T) {
	catalog := salesCatalog()
	catalog.put("sales", "archive", "", metadata.Field{Name: "id", Type: "INTEGER"})
	catalog.put("marketing", "campaigns", "")
	catalog.put("finance", "ledger", "")
	catalog.updateErr["sales.archive"] = pkgerrors.NewAPIError("bigquery", 403, "access denied")
	catalog.getErr["sales.customers"] = pkgerrors.NewAPIError("bigquery", 503, "backend error")
	catalog.listErr["marketing"] = errors.New("dataset not found")

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r := newReconciler(t, catalog, reconciler.WithDatasets(metadata.Datasets{"sales", "marketing", "finance"}))
	result, err := r.Sync(ctx, salesSpreadsheet())
	require.NoError(t, err, "contained failures do not abort the run")

	assert.False(t, result.IsSuccess())
	require.Error(t, result.Err())
	assert.True(t, pkgerrors.IsPermissionDenied(result.Err()))

	archive, ok := result.Table("sales", "archive")
	require.True(t, ok)
	assert.Equal(t, reconciler.StatusFailed, archive.Status)
	assert.Contains(t, archive.Error, "access denied")

	customers, _ := result.Table("sales", "customers")
	assert.Equal(t, reconciler.StatusFailed, customers.Status)

	orders, _ := result.Table("sales", "orders")
	assert.Equal(t, reconciler.StatusUpdated, orders.Status)

	ledger, ok := result.Table("finance", "ledger")
	require.True(t, ok, "later datasets still run")
	assert.Equal(t, "Ledger", catalog.tables["finance"]["ledger"].Description)
	assert.Equal(t, reconciler.StatusUpdated, ledger.Status)

	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "marketing", result.Datasets[0].Dataset)

	assert.Equal(t, 2, result.Metadata.Stats.Failed)
	assert.Equal(t, 3, result.Metadata.Stats.Datasets)
	tl.AssertContains(t, "Update failed")
	tl.AssertContains(t, "access denied")
	tl.AssertContains(t, "Failed to list tables, skipping dataset")
}

func TestDryRun(t *testing.T) {
	catalog := salesCatalog()
	r := newReconciler(t, catalog,
		reconciler.WithDatasets(metadata.Datasets{"sales"}),
		reconciler.WithDryRun(true))

	result, err := r.Sync(context.Background(), salesSpreadsheet())
	require.NoError(t, err)

	assert.Empty(t, catalog.updates)
	assert.Equal(t, "", catalog.tables["sales"]["orders"].Description)
	assert.Equal(t, 2, result.Metadata.Stats.Planned)
	assert.Equal(t, 2, result.Metadata.Stats.FieldsChanged)
	assert.True(t, result.Metadata.DryRun)
	assert.Contains(t, result.Summary(), "Dry run")

	orders, _ := result.Table("sales", "orders")
	assert.Equal(t, reconciler.StatusPlanned, orders.Status)
	assert.Equal(t, "Orders table (狀態: Active)", orders.Description)
}

func TestCancellationStopsBeforeNextTable(t *testing.T) {
	catalog := salesCatalog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	catalog.onUpdate = func(string, string) { cancel() }

	r := newReconciler(t, catalog, reconciler.WithDatasets(metadata.Datasets{"sales"}))
	result, err := r.Sync(ctx, salesSpreadsheet())

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	// Tables are listed in name order: customers first, then orders.
	assert.Equal(t, []string{"sales.customers"}, catalog.updates)
	assert.Len(t, result.Tables, 1)
	assert.Equal(t, "", catalog.tables["sales"]["orders"].Description)
}

func TestSyncExtractionFailure(t *testing.T) {
	r := newReconciler(t, salesCatalog(), reconciler.WithDatasets(metadata.Datasets{"sales"}))

	_, err := r.Sync(context.Background(), spreadsheet{})
	assert.True(t, pkgerrors.IsNotFound(err), "missing table worksheet is fatal")
}

func TestApplyEmptyExtraction(t *testing.T) {
	catalog := salesCatalog()
	r := newReconciler(t, catalog, reconciler.WithDatasets(metadata.Datasets{"sales"}))

	result, err := r.Apply(context.Background(), &sheets.Extraction{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Metadata.Stats.Unchanged)
	assert.Equal(t, "old", catalog.tables["sales"]["customers"].Description)
}

func TestPlan(t *testing.T) {
	current := &metadata.TableMetadata{
		Table:       "orders",
		Description: "keep me",
		Schema:      []metadata.Field{{Name: "id", Type: "INTEGER"}},
		ETag:        "etag-1",
	}

	t.Run("no facts keeps everything", func(t *testing.T) {
		plan := reconciler.Plan(current, nil, nil)
		assert.False(t, plan.HasChanges())
		assert.Equal(t, "keep me", plan.Update.Description)
		assert.Equal(t, "etag-1", plan.Update.ETag)
		assert.Equal(t, current.Schema, plan.Update.Schema)
	})

	t.Run("empty description fact keeps current", func(t *testing.T) {
		facts := metadata.TableFacts{"orders": {Table: "orders", Status: "Draft"}}
		plan := reconciler.Plan(current, facts, nil)
		assert.Equal(t, "keep me", plan.Update.Description)
		assert.False(t, plan.DescriptionChanged)
	})

	t.Run("column overlay", func(t *testing.T) {
		cols := metadata.ColumnSchemaMap{"orders": {"id": "Order ID"}}
		plan := reconciler.Plan(current, nil, cols)
		assert.True(t, plan.HasChanges())
		assert.Equal(t, 1, plan.ChangedFields)
		assert.Equal(t, "", current.Schema[0].Description, "current schema is not mutated")
	})
}
