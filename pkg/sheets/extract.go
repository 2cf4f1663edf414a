package sheets

import (
	"context"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/metadata"
)

// WorksheetStatus is the outcome of reading one column worksheet.
type WorksheetStatus string

const (
	// WorksheetRead means at least one column description was taken from the worksheet.
	WorksheetRead WorksheetStatus = "read"
	// WorksheetEmpty means the worksheet had no usable rows.
	WorksheetEmpty WorksheetStatus = "empty"
	// WorksheetFailed means reading the worksheet failed; it contributed nothing.
	WorksheetFailed WorksheetStatus = "failed"
)

// WorksheetResult reports what one column worksheet contributed.
type WorksheetResult struct {
	Title   string          `json:"title" yaml:"title"`
	Table   string          `json:"table" yaml:"table"`
	Status  WorksheetStatus `json:"status" yaml:"status"`
	Columns int             `json:"columns" yaml:"columns"`
	Error   string          `json:"error,omitempty" yaml:"error,omitempty"`
	Err     error           `json:"-" yaml:"-"`
}

// Extraction is the batched output of both extractors.
type Extraction struct {
	Tables     metadata.TableFacts
	Columns    metadata.ColumnSchemaMap
	Worksheets []WorksheetResult
}

// Extractor reads table and column facts from a spreadsheet.
type Extractor struct {
	layout Layout
}

// NewExtractor creates an extractor for the given layout. Unset layout
// fields take their defaults.
func NewExtractor(layout Layout) *Extractor {
	return &Extractor{layout: layout.WithDefaults()}
}

// Layout returns the effective layout.
func (e *Extractor) Layout() Layout {
	return e.layout
}

// Extract lists the worksheets once and runs both extractors over them.
// Only a failure to list worksheets or to read the table list is returned;
// column worksheet failures are reported in Extraction.Worksheets.
func (e *Extractor) Extract(ctx context.Context, ss Spreadsheet, datasets metadata.Datasets) (*Extraction, error) {
	worksheets, err := ss.Worksheets(ctx)
	if err != nil {
		return nil, errors.WrapResource("list", "worksheets", "", err)
	}

	tables, err := e.extractTableFacts(ctx, worksheets, datasets)
	if err != nil {
		return nil, err
	}

	columns, results := e.ExtractColumnSchemas(ctx, worksheets)
	return &Extraction{Tables: tables, Columns: columns, Worksheets: results}, nil
}

// ExtractTableFacts reads the table list worksheet of ss.
func (e *Extractor) ExtractTableFacts(ctx context.Context, ss Spreadsheet, datasets metadata.Datasets) (metadata.TableFacts, error) {
	worksheets, err := ss.Worksheets(ctx)
	if err != nil {
		return nil, errors.WrapResource("list", "worksheets", "", err)
	}
	return e.extractTableFacts(ctx, worksheets, datasets)
}

func (e *Extractor) extractTableFacts(ctx context.Context, worksheets []Worksheet, datasets metadata.Datasets) (metadata.TableFacts, error) {
	logger := logging.FromContext(ctx)

	var ws Worksheet
	for _, w := range worksheets {
		if w.ID() == e.layout.TableWorksheetID {
			ws = w
			break
		}
	}
	if ws == nil {
		return nil, errors.NewNotFoundError("worksheet", formatID(e.layout.TableWorksheetID))
	}

	logger.Info().
		Str("worksheet", ws.Title()).
		Int64("sheet_id", ws.ID()).
		Msg("Reading table descriptions")

	records, err := ws.Records(ctx)
	if err != nil {
		return nil, errors.NewSheetError(ws.Title(), err)
	}

	facts := TableFactsFromRecords(records, datasets, e.layout)
	logger.Info().Int("tables", len(facts)).Msg("Found table descriptions")
	return facts, nil
}

// TableFactsFromRecords builds the table fact map from table list rows.
// Rows without a usable key, or outside the target datasets, are skipped.
// A table listed twice keeps its last row.
func TableFactsFromRecords(records []Record, datasets metadata.Datasets, layout Layout) metadata.TableFacts {
	facts := make(metadata.TableFacts)
	for _, rec := range records {
		row, ok := ParseTableRow(rec, layout)
		if !ok {
			continue
		}
		dataset, table, ok := SplitCompositeKey(row.Key)
		if !ok || !datasets.Contains(dataset) {
			continue
		}
		facts[table] = metadata.TableFact{
			Table:       table,
			Description: row.Description,
			Status:      row.Status,
		}
	}
	return facts
}

// ExtractColumnSchemas reads every worksheet whose title carries the column
// prefix. Other worksheets are never read. A worksheet that fails to read is
// logged and skipped.
func (e *Extractor) ExtractColumnSchemas(ctx context.Context, worksheets []Worksheet) (metadata.ColumnSchemaMap, []WorksheetResult) {
	logger := logging.FromContext(ctx)
	columns := make(metadata.ColumnSchemaMap)
	var results []WorksheetResult

	for _, ws := range worksheets {
		title := ws.Title()
		table, ok := TableFromTitle(title, e.layout.ColumnSheetPrefix)
		if !ok {
			continue
		}

		wsLogger := logging.FromContext(logging.WithWorksheet(ctx, title))
		wsLogger.Info().Msg("Reading column descriptions")

		result := WorksheetResult{Title: title, Table: table}
		records, err := ws.Records(ctx)
		if err != nil {
			result.Status = WorksheetFailed
			result.Err = errors.NewSheetError(title, err)
			result.Error = result.Err.Error()
			wsLogger.Warn().Err(err).Msg("Failed to read worksheet, skipping")
			results = append(results, result)
			continue
		}

		cols := ColumnsFromRecords(records, e.layout)
		result.Columns = len(cols)
		if len(cols) == 0 {
			result.Status = WorksheetEmpty
		} else {
			result.Status = WorksheetRead
			for col, desc := range cols {
				columns.Add(metadata.ColumnFact{Table: table, Column: col, Description: desc})
			}
			wsLogger.Info().Int("columns", len(cols)).Msg("Found column descriptions")
		}
		results = append(results, result)
	}

	logger.Info().Int("tables", len(columns)).Msg("Collected column descriptions")
	return columns, results
}

// ColumnsFromRecords builds column name to description for one worksheet.
// Rows without a column name are skipped; a repeated column keeps its last row.
func ColumnsFromRecords(records []Record, layout Layout) map[string]string {
	cols := make(map[string]string)
	for _, rec := range records {
		row, ok := ParseColumnRow(rec, layout)
		if !ok {
			continue
		}
		cols[row.Column] = row.Description
	}
	return cols
}
