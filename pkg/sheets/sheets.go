// Package sheets turns spreadsheet worksheets into normalized metadata facts.
//
// The spreadsheet itself is reached through the Spreadsheet and Worksheet
// interfaces; the Google Sheets adapter lives in internal/sources/googlesheets.
// Two worksheet kinds are read:
//
//   - the table list, addressed by a numeric sheet id, with one row per table
//     keyed "<dataset>.<table>";
//   - column worksheets titled "sem.<table>", with one row per column.
package sheets

import (
	"context"
	"strconv"

	"github.com/agentstation/catalogsync/pkg/constants"
)

// Record is one data row keyed by the worksheet's header row.
type Record map[string]string

// Get returns the cell under header, reporting false when the header is
// absent or the cell is empty.
func (r Record) Get(header string) (string, bool) {
	v, ok := r[header]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Worksheet is one tab of the spreadsheet.
type Worksheet interface {
	ID() int64
	Title() string
	// Records reads every data row. Implementations may hit the network.
	Records(ctx context.Context) ([]Record, error)
}

// Spreadsheet lists the worksheets of one spreadsheet.
type Spreadsheet interface {
	Worksheets(ctx context.Context) ([]Worksheet, error)
}

// Layout names the worksheets and headers the extractors read.
type Layout struct {
	TableWorksheetID  int64  `mapstructure:"table_worksheet_id" json:"table_worksheet_id" yaml:"table_worksheet_id"`
	ColumnSheetPrefix string `mapstructure:"column_sheet_prefix" json:"column_sheet_prefix" yaml:"column_sheet_prefix"`

	TableKeyHeader          string `mapstructure:"table_key" json:"table_key" yaml:"table_key"`
	TableDescriptionHeader  string `mapstructure:"table_description" json:"table_description" yaml:"table_description"`
	TableStatusHeader       string `mapstructure:"table_status" json:"table_status" yaml:"table_status"`
	ColumnNameHeader        string `mapstructure:"column_name" json:"column_name" yaml:"column_name"`
	ColumnDescriptionHeader string `mapstructure:"column_description" json:"column_description" yaml:"column_description"`
}

// DefaultLayout returns the layout of the description spreadsheet.
func DefaultLayout() Layout {
	return Layout{
		TableWorksheetID:        constants.DefaultTableWorksheetID,
		ColumnSheetPrefix:       constants.DefaultColumnSheetPrefix,
		TableKeyHeader:          constants.HeaderTableKey,
		TableDescriptionHeader:  constants.HeaderTableDescription,
		TableStatusHeader:       constants.HeaderTableStatus,
		ColumnNameHeader:        constants.HeaderColumnName,
		ColumnDescriptionHeader: constants.HeaderColumnDescription,
	}
}

// WithDefaults fills every unset field from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.TableWorksheetID == 0 {
		l.TableWorksheetID = d.TableWorksheetID
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.ColumnSheetPrefix, d.ColumnSheetPrefix)
	fill(&l.TableKeyHeader, d.TableKeyHeader)
	fill(&l.TableDescriptionHeader, d.TableDescriptionHeader)
	fill(&l.TableStatusHeader, d.TableStatusHeader)
	fill(&l.ColumnNameHeader, d.ColumnNameHeader)
	fill(&l.ColumnDescriptionHeader, d.ColumnDescriptionHeader)
	return l
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
