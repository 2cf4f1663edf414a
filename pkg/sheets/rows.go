package sheets

import (
	"strings"

	"github.com/agentstation/catalogsync/pkg/constants"
)

// TableRow is one row of the table list worksheet.
type TableRow struct {
	Key         string
	Description string
	Status      string
}

// ColumnRow is one row of a column worksheet.
type ColumnRow struct {
	Column      string
	Description string
}

// ParseTableRow reads a table list row. It reports false when the composite
// key is missing.
func ParseTableRow(rec Record, layout Layout) (TableRow, bool) {
	key, ok := rec.Get(layout.TableKeyHeader)
	if !ok {
		return TableRow{}, false
	}
	desc, _ := rec.Get(layout.TableDescriptionHeader)
	status, _ := rec.Get(layout.TableStatusHeader)
	return TableRow{Key: key, Description: desc, Status: status}, true
}

// ParseColumnRow reads a column worksheet row. It reports false when the
// column name is missing.
func ParseColumnRow(rec Record, layout Layout) (ColumnRow, bool) {
	col, ok := rec.Get(layout.ColumnNameHeader)
	if !ok {
		return ColumnRow{}, false
	}
	desc, _ := rec.Get(layout.ColumnDescriptionHeader)
	return ColumnRow{Column: col, Description: desc}, true
}

// SplitCompositeKey splits "dataset.table" on the first separator. Keys
// without a separator, or with an empty side, are rejected.
func SplitCompositeKey(key string) (dataset, table string, ok bool) {
	dataset, table, found := strings.Cut(key, constants.CompositeKeySeparator)
	if !found || dataset == "" || table == "" {
		return "", "", false
	}
	return dataset, table, true
}

// TableFromTitle derives the table name of a column worksheet. It reports
// false for titles without the prefix.
func TableFromTitle(title, prefix string) (string, bool) {
	table, found := strings.CutPrefix(title, prefix)
	if !found || table == "" {
		return "", false
	}
	return table, true
}
