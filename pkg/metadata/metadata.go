// Package metadata defines the normalized facts extracted from the spreadsheet
// and the mirror of a BigQuery table schema that the reconciler overlays them on.
package metadata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/catalogsync/pkg/constants"
)

// TableFact is the table-level description declared in the spreadsheet.
type TableFact struct {
	Table       string `json:"table" yaml:"table"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// MergedDescription returns the description to write for the table, suffixed
// with the status when one is set. ok is false when the fact has no
// description, in which case the catalog's current description must be kept.
func (f TableFact) MergedDescription() (string, bool) {
	if f.Description == "" {
		return "", false
	}
	if f.Status == "" {
		return f.Description, true
	}
	return fmt.Sprintf("%s (%s: %s)", f.Description, constants.StatusLabel, f.Status), true
}

// TableFacts maps table name to its fact within the target datasets.
type TableFacts map[string]TableFact

// Description resolves the merged description for table.
func (t TableFacts) Description(table string) (string, bool) {
	fact, ok := t[table]
	if !ok {
		return "", false
	}
	return fact.MergedDescription()
}

// ColumnFact is one column description read from a column worksheet.
type ColumnFact struct {
	Table       string
	Column      string
	Description string
}

// ColumnSchemaMap maps table name to column name to description.
type ColumnSchemaMap map[string]map[string]string

// Add records a fact. A later fact for the same column replaces the earlier one.
func (m ColumnSchemaMap) Add(fact ColumnFact) {
	cols, ok := m[fact.Table]
	if !ok {
		cols = make(map[string]string)
		m[fact.Table] = cols
	}
	cols[fact.Column] = fact.Description
}

// Columns returns the column descriptions for table. An absent table yields
// an empty map, so callers never need to tell absent and empty apart.
func (m ColumnSchemaMap) Columns(table string) map[string]string {
	if cols, ok := m[table]; ok {
		return cols
	}
	return map[string]string{}
}

// Field mirrors one BigQuery schema field.
type Field struct {
	Name        string  `json:"name" yaml:"name"`
	Type        string  `json:"type" yaml:"type"`
	Mode        string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Clone returns a deep copy of the field and its sub-fields.
func (f Field) Clone() Field {
	out := f
	out.Fields = CloneFields(f.Fields)
	return out
}

// CloneFields deep-copies a field list, preserving order and nil-ness.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

// TableMetadata is the catalog state of one table.
type TableMetadata struct {
	Dataset     string
	Table       string
	Description string
	Schema      []Field
	// ETag guards the update against concurrent edits. Empty means unguarded.
	ETag string
}

// TableUpdate is the combined change written for one table.
type TableUpdate struct {
	Description string
	Schema      []Field
	ETag        string
}

// Datasets is the ordered, de-duplicated list of target datasets.
type Datasets []string

// ParseDatasets splits a comma-separated list, trimming blanks and dropping
// empty and repeated entries while keeping first-seen order.
func ParseDatasets(list string) Datasets {
	return NewDatasets(strings.Split(list, ",")...)
}

// NewDatasets builds a Datasets value from individual names.
func NewDatasets(names ...string) Datasets {
	seen := make(map[string]bool, len(names))
	out := make(Datasets, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Contains reports whether name is a target dataset.
func (d Datasets) Contains(name string) bool {
	return slices.Contains(d, name)
}
