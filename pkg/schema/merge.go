// Package schema overlays spreadsheet column descriptions onto a table's
// existing BigQuery schema without touching anything else about it.
package schema

import (
	"github.com/agentstation/catalogsync/pkg/metadata"
)

// PathSeparator joins parent and child names when addressing nested fields,
// e.g. "address.city".
const PathSeparator = "."

// Merge returns a copy of fields with descriptions replaced wherever columns
// holds a non-empty entry for the field. Top-level fields are matched by name,
// nested fields by their dotted path. Names, types, modes, order and nesting
// are preserved; entries that match no field are ignored. The returned count
// only includes fields whose description actually changed.
//
// fields is never modified. A nil or empty columns map yields an identical
// copy and a zero count.
func Merge(fields []metadata.Field, columns map[string]string) ([]metadata.Field, int) {
	merged := metadata.CloneFields(fields)
	if len(columns) == 0 {
		return merged, 0
	}
	changed := overlay(merged, "", columns)
	return merged, changed
}

func overlay(fields []metadata.Field, prefix string, columns map[string]string) int {
	changed := 0
	for i := range fields {
		f := &fields[i]
		path := f.Name
		if prefix != "" {
			path = prefix + PathSeparator + f.Name
		}
		if desc, ok := columns[path]; ok && desc != "" && desc != f.Description {
			f.Description = desc
			changed++
		}
		if len(f.Fields) > 0 {
			changed += overlay(f.Fields, path, columns)
		}
	}
	return changed
}

// Diff lists the dotted paths whose descriptions differ between before and
// after. Both schemas must have the same shape, as Merge guarantees.
func Diff(before, after []metadata.Field) []FieldChange {
	var changes []FieldChange
	diff(before, after, "", &changes)
	return changes
}

// FieldChange is one description rewrite.
type FieldChange struct {
	Path   string `json:"path" yaml:"path"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

func diff(before, after []metadata.Field, prefix string, out *[]FieldChange) {
	for i := range before {
		if i >= len(after) {
			return
		}
		path := before[i].Name
		if prefix != "" {
			path = prefix + PathSeparator + path
		}
		if before[i].Description != after[i].Description {
			*out = append(*out, FieldChange{Path: path, Before: before[i].Description, After: after[i].Description})
		}
		diff(before[i].Fields, after[i].Fields, path, out)
	}
}
