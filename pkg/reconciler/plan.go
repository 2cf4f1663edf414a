package reconciler

import (
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/schema"
)

// TablePlan is the computed change for one table.
type TablePlan struct {
	Update             metadata.TableUpdate
	DescriptionChanged bool
	ChangedFields      int
	Changes            []schema.FieldChange
}

// HasChanges reports whether applying the plan alters the catalog.
func (p TablePlan) HasChanges() bool {
	return p.DescriptionChanged || p.ChangedFields > 0
}

// Plan computes the combined update for one table. The sheet description
// replaces the current one only when the table has a non-empty description
// fact; the schema is the current schema with column descriptions overlaid.
func Plan(current *metadata.TableMetadata, tables metadata.TableFacts, columns metadata.ColumnSchemaMap) TablePlan {
	description := current.Description
	if desc, ok := tables.Description(current.Table); ok {
		description = desc
	}

	merged, changed := schema.Merge(current.Schema, columns.Columns(current.Table))

	return TablePlan{
		Update: metadata.TableUpdate{
			Description: description,
			Schema:      merged,
			ETag:        current.ETag,
		},
		DescriptionChanged: description != current.Description,
		ChangedFields:      changed,
		Changes:            schema.Diff(current.Schema, merged),
	}
}
