package bigquery

import (
	bq "cloud.google.com/go/bigquery"

	"github.com/agentstation/catalogsync/pkg/metadata"
)

// Field modes as reported by BigQuery.
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

// FieldsFromSchema mirrors a BigQuery schema.
func FieldsFromSchema(schema bq.Schema) []metadata.Field {
	if schema == nil {
		return nil
	}
	fields := make([]metadata.Field, 0, len(schema))
	for _, fs := range schema {
		if fs == nil {
			continue
		}
		fields = append(fields, metadata.Field{
			Name:        fs.Name,
			Type:        string(fs.Type),
			Mode:        mode(fs),
			Description: fs.Description,
			Fields:      FieldsFromSchema(fs.Schema),
		})
	}
	return fields
}

func mode(fs *bq.FieldSchema) string {
	switch {
	case fs.Repeated:
		return ModeRepeated
	case fs.Required:
		return ModeRequired
	default:
		return ModeNullable
	}
}

// SchemaFromFields builds a BigQuery schema from mirrored fields.
func SchemaFromFields(fields []metadata.Field) bq.Schema {
	if fields == nil {
		return nil
	}
	schema := make(bq.Schema, len(fields))
	for i, f := range fields {
		schema[i] = &bq.FieldSchema{
			Name:        f.Name,
			Type:        bq.FieldType(f.Type),
			Repeated:    f.Mode == ModeRepeated,
			Required:    f.Mode == ModeRequired,
			Description: f.Description,
			Schema:      SchemaFromFields(f.Fields),
		}
	}
	return schema
}

// ApplyDescriptions returns a copy of base with each field's description
// taken from the field of the same name in fields. Every other attribute of
// base is kept; base itself is not modified. Nil entries are dropped.
func ApplyDescriptions(base bq.Schema, fields []metadata.Field) bq.Schema {
	if base == nil {
		return nil
	}
	byName := make(map[string]metadata.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	out := make(bq.Schema, 0, len(base))
	for _, fs := range base {
		if fs == nil {
			continue
		}
		cp := *fs
		if f, ok := byName[fs.Name]; ok {
			cp.Description = f.Description
			cp.Schema = ApplyDescriptions(fs.Schema, f.Fields)
		} else {
			cp.Schema = ApplyDescriptions(fs.Schema, nil)
		}
		out = append(out, &cp)
	}
	return out
}
