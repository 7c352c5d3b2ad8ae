package parquet

import (
	"fmt"
	"strings"
)

type Field struct {
	Name           string
	Type           string
	ConvertedType  string
	RepetitionType string
}

type Schema []Field

// ColumnsToSchema maps a column superset to an all-optional UTF8 schema.
// Flattened documents carry no type contract per column, so every value is
// preserved in its rendered text form.
func ColumnsToSchema(columns []string) Schema {
	schema := make(Schema, len(columns))
	for i, column := range columns {
		schema[i] = Field{
			Name:           column,
			Type:           "BYTE_ARRAY",
			ConvertedType:  "UTF8",
			RepetitionType: "OPTIONAL",
		}
	}
	return schema
}

func (s Schema) ToGoParquetSchema() []string {
	schema := make([]string, len(s))
	for i, field := range s {
		parts := []string{
			fmt.Sprintf("name=%s", field.Name),
			fmt.Sprintf("type=%s", field.Type),
		}
		if field.ConvertedType != "" {
			parts = append(parts, fmt.Sprintf("convertedtype=%s", field.ConvertedType))
		}
		if field.RepetitionType != "" {
			parts = append(parts, fmt.Sprintf("repetitiontype=%s", field.RepetitionType))
		}
		schema[i] = strings.Join(parts, ", ")
	}

	return schema
}
