package internal

import "sort"

// Record is a struct that contains a set of fields and their corresponding values.
// It is used to represent a row of data from a source.
// Field order is critical for some serializers, so we keep them in a separate slice.
type Record struct {
	fields []string
	values []any
}

func NewRecord(fields []string, values []any) *Record {
	return &Record{
		fields: fields,
		values: values,
	}
}

// NewRecordFromMap builds a record with fields in sorted order, so that
// records derived from maps are deterministic run to run.
func NewRecordFromMap(m map[string]any) *Record {
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	values := make([]any, len(fields))
	for i, field := range fields {
		values[i] = m[field]
	}

	return &Record{
		fields: fields,
		values: values,
	}
}

func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) Fields() []string {
	return r.fields
}

func (r *Record) Values() []any {
	return r.values
}

func (r *Record) Map() map[string]any {
	m := make(map[string]any)
	for i, field := range r.fields {
		m[field] = r.values[i]
	}
	return m
}
