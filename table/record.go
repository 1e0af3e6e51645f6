package table

import "yachtsql/value"

// Record is a single row: an ordered vector of Values aligned with a
// Schema's field order. The evaluator builds one from a Table row, an
// empty Record for no-FROM-clause evaluation, or a synthetic row for UDF
// invocation.
type Record struct {
	Values []value.Value
}

// NewRecord wraps a value slice as a Record.
func NewRecord(values []value.Value) Record {
	return Record{Values: values}
}

// EmptyRecord is the zero-column row used to evaluate expressions with no
// FROM clause (e.g. `SELECT 1 + 1`).
func EmptyRecord() Record { return Record{} }

// Get returns the value at a positional index, or NULL if out of range.
func (r Record) Get(i int) value.Value {
	if i < 0 || i >= len(r.Values) {
		return value.Null
	}
	return r.Values[i]
}

// Len reports the number of values in the record.
func (r Record) Len() int { return len(r.Values) }
