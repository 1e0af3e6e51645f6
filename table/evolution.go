package table

import (
	"math"

	"github.com/shopspring/decimal"

	"yachtsql/column"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// AddColumn appends a new field pre-filled with default (or NULL)
// repeated RowCount times. Schema changes never drop existing data.
func (t *Table) AddColumn(field Field, defaultValue *value.Value) {
	fields := append(append([]Field(nil), t.schema.Fields()...), field)
	t.schema = t.schema.withFields(fields)

	col := column.New(field.Type)
	fill := value.Null
	if defaultValue != nil {
		fill = *defaultValue
	}
	for i := 0; i < t.rowCount; i++ {
		col.Push(fill)
	}
	t.columns = append(t.columns, newColumnRef(col))
}

// DropColumn removes a field and its backing column.
func (t *Table) DropColumn(name string) error {
	idx := t.schema.IndexOf(name)
	if idx < 0 {
		return &yqerr.ColumnNotFoundError{Name: name}
	}
	fields := t.schema.Fields()
	newFields := append(append([]Field(nil), fields[:idx]...), fields[idx+1:]...)
	t.schema = t.schema.withFields(newFields)
	t.columns = append(t.columns[:idx], t.columns[idx+1:]...)
	return nil
}

// RenameColumn renames a field in place, leaving column storage untouched.
func (t *Table) RenameColumn(oldName, newName string) error {
	idx := t.schema.IndexOf(oldName)
	if idx < 0 {
		return &yqerr.ColumnNotFoundError{Name: oldName}
	}
	fields := append([]Field(nil), t.schema.Fields()...)
	fields[idx].Name = newName
	t.schema = t.schema.withFields(fields)
	return nil
}

func (t *Table) mutateField(name string, mutate func(f *Field)) error {
	idx := t.schema.IndexOf(name)
	if idx < 0 {
		return &yqerr.ColumnNotFoundError{Name: name}
	}
	fields := append([]Field(nil), t.schema.Fields()...)
	mutate(&fields[idx])
	t.schema = t.schema.withFields(fields)
	return nil
}

// SetColumnNotNull marks a field REQUIRED.
func (t *Table) SetColumnNotNull(name string) error {
	return t.mutateField(name, func(f *Field) { f.Mode = ModeRequired })
}

// SetColumnNullable marks a field NULLABLE.
func (t *Table) SetColumnNullable(name string) error {
	return t.mutateField(name, func(f *Field) { f.Mode = ModeNullable })
}

// SetColumnDefault sets (or clears, when value is nil) a field's default.
func (t *Table) SetColumnDefault(name string, def *value.Value) error {
	return t.mutateField(name, func(f *Field) { f.DefaultValue = def })
}

// SetColumnCollation sets a field's collation string.
func (t *Table) SetColumnCollation(name, collation string) error {
	return t.mutateField(name, func(f *Field) { f.Collation = collation })
}

// SetColumnDataType converts a column to newType lane-wise. STRING/INT64/
// FLOAT64/NUMERIC passed to themselves are identity. INT64/FLOAT64/NUMERIC
// to NUMERIC convert element-wise. Every other transition is unsupported.
func (t *Table) SetColumnDataType(name string, newType value.DataType) error {
	idx := t.schema.IndexOf(name)
	if idx < 0 {
		return &yqerr.ColumnNotFoundError{Name: name}
	}
	cur := t.schema.Fields()[idx].Type

	identity := cur.Kind == newType.Kind &&
		(cur.Kind == value.KindString || cur.Kind == value.KindInt64 ||
			cur.Kind == value.KindFloat64 || cur.Kind == value.KindNumeric)
	toNumeric := newType.Kind == value.KindNumeric &&
		(cur.Kind == value.KindInt64 || cur.Kind == value.KindFloat64 || cur.Kind == value.KindNumeric)

	if !identity && !toNumeric {
		return yqerr.NewUnsupported("set_column_data_type: %s -> %s", cur, newType)
	}

	updateSchema := func() {
		fields := append([]Field(nil), t.schema.Fields()...)
		fields[idx].Type = newType
		t.schema = t.schema.withFields(fields)
	}

	if identity {
		updateSchema()
		return nil
	}

	// Convert the whole lane before touching the table so a conversion
	// failure leaves schema and column consistent.
	old := t.Column(idx)
	converted := column.New(newType)
	for i := 0; i < t.rowCount; i++ {
		v := old.Get(i)
		if v.IsNull() {
			converted.Push(value.Null)
			continue
		}
		var d decimal.Decimal
		switch cur.Kind {
		case value.KindInt64:
			n, _ := v.AsInt64()
			d = decimal.NewFromInt(n)
		case value.KindFloat64:
			f, _ := v.AsFloat64()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return yqerr.NewInvalidQuery("set_column_data_type: row %d holds a non-finite FLOAT64", i)
			}
			d = decimal.NewFromFloat(f)
		case value.KindNumeric:
			d, _ = v.AsDecimal()
		}
		converted.Push(value.Numeric(d))
	}
	updateSchema()
	t.columns[idx] = newColumnRef(converted)
	return nil
}
