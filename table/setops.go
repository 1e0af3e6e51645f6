package table

import (
	"yachtsql/column"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// FilterByMask keeps row i iff mask's value at i is true and not null.
// A non-boolean mask column fails with InternalError rather than being
// coerced.
func (t *Table) FilterByMask(mask *column.Column) (*Table, error) {
	if mask.Kind() != value.KindBool {
		return nil, yqerr.NewInternal("filter_by_mask: mask column must be BOOL, got %s", mask.Kind())
	}
	if mask.Len() != t.rowCount {
		return nil, yqerr.NewInternal("filter_by_mask: mask length %d does not match row_count %d", mask.Len(), t.rowCount)
	}
	var indices []int
	for i := 0; i < t.rowCount; i++ {
		if mask.IsNull(i) {
			continue
		}
		b, _ := mask.Get(i).AsBool()
		if b {
			indices = append(indices, i)
		}
	}
	return t.GatherRows(indices)
}

// GatherRows builds a new Table pulling indices[k] into position k across
// every column.
func (t *Table) GatherRows(indices []int) (*Table, error) {
	out := &Table{Name: t.Name, schema: t.schema, rowCount: len(indices)}
	out.columns = make([]*columnRef, len(t.columns))
	for i, ref := range t.columns {
		out.columns[i] = newColumnRef(ref.col.Gather(indices))
	}
	return out, nil
}

// SelectColumns builds a Table keeping only the columns at the given
// schema positions, sharing storage with t.
func (t *Table) SelectColumns(indices []int) (*Table, error) {
	fields := make([]Field, len(indices))
	cols := make([]*columnRef, len(indices))
	for k, i := range indices {
		f, ok := t.schema.FieldAt(i)
		if !ok {
			return nil, yqerr.NewInternal("select_columns: index %d out of bounds (schema has %d fields)", i, t.schema.Len())
		}
		fields[k] = f
		cols[k] = t.columns[i].retain()
	}
	return &Table{Name: t.Name, schema: NewSchema(fields), columns: cols, rowCount: t.rowCount}, nil
}

// Concat extends every column of t with the matching column from other.
// A field present in t's schema but missing from other's is treated as a
// strict-mode error (InternalError) rather than left shorter than
// row_count.
func (t *Table) Concat(other *Table) error {
	for i, f := range t.schema.Fields() {
		oi := other.schema.IndexOf(f.Name)
		if oi < 0 {
			return yqerr.NewInternal("concat: column %q missing from right-hand table", f.Name)
		}
		left := t.ensureUnique(i)
		if err := left.Extend(other.columns[oi].col); err != nil {
			return err
		}
	}
	t.rowCount += other.rowCount
	return nil
}
