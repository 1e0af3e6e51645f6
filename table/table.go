package table

import (
	"sync/atomic"

	"yachtsql/column"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// columnRef is a reference-counted handle to a column.Column. Table.Clone
// shares refs (bumping the count) instead of copying column storage;
// ensureUnique clones the underlying column the moment a mutating method
// finds a ref held by more than one Table.
type columnRef struct {
	col  *column.Column
	refs *int32
}

func newColumnRef(c *column.Column) *columnRef {
	n := int32(1)
	return &columnRef{col: c, refs: &n}
}

func (r *columnRef) retain() *columnRef {
	atomic.AddInt32(r.refs, 1)
	return r
}

// Table is `{schema, columns: ordered map<name, Rc<Column>>, row_count}`.
// Column order always matches schema field order; every column's length
// equals RowCount.
type Table struct {
	Name      string
	schema    *Schema
	columns   []*columnRef
	rowCount  int
}

// New creates an empty table for the given schema.
func New(name string, schema *Schema) *Table {
	cols := make([]*columnRef, len(schema.Fields()))
	for i, f := range schema.Fields() {
		cols[i] = newColumnRef(column.New(f.Type))
	}
	return &Table{Name: name, schema: schema, columns: cols}
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// RowCount reports the number of rows.
func (t *Table) RowCount() int { return t.rowCount }

// Column returns the underlying column.Column for reading (never for
// direct mutation — go through the Table's row/schema methods so
// copy-on-write is respected).
func (t *Table) Column(i int) *column.Column {
	if i < 0 || i >= len(t.columns) {
		return nil
	}
	return t.columns[i].col
}

// ColumnByName resolves a column case-insensitively.
func (t *Table) ColumnByName(name string) *column.Column {
	i := t.schema.IndexOf(name)
	if i < 0 {
		return nil
	}
	return t.Column(i)
}

// Clone returns a Table sharing column storage with t (reference count
// bumped); mutating either copy forces that column's private copy first.
func (t *Table) Clone() *Table {
	cols := make([]*columnRef, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.retain()
	}
	return &Table{Name: t.Name, schema: t.schema, columns: cols, rowCount: t.rowCount}
}

// ensureUnique returns a column safe to mutate in place, cloning it first
// if another Table still shares the same ref.
func (t *Table) ensureUnique(i int) *column.Column {
	ref := t.columns[i]
	if atomic.LoadInt32(ref.refs) > 1 {
		cloned := ref.col.Clone()
		atomic.AddInt32(ref.refs, -1)
		t.columns[i] = newColumnRef(cloned)
		return cloned
	}
	return ref.col
}

func (t *Table) allUnique() []*column.Column {
	out := make([]*column.Column, len(t.columns))
	for i := range t.columns {
		out[i] = t.ensureUnique(i)
	}
	return out
}

// PushRow appends a single row. values must match schema arity.
func (t *Table) PushRow(values []value.Value) error {
	if len(values) != len(t.columns) {
		return yqerr.NewInvalidQuery("push_row: expected %d values, got %d", len(t.columns), len(values))
	}
	for i, v := range values {
		t.ensureUnique(i).Push(v)
	}
	t.rowCount++
	return nil
}

// PushRows is the batched variant of PushRow: observably equivalent to a
// loop, but it claims unique column ownership once up front instead of
// once per row.
func (t *Table) PushRows(rows [][]value.Value) error {
	cols := t.allUnique()
	for _, values := range rows {
		if len(values) != len(cols) {
			return yqerr.NewInvalidQuery("push_rows: expected %d values, got %d", len(cols), len(values))
		}
	}
	for _, values := range rows {
		for i, v := range values {
			cols[i].Push(v)
		}
		t.rowCount++
	}
	return nil
}

// GetRow reconstructs row i as a Record, or an error if out of bounds.
func (t *Table) GetRow(i int) (Record, error) {
	if i < 0 || i >= t.rowCount {
		return Record{}, yqerr.NewInvalidQuery("get_row: index %d out of bounds (row_count=%d)", i, t.rowCount)
	}
	values := make([]value.Value, len(t.columns))
	for c := range t.columns {
		values[c] = t.columns[c].col.Get(i)
	}
	return NewRecord(values), nil
}

// UpdateRow overwrites row i with new values.
func (t *Table) UpdateRow(i int, values []value.Value) error {
	if i < 0 || i >= t.rowCount {
		return yqerr.NewInvalidQuery("update_row: index %d out of bounds (row_count=%d)", i, t.rowCount)
	}
	if len(values) != len(t.columns) {
		return yqerr.NewInvalidQuery("update_row: expected %d values, got %d", len(t.columns), len(values))
	}
	for c, v := range values {
		t.ensureUnique(c).Set(i, v)
	}
	return nil
}

// RemoveRow deletes row i, shifting subsequent rows down. No-op if i is
// out of range.
func (t *Table) RemoveRow(i int) {
	if i < 0 || i >= t.rowCount {
		return
	}
	for c := range t.columns {
		t.ensureUnique(c).Remove(i)
	}
	t.rowCount--
}

// Clear empties every column and resets row_count.
func (t *Table) Clear() {
	for c := range t.allUnique() {
		t.columns[c].col.Clear()
	}
	t.rowCount = 0
}
