package session

import (
	"yachtsql/column"
	"yachtsql/table"
	"yachtsql/value"
)

// RecordBatch is one chunk of query output: a schema plus one contiguous
// typed column per field.
type RecordBatch struct {
	Schema  *table.Schema
	Columns []*column.Column
}

// NumRows reports the batch's row count.
func (b *RecordBatch) NumRows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// ColumnInfo describes one output column of a QueryResult.
type ColumnInfo struct {
	Name string
	Type value.DataType
}

// Row is one materialized result row.
type Row []value.Value

// QueryResult is the row-oriented adapter view over a result table, for
// callers that want plain rows instead of columnar batches.
type QueryResult struct {
	Schema []ColumnInfo
	Rows   []Row
}

// batches splits a result table into RecordBatches of at most
// cfg.BatchRows rows each (a single batch when the bound is zero).
func (s *Session) batches(t *table.Table) []*RecordBatch {
	if t == nil {
		return nil
	}
	size := s.cfg.BatchRows
	if size <= 0 || t.RowCount() <= size {
		return []*RecordBatch{batchFromTable(t)}
	}
	var out []*RecordBatch
	for start := 0; start < t.RowCount(); start += size {
		end := start + size
		if end > t.RowCount() {
			end = t.RowCount()
		}
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}
		chunk, _ := t.GatherRows(indices)
		out = append(out, batchFromTable(chunk))
	}
	return out
}

func batchFromTable(t *table.Table) *RecordBatch {
	cols := make([]*column.Column, t.Schema().Len())
	for i := range cols {
		cols[i] = t.Column(i)
	}
	return &RecordBatch{Schema: t.Schema(), Columns: cols}
}

// ResultFromTable computes the row-oriented QueryResult view of t.
func ResultFromTable(t *table.Table) *QueryResult {
	res := &QueryResult{}
	for _, f := range t.Schema().Fields() {
		res.Schema = append(res.Schema, ColumnInfo{Name: f.Name, Type: f.Type})
	}
	for i := 0; i < t.RowCount(); i++ {
		rec, err := t.GetRow(i)
		if err != nil {
			break
		}
		res.Rows = append(res.Rows, Row(rec.Values))
	}
	return res
}

// ResultFromBatches flattens batches into a single QueryResult.
func ResultFromBatches(batches []*RecordBatch) *QueryResult {
	res := &QueryResult{}
	for bi, b := range batches {
		if bi == 0 {
			for _, f := range b.Schema.Fields() {
				res.Schema = append(res.Schema, ColumnInfo{Name: f.Name, Type: f.Type})
			}
		}
		for i := 0; i < b.NumRows(); i++ {
			row := make(Row, len(b.Columns))
			for c, col := range b.Columns {
				row[c] = col.Get(i)
			}
			res.Rows = append(res.Rows, row)
		}
	}
	return res
}
