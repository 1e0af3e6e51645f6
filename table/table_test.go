package table

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/column"
	"yachtsql/value"
)

func decimalFromInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func maskColumn(t *testing.T, vals []value.Value) *column.Column {
	t.Helper()
	c := column.New(value.BoolType)
	for _, v := range vals {
		c.Push(v)
	}
	return c
}

func intStringSchema() *Schema {
	return NewSchema([]Field{
		{Name: "id", Type: value.Int64Type, Mode: ModeRequired},
		{Name: "Name", Type: value.StringType},
	})
}

func TestSchemaLookupIsCaseInsensitive(t *testing.T) {
	s := intStringSchema()
	f, ok := s.Lookup("NAME")
	require.True(t, ok)
	assert.Equal(t, "Name", f.Name)
	assert.Equal(t, 1, s.IndexOf("name"))
}

func TestPushRowAndGetRow(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(2), value.Null}))
	assert.Equal(t, 2, tbl.RowCount())

	rec, err := tbl.GetRow(1)
	require.NoError(t, err)
	i, _ := rec.Get(0).AsInt64()
	assert.Equal(t, int64(2), i)
	assert.True(t, rec.Get(1).IsNull())

	_, err = tbl.GetRow(5)
	assert.Error(t, err)
}

func TestPushRowArityMismatch(t *testing.T) {
	tbl := New("t", intStringSchema())
	err := tbl.PushRow([]value.Value{value.Int64(1)})
	assert.Error(t, err)
}

func TestPushRowsMatchesLoopOfPushRow(t *testing.T) {
	a := New("a", intStringSchema())
	b := New("b", intStringSchema())
	rows := [][]value.Value{
		{value.Int64(1), value.String("x")},
		{value.Int64(2), value.String("y")},
	}
	for _, r := range rows {
		require.NoError(t, a.PushRow(r))
	}
	require.NoError(t, b.PushRows(rows))
	assert.Equal(t, a.RowCount(), b.RowCount())
	for i := 0; i < a.RowCount(); i++ {
		ra, _ := a.GetRow(i)
		rb, _ := b.GetRow(i)
		assert.True(t, value.Equal(ra.Get(0), rb.Get(0)))
		assert.True(t, value.Equal(ra.Get(1), rb.Get(1)))
	}
}

func TestUpdateAndRemoveRow(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(2), value.String("b")}))

	require.NoError(t, tbl.UpdateRow(0, []value.Value{value.Int64(99), value.String("z")}))
	rec, _ := tbl.GetRow(0)
	i, _ := rec.Get(0).AsInt64()
	assert.Equal(t, int64(99), i)

	tbl.RemoveRow(0)
	assert.Equal(t, 1, tbl.RowCount())
	rec, _ = tbl.GetRow(0)
	i, _ = rec.Get(0).AsInt64()
	assert.Equal(t, int64(2), i)

	tbl.RemoveRow(50) // no-op
	assert.Equal(t, 1, tbl.RowCount())
}

func TestCloneSharesStorageUntilMutation(t *testing.T) {
	a := New("a", intStringSchema())
	require.NoError(t, a.PushRow([]value.Value{value.Int64(1), value.String("a")}))

	b := a.Clone()
	require.NoError(t, b.UpdateRow(0, []value.Value{value.Int64(2), value.String("z")}))

	rec, _ := a.GetRow(0)
	i, _ := rec.Get(0).AsInt64()
	assert.Equal(t, int64(1), i, "mutating the clone must not affect the original")
}

func TestFilterByMaskRejectsNonBool(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	_, err := tbl.FilterByMask(tbl.Column(0))
	assert.Error(t, err)
}

func TestFilterByMaskKeepsTrueNonNullRows(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(2), value.String("b")}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(3), value.String("c")}))

	mask := maskColumn(t, []value.Value{value.Bool(true), value.Null, value.Bool(false)})
	filtered, err := tbl.FilterByMask(mask)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.RowCount())
	rec, _ := filtered.GetRow(0)
	i, _ := rec.Get(0).AsInt64()
	assert.Equal(t, int64(1), i)
}

func TestConcatFailsOnMissingColumn(t *testing.T) {
	a := New("a", intStringSchema())
	require.NoError(t, a.PushRow([]value.Value{value.Int64(1), value.String("x")}))

	otherSchema := NewSchema([]Field{{Name: "id", Type: value.Int64Type}})
	b := New("b", otherSchema)
	require.NoError(t, b.PushRow([]value.Value{value.Int64(2)}))

	err := a.Concat(b)
	assert.Error(t, err)
}

func TestConcatAppendsRows(t *testing.T) {
	a := New("a", intStringSchema())
	require.NoError(t, a.PushRow([]value.Value{value.Int64(1), value.String("x")}))
	b := New("b", intStringSchema())
	require.NoError(t, b.PushRow([]value.Value{value.Int64(2), value.String("y")}))

	require.NoError(t, a.Concat(b))
	assert.Equal(t, 2, a.RowCount())
	rec, _ := a.GetRow(1)
	i, _ := rec.Get(0).AsInt64()
	assert.Equal(t, int64(2), i)
}

func TestAddColumnFillsDefaultForExistingRows(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(2), value.String("b")}))

	def := value.Bool(true)
	tbl.AddColumn(Field{Name: "active", Type: value.BoolType}, &def)
	assert.Equal(t, 3, tbl.Schema().Len())

	rec, _ := tbl.GetRow(0)
	b, _ := rec.Get(2).AsBool()
	assert.True(t, b)
}

func TestDropColumnRemovesFieldAndData(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.DropColumn("name"))
	assert.Equal(t, 1, tbl.Schema().Len())
	assert.Equal(t, -1, tbl.Schema().IndexOf("name"))
}

func TestDropColumnUnknownFieldFails(t *testing.T) {
	tbl := New("t", intStringSchema())
	err := tbl.DropColumn("nope")
	assert.Error(t, err)
}

func TestRenameColumnPreservesData(t *testing.T) {
	tbl := New("t", intStringSchema())
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(1), value.String("a")}))
	require.NoError(t, tbl.RenameColumn("name", "full_name"))
	assert.Equal(t, -1, tbl.Schema().IndexOf("name"))
	f, ok := tbl.Schema().Lookup("full_name")
	require.True(t, ok)
	assert.Equal(t, "full_name", f.Name)
}

func TestSetColumnDataTypeConvertsLaneWise(t *testing.T) {
	tbl := New("t", NewSchema([]Field{{Name: "n", Type: value.Int64Type}}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Int64(7)}))
	require.NoError(t, tbl.SetColumnDataType("n", value.NumericType()))

	f, _ := tbl.Schema().Lookup("n")
	assert.Equal(t, value.KindNumeric, f.Type.Kind)
	rec, _ := tbl.GetRow(0)
	d, ok := rec.Get(0).AsDecimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimalFromInt(7)))
}

func TestSetColumnDataTypeUnsupportedTransitionFails(t *testing.T) {
	tbl := New("t", NewSchema([]Field{{Name: "n", Type: value.StringType}}))
	err := tbl.SetColumnDataType("n", value.BoolType)
	assert.Error(t, err)
}

func TestSetColumnDataTypeRejectsNonFiniteFloats(t *testing.T) {
	tbl := New("t", NewSchema([]Field{{Name: "f", Type: value.Float64Type}}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Float64(1.5)}))
	require.NoError(t, tbl.PushRow([]value.Value{value.Float64(math.NaN())}))

	err := tbl.SetColumnDataType("f", value.NumericType())
	assert.Error(t, err)

	// The failed conversion must leave schema and data untouched.
	f, _ := tbl.Schema().Lookup("f")
	assert.Equal(t, value.KindFloat64, f.Type.Kind)
	rec, _ := tbl.GetRow(0)
	got, ok := rec.Get(0).AsFloat64()
	require.True(t, ok)
	assert.Equal(t, 1.5, got)
}
