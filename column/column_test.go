package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/value"
)

func buildInt64Column(t *testing.T, n int, nullAt func(i int) bool) *Column {
	t.Helper()
	c := New(value.Int64Type)
	for i := 1; i <= n; i++ {
		if nullAt(i - 1) {
			c.Push(value.Null)
		} else {
			c.Push(value.Int64(int64(i)))
		}
	}
	return c
}

// TestSumAcrossChunkBoundaryWithNullsInRemainder reproduces the scenario:
// 70 rows valued 1..70, with rows 63, 64, and 65 (0-indexed) null. The
// first 64 rows form one full word (mixed, since index 63 is null); rows
// 64..69 form the trailing remainder (mixed, since index 64 is null).
func TestSumAcrossChunkBoundaryWithNullsInRemainder(t *testing.T) {
	nulledRows := map[int]bool{63: true, 64: true, 65: true}
	c := buildInt64Column(t, 70, func(i int) bool { return nulledRows[i] })

	var want float64
	for i := 1; i <= 70; i++ {
		if nulledRows[i-1] {
			continue
		}
		want += float64(i)
	}

	got, ok := c.Sum()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSumAllValidFastPath(t *testing.T) {
	c := buildInt64Column(t, 128, func(int) bool { return false })
	got, ok := c.Sum()
	require.True(t, ok)
	var want float64
	for i := 1; i <= 128; i++ {
		want += float64(i)
	}
	assert.Equal(t, want, got)
}

func TestSumAllNullReturnsNotOK(t *testing.T) {
	c := buildInt64Column(t, 70, func(int) bool { return true })
	_, ok := c.Sum()
	assert.False(t, ok)
}

func TestSumEmptyColumn(t *testing.T) {
	c := New(value.Int64Type)
	_, ok := c.Sum()
	assert.False(t, ok)
}

func TestSumFloat64WithRemainderOnly(t *testing.T) {
	c := New(value.Float64Type)
	c.Push(value.Float64(1.5))
	c.Push(value.Null)
	c.Push(value.Float64(2.5))
	got, ok := c.Sum()
	require.True(t, ok)
	assert.Equal(t, 4.0, got)
}

func TestMinMaxSkipNulls(t *testing.T) {
	c := New(value.Int64Type)
	c.Push(value.Int64(5))
	c.Push(value.Null)
	c.Push(value.Int64(-3))
	c.Push(value.Int64(10))

	min, ok := c.Min()
	require.True(t, ok)
	i, _ := min.AsInt64()
	assert.Equal(t, int64(-3), i)

	max, ok := c.Max()
	require.True(t, ok)
	i, _ = max.AsInt64()
	assert.Equal(t, int64(10), i)
}

func TestMinMaxAllNull(t *testing.T) {
	c := New(value.StringType)
	c.Push(value.Null)
	c.Push(value.Null)
	_, ok := c.Min()
	assert.False(t, ok)
}

func TestMinMaxUndefinedForBool(t *testing.T) {
	c := New(value.BoolType)
	c.Push(value.Bool(true))
	_, ok := c.Min()
	assert.False(t, ok)
}

func TestGatherReordersAndPropagatesNulls(t *testing.T) {
	c := New(value.StringType)
	c.Push(value.String("a"))
	c.Push(value.Null)
	c.Push(value.String("c"))

	g := c.Gather([]int{2, 0, 1})
	assert.Equal(t, 3, g.Len())
	s, _ := g.Get(0).AsString()
	assert.Equal(t, "c", s)
	s, _ = g.Get(1).AsString()
	assert.Equal(t, "a", s)
	assert.True(t, g.IsNull(2))
}

func TestExtendConcatenatesRows(t *testing.T) {
	a := New(value.Int64Type)
	a.Push(value.Int64(1))
	b := New(value.Int64Type)
	b.Push(value.Int64(2))
	b.Push(value.Null)

	require.NoError(t, a.Extend(b))
	assert.Equal(t, 3, a.Len())
	i, _ := a.Get(0).AsInt64()
	assert.Equal(t, int64(1), i)
	i, _ = a.Get(1).AsInt64()
	assert.Equal(t, int64(2), i)
	assert.True(t, a.IsNull(2))
}

func TestExtendRejectsKindMismatch(t *testing.T) {
	a := New(value.Int64Type)
	b := New(value.StringType)
	err := a.Extend(b)
	assert.Error(t, err)
}

func TestRemoveShiftsRowsDown(t *testing.T) {
	c := New(value.Int64Type)
	c.Push(value.Int64(1))
	c.Push(value.Int64(2))
	c.Push(value.Int64(3))
	c.Remove(0)
	assert.Equal(t, 2, c.Len())
	i, _ := c.Get(0).AsInt64()
	assert.Equal(t, int64(2), i)
}

func TestCloneIsIndependent(t *testing.T) {
	c := New(value.Int64Type)
	c.Push(value.Int64(1))
	clone := c.Clone()
	clone.Set(0, value.Int64(99))
	i, _ := c.Get(0).AsInt64()
	assert.Equal(t, int64(1), i)
	i, _ = clone.Get(0).AsInt64()
	assert.Equal(t, int64(99), i)
}
