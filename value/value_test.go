package value

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeOfValue(t *testing.T) {
	assert.Equal(t, UnknownType, Null.DataType())
	assert.Equal(t, Array(UnknownType), ArrayOf(nil).DataType())
	assert.Equal(t, Array(Int64Type), ArrayOf([]Value{Int64(1), Int64(2)}).DataType())
	assert.True(t, Struct([]StructField{{Name: "a", Type: Int64Type}}).Equal(
		StructOf([]StructEntry{{Name: "a", Value: Int64(1)}}).DataType(),
	))
}

func TestCompareNullsGreatest(t *testing.T) {
	assert.Equal(t, 0, Compare(Null, Null))
	assert.Equal(t, 1, Compare(Null, Int64(5)))
	assert.Equal(t, -1, Compare(Int64(5), Null))
}

func TestCompareCrossNumeric(t *testing.T) {
	assert.True(t, Compare(Int64(2), Float64(2.5)) < 0)
	assert.True(t, Compare(Float64(2.5), Int64(2)) > 0)
	assert.Equal(t, 0, Compare(Int64(3), Float64(3.0)))
}

func TestCompareFallbackEqualAcrossHeterogeneousTypes(t *testing.T) {
	// Cross-type comparisons fall back to Equal except the
	// numeric widening case.
	assert.Equal(t, 0, Compare(Int64(1), String("1")))
}

func TestCompareTotalOrder(t *testing.T) {
	values := []Value{Int64(1), Int64(2), Null, Int64(-5)}
	for i := range values {
		for j := range values {
			c := Compare(values[i], values[j])
			assert.True(t, c == -1 || c == 0 || c == 1)
		}
	}
}

func TestNaNEqualsNaN(t *testing.T) {
	nan := Float64(math.NaN())
	assert.True(t, Equal(nan, nan))
	assert.Equal(t, 0, Compare(nan, nan))
	assert.Equal(t, Hash(nan), Hash(nan))
}

func TestHashDiscriminatesKinds(t *testing.T) {
	assert.NotEqual(t, Hash(Int64(0)), Hash(Bool(false)))
}

func TestHashContainersElementWise(t *testing.T) {
	a := ArrayOf([]Value{Int64(1), Int64(2)})
	b := ArrayOf([]Value{Int64(1), Int64(2)})
	c := ArrayOf([]Value{Int64(2), Int64(1)})
	assert.Equal(t, Hash(a), Hash(b))
	assert.NotEqual(t, Hash(a), Hash(c))
}

func TestDebugFormatting(t *testing.T) {
	assert.Equal(t, "'hello'", String("hello").Debug())
	assert.Equal(t, "b'68656c6c6f'", Bytes([]byte("hello")).Debug())
	assert.Equal(t, "DATE '2024-01-01'", DateVal(Date{Days: 19723}).Debug())
}

func TestDateFromTimeTruncatesOnBothSidesOfEpoch(t *testing.T) {
	after := DateFromTime(time.Date(1970, 1, 2, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, int32(1), after.Days)
	before := DateFromTime(time.Date(1969, 12, 31, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, int32(-1), before.Days)
}

func TestTimestampDisplayFormat(t *testing.T) {
	ts := TimestampV(TimestampVal{Micros: 0})
	assert.Equal(t, "1970-01-01 00:00:00.000000 UTC", ts.Display())
}

func TestToJSONEncodesBytesAsBase64AndDecimalAsString(t *testing.T) {
	d, err := decimal.NewFromString("3.14")
	require.NoError(t, err)
	v := StructOf([]StructEntry{
		{Name: "b", Value: Bytes([]byte("hi"))},
		{Name: "n", Value: Numeric(d)},
	})
	j := v.ToJSON().(map[string]any)
	assert.Equal(t, "aGk=", j["b"])
	assert.Equal(t, "3.14", j["n"])
}

func TestValueSerdeRoundTrip(t *testing.T) {
	d, err := decimal.NewFromString("12.50")
	require.NoError(t, err)
	cases := []Value{
		Null,
		Default,
		Bool(true),
		Int64(-42),
		Float64(math.NaN()),
		Numeric(d),
		String("hi"),
		Bytes([]byte{1, 2, 3}),
		DateVal(Date{Days: 100}),
		TimeVal(TimeOfDay{Nanos: 3600}),
		DateTimeV(DateTimeVal{Micros: 123456789}),
		TimestampV(TimestampVal{Micros: 987654321}),
		JSON(map[string]any{"x": float64(1)}),
		ArrayOf([]Value{Int64(1), Null}),
		StructOf([]StructEntry{{Name: "a", Value: Int64(7)}}),
		Interval(IntervalValue{Months: 1, Days: 2, Nanos: 3}),
	}
	for _, v := range cases {
		data, err := v.MarshalJSON()
		require.NoError(t, err)
		var out Value
		require.NoError(t, out.UnmarshalJSON(data))
		if v.Kind() == KindFloat64 {
			f, _ := v.AsFloat64()
			of, _ := out.AsFloat64()
			if math.IsNaN(f) {
				assert.True(t, math.IsNaN(of))
				continue
			}
		}
		assert.True(t, Equal(v, out), "roundtrip mismatch for %v", v.Debug())
	}
}

func TestDataTypeSerdeRoundTrip(t *testing.T) {
	dt := Struct([]StructField{
		{Name: "a", Type: Array(NumericWithParams(10, 2))},
		{Name: "b", Type: Range(DateType)},
	})
	data, err := dt.MarshalJSON()
	require.NoError(t, err)
	var out DataType
	require.NoError(t, out.UnmarshalJSON(data))
	assert.True(t, dt.Equal(out))
}
