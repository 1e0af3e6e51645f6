package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
)

func callFunc(t *testing.T, kind expr.ScalarFuncKind, args ...value.Value) (value.Value, error) {
	t.Helper()
	nodes := make([]expr.Node, len(args))
	for i, a := range args {
		nodes[i] = &expr.Literal{Value: a}
	}
	ev := New(nil)
	return ev.Evaluate(&expr.ScalarFunction{Func: kind, Args: nodes}, table.EmptyRecord())
}

func TestTimestampAddAndSub(t *testing.T) {
	ts := value.TimestampV(value.TimestampVal{Micros: 0})
	hour := value.Interval(value.IntervalFromHours(1))

	v, err := callFunc(t, expr.FuncTimestampAdd, ts, hour)
	require.NoError(t, err)
	got, ok := v.AsTimestamp()
	require.True(t, ok)
	assert.Equal(t, int64(3_600_000_000), got.Micros)

	v, err = callFunc(t, expr.FuncTimestampSub, ts, hour)
	require.NoError(t, err)
	got, _ = v.AsTimestamp()
	assert.Equal(t, int64(-3_600_000_000), got.Micros)
}

func TestTimeAddWrapsAroundMidnight(t *testing.T) {
	tod := value.TimeVal(value.TimeOfDayFromClock(23, 30, 0, 0))
	hour := value.Interval(value.IntervalFromHours(1))

	v, err := callFunc(t, expr.FuncTimeAdd, tod, hour)
	require.NoError(t, err)
	got, ok := v.AsTime()
	require.True(t, ok)
	assert.Equal(t, "00:30:00", got.String())
}

func TestTimestampDiffParts(t *testing.T) {
	a := value.TimestampV(value.TimestampVal{Micros: 90_000_000}) // 90s
	b := value.TimestampV(value.TimestampVal{Micros: 0})

	v, err := callFunc(t, expr.FuncTimestampDiff, a, b, value.String("SECOND"))
	require.NoError(t, err)
	n, _ := v.AsInt64()
	assert.Equal(t, int64(90), n)

	v, err = callFunc(t, expr.FuncTimestampDiff, a, b, value.String("MINUTE"))
	require.NoError(t, err)
	n, _ = v.AsInt64()
	assert.Equal(t, int64(1), n)

	// Default part is MICROSECOND.
	v, err = callFunc(t, expr.FuncTimestampDiff, a, b)
	require.NoError(t, err)
	n, _ = v.AsInt64()
	assert.Equal(t, int64(90_000_000), n)
}

func TestDateArithmeticUsesMonthsAndDays(t *testing.T) {
	d := value.DateVal(value.Date{Days: 0}) // 1970-01-01
	iv := value.Interval(value.IntervalValue{Months: 1, Days: 2})

	v, err := callFunc(t, expr.FuncDatetimeAdd, d, iv)
	require.NoError(t, err)
	got, ok := v.AsDate()
	require.True(t, ok)
	assert.Equal(t, "1970-02-03", got.String())
}

func TestJSONExtract(t *testing.T) {
	doc := value.JSON(map[string]any{
		"a": map[string]any{"b": []any{float64(1), "two"}},
	})

	v, err := callFunc(t, expr.FuncJSONExtract, doc, value.String("$.a.b[1]"))
	require.NoError(t, err)
	j, ok := v.AsJSON()
	require.True(t, ok)
	assert.Equal(t, "two", j)

	v, err = callFunc(t, expr.FuncJSONExtractScalar, doc, value.String("$.a.b[0]"))
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "1", s)

	// Non-scalar leaf in scalar mode, and any missing step, are NULL.
	v, err = callFunc(t, expr.FuncJSONExtractScalar, doc, value.String("$.a"))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	v, err = callFunc(t, expr.FuncJSONExtract, doc, value.String("$.missing"))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestUnknownFunctionIsUnsupported(t *testing.T) {
	ev := New(nil)
	_, err := ev.Evaluate(&expr.ScalarFunction{Func: expr.FuncCustom, Name: "NO_SUCH_FN"}, table.EmptyRecord())
	assert.Error(t, err)
}
