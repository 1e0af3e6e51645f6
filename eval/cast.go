package eval

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

func (e *ValueEvaluator) evalCast(n *expr.Cast, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	out, err := castValue(v, n.Target)
	if err != nil {
		if n.Safe {
			return value.Null, nil
		}
		return value.Null, err
	}
	return out, nil
}

// CastValue converts v to the target type using the same rules as the
// CAST expression. The session uses it to coerce inserted rows to the
// target table's schema without synthesizing expression nodes.
func CastValue(v value.Value, target value.DataType) (value.Value, error) {
	return castValue(v, target)
}

// castValue implements the engine's cast table. NULL always casts
// to NULL; identity casts pass through untouched.
func castValue(v value.Value, target value.DataType) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	if v.Kind() == target.Kind {
		return v, nil
	}
	switch target.Kind {
	case value.KindBool:
		return castToBool(v)
	case value.KindInt64:
		return castToInt64(v)
	case value.KindFloat64:
		return castToFloat64(v)
	case value.KindNumeric:
		return castToDecimal(v, value.KindNumeric)
	case value.KindBigNumeric:
		return castToDecimal(v, value.KindBigNumeric)
	case value.KindString:
		return castToString(v)
	case value.KindBytes:
		return castToBytes(v)
	case value.KindDate:
		return castToDate(v)
	case value.KindTimestamp:
		return castToTimestamp(v)
	case value.KindDateTime:
		return castToDateTime(v)
	case value.KindArray:
		return castToArray(v, target)
	default:
		return v, nil
	}
}

func castToBool(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBool:
		return v, nil
	case value.KindInt64:
		i, _ := v.AsInt64()
		return value.Bool(i != 0), nil
	case value.KindString:
		s, _ := v.AsString()
		switch s {
		case "true", "1":
			return value.Bool(true), nil
		case "false", "0":
			return value.Bool(false), nil
		default:
			return value.Null, yqerr.NewInvalidQuery("cannot cast %q to BOOL", s)
		}
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to BOOL", v.Kind())
	}
}

func castToInt64(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindInt64:
		return v, nil
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return value.Null, yqerr.NewInvalidQuery("FLOAT64 value out of INT64 range")
		}
		return value.Int64(int64(f)), nil
	case value.KindString:
		s, _ := v.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value.Null, yqerr.NewInvalidQuery("cannot cast %q to INT64", s)
		}
		return value.Int64(i), nil
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return value.Int64(1), nil
		}
		return value.Int64(0), nil
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
			return value.Null, yqerr.NewInvalidQuery("NUMERIC value out of INT64 range")
		}
		return value.Int64(d.Truncate(0).IntPart()), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to INT64", v.Kind())
	}
}

func castToFloat64(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindFloat64:
		return v, nil
	case value.KindInt64:
		i, _ := v.AsInt64()
		return value.Float64(float64(i)), nil
	case value.KindString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Null, yqerr.NewInvalidQuery("cannot cast %q to FLOAT64", s)
		}
		return value.Float64(f), nil
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		f, _ := d.Float64()
		return value.Float64(f), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to FLOAT64", v.Kind())
	}
}

func castToDecimal(v value.Value, kind value.Kind) (value.Value, error) {
	wrap := value.Numeric
	if kind == value.KindBigNumeric {
		wrap = value.BigNumeric
	}
	switch v.Kind() {
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		return wrap(d), nil
	case value.KindInt64:
		i, _ := v.AsInt64()
		return wrap(decimal.NewFromInt(i)), nil
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.Null, yqerr.NewInvalidQuery("cannot cast non-finite FLOAT64 to NUMERIC")
		}
		return wrap(decimal.NewFromFloat(f)), nil
	case value.KindString:
		s, _ := v.AsString()
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return value.Null, yqerr.NewInvalidQuery("cannot cast %q to NUMERIC", s)
		}
		return wrap(d), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to NUMERIC", v.Kind())
	}
}

func castToString(v value.Value) (value.Value, error) {
	if v.Kind() == value.KindBytes {
		b, _ := v.AsBytes()
		if !utf8.Valid(b) {
			return value.Null, yqerr.NewInvalidQuery("cannot cast BYTES to STRING: invalid UTF-8")
		}
		return value.String(string(b)), nil
	}
	return value.String(v.Display()), nil
}

func castToBytes(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBytes:
		return v, nil
	case value.KindString:
		s, _ := v.AsString()
		return value.Bytes([]byte(s)), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to BYTES", v.Kind())
	}
}

func castToDate(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindDate:
		return v, nil
	case value.KindString:
		s, _ := v.AsString()
		t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
		if err != nil {
			return value.Null, yqerr.NewInvalidQuery("cannot cast %q to DATE", s)
		}
		return value.DateVal(value.DateFromTime(t)), nil
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		return value.DateVal(value.DateFromTime(ts.Time())), nil
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		return value.DateVal(value.DateFromTime(dt.Time())), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to DATE", v.Kind())
	}
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func castToTimestamp(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindTimestamp:
		return v, nil
	case value.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		for _, layout := range timestampFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return value.TimestampV(value.TimestampFromTime(t)), nil
			}
		}
		return value.Null, yqerr.NewInvalidQuery("cannot cast %q to TIMESTAMP", s)
	case value.KindDate:
		d, _ := v.AsDate()
		return value.TimestampV(value.TimestampFromTime(d.Time())), nil
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		return value.TimestampV(value.TimestampFromTime(dt.Time())), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to TIMESTAMP", v.Kind())
	}
}

func castToDateTime(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindDateTime:
		return v, nil
	case value.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		for _, layout := range timestampFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return value.DateTimeV(value.DateTimeFromTime(t)), nil
			}
		}
		return value.Null, yqerr.NewInvalidQuery("cannot cast %q to DATETIME", s)
	case value.KindDate:
		d, _ := v.AsDate()
		return value.DateTimeV(value.DateTimeFromTime(d.Time())), nil
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		return value.DateTimeV(value.DateTimeFromTime(ts.Time())), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to DATETIME", v.Kind())
	}
}

func castToArray(v value.Value, target value.DataType) (value.Value, error) {
	elems, ok := v.AsArray()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("cannot cast %s to %s", v.Kind(), target)
	}
	if target.Elem == nil {
		return v, nil
	}
	out := make([]value.Value, len(elems))
	for i, el := range elems {
		cast, err := castValue(el, *target.Elem)
		if err != nil {
			return value.Null, err
		}
		out[i] = cast
	}
	return value.ArrayOf(out), nil
}

// evalTypedString parses a typed literal (DATE '...', TIME '...',
// JSON '...') with the target type's parser. TIME and JSON have no entry
// in the cast table, so their literal parsers live here.
func (e *ValueEvaluator) evalTypedString(n *expr.TypedString) (value.Value, error) {
	text := strings.TrimSpace(n.Text)
	switch n.Target.Kind {
	case value.KindTime:
		for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
			if t, err := time.Parse(layout, text); err == nil {
				return value.TimeVal(value.TimeOfDayFromClock(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())), nil
			}
		}
		return value.Null, yqerr.NewInvalidQuery("cannot parse %q as TIME", n.Text)
	case value.KindJSON:
		j, err := value.ParseJSONText(n.Text)
		if err != nil {
			return value.Null, yqerr.NewInvalidQuery("cannot parse JSON literal: %v", err)
		}
		return value.JSON(j), nil
	}
	return castValue(value.String(n.Text), n.Target)
}
