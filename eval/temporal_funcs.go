package eval

import (
	"strings"
	"time"

	"yachtsql/value"
	"yachtsql/yqerr"
)

// funcAddInterval implements the TIMESTAMP_ADD/DATETIME_ADD/TIME_ADD
// family (and the *_SUB variants with sign=-1): the second argument is
// an INTERVAL value whose months/days/nanos components all apply.
func funcAddInterval(v, ivVal value.Value, sign int) (value.Value, error) {
	if v.IsNull() || ivVal.IsNull() {
		return value.Null, nil
	}
	iv, ok := ivVal.AsInterval()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("date/time arithmetic requires an INTERVAL argument")
	}
	shift := func(t time.Time) time.Time {
		t = t.AddDate(0, sign*int(iv.Months), sign*int(iv.Days))
		return t.Add(time.Duration(int64(sign) * iv.Nanos))
	}
	switch v.Kind() {
	case value.KindDate:
		d, _ := v.AsDate()
		return value.DateVal(value.DateFromTime(shift(d.Time()))), nil
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		return value.DateTimeV(value.DateTimeFromTime(shift(dt.Time()))), nil
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		return value.TimestampV(value.TimestampFromTime(shift(ts.Time()))), nil
	case value.KindTime:
		if iv.Months != 0 || iv.Days != 0 {
			return value.Null, yqerr.NewInvalidQuery("TIME arithmetic supports only sub-day intervals")
		}
		tod, _ := v.AsTime()
		nanos := wrapDayNanos(tod.Nanos + int64(sign)*iv.Nanos)
		return value.TimeVal(value.TimeOfDay{Nanos: nanos}), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("date/time arithmetic requires a temporal operand, got %s", v.Kind())
	}
}

func wrapDayNanos(n int64) int64 {
	day := int64(24 * time.Hour)
	n %= day
	if n < 0 {
		n += day
	}
	return n
}

// funcTemporalDiff implements the *_DIFF family: the difference a - b
// expressed in the named part (third argument, default MICROSECOND).
func funcTemporalDiff(args []value.Value) (value.Value, error) {
	a, b := arg(args, 0), arg(args, 1)
	if a.IsNull() || b.IsNull() {
		return value.Null, nil
	}
	part := "MICROSECOND"
	if p := arg(args, 2); !p.IsNull() {
		s, ok := p.AsString()
		if !ok {
			return value.Null, yqerr.NewInvalidQuery("date/time diff part must be a STRING")
		}
		part = s
	}

	var delta time.Duration
	if a.Kind() == value.KindTime && b.Kind() == value.KindTime {
		at, _ := a.AsTime()
		bt, _ := b.AsTime()
		delta = time.Duration(at.Nanos - bt.Nanos)
	} else {
		at, err := timeOf(a)
		if err != nil {
			return value.Null, err
		}
		bt, err := timeOf(b)
		if err != nil {
			return value.Null, err
		}
		delta = at.Sub(bt)
	}

	switch strings.ToUpper(part) {
	case "MICROSECOND":
		return value.Int64(delta.Microseconds()), nil
	case "MILLISECOND":
		return value.Int64(delta.Milliseconds()), nil
	case "SECOND":
		return value.Int64(int64(delta / time.Second)), nil
	case "MINUTE":
		return value.Int64(int64(delta / time.Minute)), nil
	case "HOUR":
		return value.Int64(int64(delta / time.Hour)), nil
	case "DAY":
		return value.Int64(int64(delta / (24 * time.Hour))), nil
	default:
		return value.Null, yqerr.NewUnsupported("date/time diff part %s", part)
	}
}

func funcCurrentDate() value.Value {
	return value.DateVal(value.DateFromTime(time.Now()))
}

func funcCurrentTimestamp() value.Value {
	return value.TimestampV(value.TimestampFromTime(time.Now()))
}
