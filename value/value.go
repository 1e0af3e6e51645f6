package value

import "github.com/shopspring/decimal"

// StructEntry is one named member of a Value carrying KindStruct.
type StructEntry struct {
	Name  string
	Value Value
}

// Value is a tagged union over the engine's closed set of SQL scalar
// types, plus the NULL and DEFAULT sentinels. Only the field matching Kind
// is meaningful; dispatch is by switching on Kind, never by type-asserting
// an interface.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	dec decimal.Decimal
	s   string
	bs  []byte

	date Date
	tod  TimeOfDay
	dt   DateTimeVal
	ts   TimestampVal

	js any // decoded JSON (map[string]any / []any / string / float64 / bool / nil)

	arr    []Value
	strct  []StructEntry
	geo    string
	ivl    IntervalValue
	rng    RangeValue
	isDflt bool
}

// Null is the canonical SQL NULL value.
var Null = Value{kind: KindUnknown}

// Default is the sentinel used by INSERT/UPDATE to mean "use the column's
// declared default".
var Default = Value{kind: KindUnknown, isDflt: true}

func Bool(v bool) Value    { return Value{kind: KindBool, b: v} }
func Int64(v int64) Value  { return Value{kind: KindInt64, i: v} }
func Float64(v float64) Value {
	return Value{kind: KindFloat64, f: v}
}
func Numeric(v decimal.Decimal) Value    { return Value{kind: KindNumeric, dec: v} }
func BigNumeric(v decimal.Decimal) Value { return Value{kind: KindBigNumeric, dec: v} }
func String(v string) Value              { return Value{kind: KindString, s: v} }
func Bytes(v []byte) Value               { return Value{kind: KindBytes, bs: v} }
func DateVal(v Date) Value               { return Value{kind: KindDate, date: v} }
func TimeVal(v TimeOfDay) Value          { return Value{kind: KindTime, tod: v} }
func DateTimeV(v DateTimeVal) Value      { return Value{kind: KindDateTime, dt: v} }
func TimestampV(v TimestampVal) Value    { return Value{kind: KindTimestamp, ts: v} }
func JSON(v any) Value                   { return Value{kind: KindJSON, js: v} }
func Geography(v string) Value           { return Value{kind: KindGeography, geo: v} }
func Interval(v IntervalValue) Value     { return Value{kind: KindInterval, ivl: v} }
func RangeOf(v RangeValue) Value         { return Value{kind: KindRange, rng: v} }

// ArrayOf builds an ARRAY value from its elements (may be empty, never nil
// internally so DataType() can still report ARRAY<UNKNOWN>).
func ArrayOf(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// StructOf builds a STRUCT value from ordered name/value pairs.
func StructOf(entries []StructEntry) Value {
	return Value{kind: KindStruct, strct: entries}
}

// Kind reports the tag without materializing a DataType.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the NULL sentinel (DEFAULT is not NULL).
func (v Value) IsNull() bool { return v.kind == KindUnknown && !v.isDflt }

// IsDefault reports whether v is the DEFAULT sentinel.
func (v Value) IsDefault() bool { return v.isDflt }

// DataType computes the data type of v: UNKNOWN for NULL, ARRAY<UNKNOWN>
// for an empty array, ARRAY<data_type(xs[0])> otherwise (elements are
// assumed homogeneous).
func (v Value) DataType() DataType {
	switch v.kind {
	case KindUnknown:
		return UnknownType
	case KindBool:
		return BoolType
	case KindInt64:
		return Int64Type
	case KindFloat64:
		return Float64Type
	case KindNumeric:
		return NumericType()
	case KindBigNumeric:
		return BigNumericType
	case KindString:
		return StringType
	case KindBytes:
		return BytesType
	case KindDate:
		return DateType
	case KindTime:
		return TimeType
	case KindDateTime:
		return DateTimeType
	case KindTimestamp:
		return TimestampType
	case KindGeography:
		return GeographyType
	case KindJSON:
		return JSONType
	case KindInterval:
		return IntervalType
	case KindArray:
		if len(v.arr) == 0 {
			return Array(UnknownType)
		}
		return Array(v.arr[0].DataType())
	case KindStruct:
		fields := make([]StructField, len(v.strct))
		for i, e := range v.strct {
			fields[i] = StructField{Name: e.Name, Type: e.Value.DataType()}
		}
		return Struct(fields)
	case KindRange:
		return Range(v.rng.ElementType())
	default:
		return UnknownType
	}
}

// --- safe accessors: return (value, ok); ok=false on kind mismatch ---

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return v.i, true
}

// AsFloat64 widens INT64; every other kind reports "absent".
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat64:
		return v.f, true
	case KindInt64:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v Value) AsDecimal() (decimal.Decimal, bool) {
	if v.kind != KindNumeric && v.kind != KindBigNumeric {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bs, true
}

func (v Value) AsDate() (Date, bool) {
	if v.kind != KindDate {
		return Date{}, false
	}
	return v.date, true
}

func (v Value) AsTime() (TimeOfDay, bool) {
	if v.kind != KindTime {
		return TimeOfDay{}, false
	}
	return v.tod, true
}

func (v Value) AsDateTime() (DateTimeVal, bool) {
	if v.kind != KindDateTime {
		return DateTimeVal{}, false
	}
	return v.dt, true
}

func (v Value) AsTimestamp() (TimestampVal, bool) {
	if v.kind != KindTimestamp {
		return TimestampVal{}, false
	}
	return v.ts, true
}

func (v Value) AsJSON() (any, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	return v.js, true
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

func (v Value) AsStruct() ([]StructEntry, bool) {
	if v.kind != KindStruct {
		return nil, false
	}
	return v.strct, true
}

func (v Value) AsGeography() (string, bool) {
	if v.kind != KindGeography {
		return "", false
	}
	return v.geo, true
}

func (v Value) AsInterval() (IntervalValue, bool) {
	if v.kind != KindInterval {
		return IntervalValue{}, false
	}
	return v.ivl, true
}

func (v Value) AsRange() (RangeValue, bool) {
	if v.kind != KindRange {
		return RangeValue{}, false
	}
	return v.rng, true
}

// --- consuming converters: best-effort, used by CAST and Display fallbacks ---

// IntoString renders the value the way CAST(... AS STRING) would for
// everything except BYTES (handled separately since it needs a validity
// check the caller performs).
func (v Value) IntoString() string {
	return v.Display()
}

// IntoBytes returns the raw bytes for a BYTES value, or the UTF-8 encoding
// of a STRING value.
func (v Value) IntoBytes() ([]byte, bool) {
	switch v.kind {
	case KindBytes:
		return v.bs, true
	case KindString:
		return []byte(v.s), true
	default:
		return nil, false
	}
}

// IntoArray returns the element slice for ARRAY, or ok=false otherwise.
func (v Value) IntoArray() ([]Value, bool) {
	return v.AsArray()
}
