// Package column implements the Column Store: one contiguous per-type
// vector paired with a packed null bitmap, plus the word-at-a-time
// aggregation kernels (sum/min/max) that are the reason the engine keeps
// primitive lanes unboxed instead of storing a []value.Value directly.
package column

import (
	"github.com/shopspring/decimal"

	"yachtsql/bitmap"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// Column is a tagged union over the engine's storage variants. Only the
// slice matching Kind is populated; every slice that is populated always
// has length equal to nulls.Len().
type Column struct {
	kind     value.Kind
	elemType *value.DataType      // ARRAY / RANGE element type
	fields   []value.StructField // STRUCT member types
	nulls    *bitmap.Bitmap

	boolData   []bool
	i64Data    []int64
	f64Data    []float64
	decData    []decimal.Decimal
	strData    []string
	bytesData  [][]byte
	dateData   []value.Date
	timeData   []value.TimeOfDay
	dtData     []value.DateTimeVal
	tsData     []value.TimestampVal
	geoData    []string
	jsonData   []any
	ivlData    []value.IntervalValue
	arrData    [][]value.Value
	structData [][]value.StructEntry
	rngData    []value.RangeValue
}

// New creates an empty column for the given data type.
func New(dt value.DataType) *Column {
	c := &Column{kind: dt.Kind, nulls: bitmap.NewValid(0)}
	if dt.Elem != nil {
		elem := *dt.Elem
		c.elemType = &elem
	}
	c.fields = dt.Fields
	return c
}

// DataType reconstructs the column's data type, including its element
// type for ARRAY/RANGE and its member list for STRUCT.
func (c *Column) DataType() value.DataType {
	switch c.kind {
	case value.KindArray:
		if c.elemType != nil {
			return value.Array(*c.elemType)
		}
		return value.Array(value.UnknownType)
	case value.KindRange:
		if c.elemType != nil {
			return value.Range(*c.elemType)
		}
		return value.Range(value.UnknownType)
	case value.KindStruct:
		return value.Struct(c.fields)
	case value.KindNumeric:
		return value.NumericType()
	default:
		return value.DataType{Kind: c.kind}
	}
}

// Kind reports the variant tag.
func (c *Column) Kind() value.Kind { return c.kind }

// Len reports the row count.
func (c *Column) Len() int { return c.nulls.Len() }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return c.nulls.IsNull(i) }

// Clear empties the column in place.
func (c *Column) Clear() {
	c.nulls.Clear()
	c.boolData = c.boolData[:0]
	c.i64Data = c.i64Data[:0]
	c.f64Data = c.f64Data[:0]
	c.decData = c.decData[:0]
	c.strData = c.strData[:0]
	c.bytesData = c.bytesData[:0]
	c.dateData = c.dateData[:0]
	c.timeData = c.timeData[:0]
	c.dtData = c.dtData[:0]
	c.tsData = c.tsData[:0]
	c.geoData = c.geoData[:0]
	c.jsonData = c.jsonData[:0]
	c.ivlData = c.ivlData[:0]
	c.arrData = c.arrData[:0]
	c.structData = c.structData[:0]
	c.rngData = c.rngData[:0]
}

// Push appends one value, coercing to NULL if v.IsNull().
func (c *Column) Push(v value.Value) {
	isNull := v.IsNull()
	c.nulls.Push(isNull)
	switch c.kind {
	case value.KindBool:
		b, _ := v.AsBool()
		c.boolData = append(c.boolData, b)
	case value.KindInt64:
		i, _ := v.AsInt64()
		c.i64Data = append(c.i64Data, i)
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		c.f64Data = append(c.f64Data, f)
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		c.decData = append(c.decData, d)
	case value.KindString:
		s, _ := v.AsString()
		c.strData = append(c.strData, s)
	case value.KindBytes:
		b, _ := v.AsBytes()
		c.bytesData = append(c.bytesData, b)
	case value.KindDate:
		d, _ := v.AsDate()
		c.dateData = append(c.dateData, d)
	case value.KindTime:
		tm, _ := v.AsTime()
		c.timeData = append(c.timeData, tm)
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		c.dtData = append(c.dtData, dt)
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		c.tsData = append(c.tsData, ts)
	case value.KindGeography:
		g, _ := v.AsGeography()
		c.geoData = append(c.geoData, g)
	case value.KindJSON:
		j, _ := v.AsJSON()
		c.jsonData = append(c.jsonData, j)
	case value.KindInterval:
		iv, _ := v.AsInterval()
		c.ivlData = append(c.ivlData, iv)
	case value.KindArray:
		a, _ := v.AsArray()
		c.arrData = append(c.arrData, a)
	case value.KindStruct:
		s, _ := v.AsStruct()
		c.structData = append(c.structData, s)
	case value.KindRange:
		r, _ := v.AsRange()
		c.rngData = append(c.rngData, r)
	}
}

// Set overwrites row i.
func (c *Column) Set(i int, v value.Value) {
	if v.IsNull() {
		c.nulls.SetNull(i)
	} else {
		c.nulls.SetValid(i)
	}
	switch c.kind {
	case value.KindBool:
		b, _ := v.AsBool()
		c.boolData[i] = b
	case value.KindInt64:
		n, _ := v.AsInt64()
		c.i64Data[i] = n
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		c.f64Data[i] = f
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		c.decData[i] = d
	case value.KindString:
		s, _ := v.AsString()
		c.strData[i] = s
	case value.KindBytes:
		b, _ := v.AsBytes()
		c.bytesData[i] = b
	case value.KindDate:
		d, _ := v.AsDate()
		c.dateData[i] = d
	case value.KindTime:
		tm, _ := v.AsTime()
		c.timeData[i] = tm
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		c.dtData[i] = dt
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		c.tsData[i] = ts
	case value.KindGeography:
		g, _ := v.AsGeography()
		c.geoData[i] = g
	case value.KindJSON:
		j, _ := v.AsJSON()
		c.jsonData[i] = j
	case value.KindInterval:
		iv, _ := v.AsInterval()
		c.ivlData[i] = iv
	case value.KindArray:
		a, _ := v.AsArray()
		c.arrData[i] = a
	case value.KindStruct:
		s, _ := v.AsStruct()
		c.structData[i] = s
	case value.KindRange:
		r, _ := v.AsRange()
		c.rngData[i] = r
	}
}

// Get reconstructs row i as a value.Value. A null row always returns the
// canonical NULL regardless of whatever dummy payload sits underneath —
// this is the invariant the aggregation kernels and callers both depend on.
func (c *Column) Get(i int) value.Value {
	if c.nulls.IsNull(i) {
		return value.Null
	}
	switch c.kind {
	case value.KindBool:
		return value.Bool(c.boolData[i])
	case value.KindInt64:
		return value.Int64(c.i64Data[i])
	case value.KindFloat64:
		return value.Float64(c.f64Data[i])
	case value.KindNumeric:
		return value.Numeric(c.decData[i])
	case value.KindBigNumeric:
		return value.BigNumeric(c.decData[i])
	case value.KindString:
		return value.String(c.strData[i])
	case value.KindBytes:
		return value.Bytes(c.bytesData[i])
	case value.KindDate:
		return value.DateVal(c.dateData[i])
	case value.KindTime:
		return value.TimeVal(c.timeData[i])
	case value.KindDateTime:
		return value.DateTimeV(c.dtData[i])
	case value.KindTimestamp:
		return value.TimestampV(c.tsData[i])
	case value.KindGeography:
		return value.Geography(c.geoData[i])
	case value.KindJSON:
		return value.JSON(c.jsonData[i])
	case value.KindInterval:
		return value.Interval(c.ivlData[i])
	case value.KindArray:
		return value.ArrayOf(c.arrData[i])
	case value.KindStruct:
		return value.StructOf(c.structData[i])
	case value.KindRange:
		return value.RangeOf(c.rngData[i])
	default:
		return value.Null
	}
}

// Remove deletes row i, shifting subsequent rows down by one.
func (c *Column) Remove(i int) {
	if i < 0 || i >= c.Len() {
		return
	}
	c.nulls.Remove(i)
	switch c.kind {
	case value.KindBool:
		c.boolData = removeAt(c.boolData, i)
	case value.KindInt64:
		c.i64Data = removeAt(c.i64Data, i)
	case value.KindFloat64:
		c.f64Data = removeAt(c.f64Data, i)
	case value.KindNumeric, value.KindBigNumeric:
		c.decData = removeAt(c.decData, i)
	case value.KindString:
		c.strData = removeAt(c.strData, i)
	case value.KindBytes:
		c.bytesData = removeAt(c.bytesData, i)
	case value.KindDate:
		c.dateData = removeAt(c.dateData, i)
	case value.KindTime:
		c.timeData = removeAt(c.timeData, i)
	case value.KindDateTime:
		c.dtData = removeAt(c.dtData, i)
	case value.KindTimestamp:
		c.tsData = removeAt(c.tsData, i)
	case value.KindGeography:
		c.geoData = removeAt(c.geoData, i)
	case value.KindJSON:
		c.jsonData = removeAt(c.jsonData, i)
	case value.KindInterval:
		c.ivlData = removeAt(c.ivlData, i)
	case value.KindArray:
		c.arrData = removeAt(c.arrData, i)
	case value.KindStruct:
		c.structData = removeAt(c.structData, i)
	case value.KindRange:
		c.rngData = removeAt(c.rngData, i)
	}
}

func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	return s[:len(s)-1]
}

// Clone returns a deep-enough copy for copy-on-write semantics: the
// backing slices are duplicated so mutating the clone never affects the
// original.
func (c *Column) Clone() *Column {
	out := &Column{kind: c.kind, fields: c.fields, nulls: c.nulls.Clone()}
	if c.elemType != nil {
		e := *c.elemType
		out.elemType = &e
	}
	out.boolData = append([]bool(nil), c.boolData...)
	out.i64Data = append([]int64(nil), c.i64Data...)
	out.f64Data = append([]float64(nil), c.f64Data...)
	out.decData = append([]decimal.Decimal(nil), c.decData...)
	out.strData = append([]string(nil), c.strData...)
	out.bytesData = append([][]byte(nil), c.bytesData...)
	out.dateData = append([]value.Date(nil), c.dateData...)
	out.timeData = append([]value.TimeOfDay(nil), c.timeData...)
	out.dtData = append([]value.DateTimeVal(nil), c.dtData...)
	out.tsData = append([]value.TimestampVal(nil), c.tsData...)
	out.geoData = append([]string(nil), c.geoData...)
	out.jsonData = append([]any(nil), c.jsonData...)
	out.ivlData = append([]value.IntervalValue(nil), c.ivlData...)
	out.arrData = append([][]value.Value(nil), c.arrData...)
	out.structData = append([][]value.StructEntry(nil), c.structData...)
	out.rngData = append([]value.RangeValue(nil), c.rngData...)
	return out
}

func typeMismatch(a, b *Column) error {
	return &yqerr.TypeMismatchError{Left: a.kind.String(), Right: b.kind.String()}
}
