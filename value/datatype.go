// Package value implements the SQL scalar Value Model: a tagged union
// covering the engine's closed set of types, with total ordering, hashing,
// display, and a self-describing serialization.
//
// Values are pure data — no I/O, no catalog lookups. Everything here must
// stay comparable by content alone so it can serve as a group/hash key.
package value

import (
	"fmt"
	"strings"
)

// Kind tags which variant of DataType/Value is in play. It is the
// discriminant the rest of the package switches on instead of modeling the
// type system as an interface hierarchy.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindNumeric
	KindBigNumeric
	KindString
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindTimestamp
	KindGeography
	KindJSON
	KindStruct
	KindArray
	KindInterval
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "UNKNOWN"
	case KindBool:
		return "BOOL"
	case KindInt64:
		return "INT64"
	case KindFloat64:
		return "FLOAT64"
	case KindNumeric:
		return "NUMERIC"
	case KindBigNumeric:
		return "BIGNUMERIC"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindGeography:
		return "GEOGRAPHY"
	case KindJSON:
		return "JSON"
	case KindStruct:
		return "STRUCT"
	case KindArray:
		return "ARRAY"
	case KindInterval:
		return "INTERVAL"
	case KindRange:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}

// StructField names one member of a STRUCT<...> type.
type StructField struct {
	Name string
	Type DataType
}

// DataType describes the shape of a Value: a closed set of scalar kinds
// plus the two recursive container kinds (STRUCT, ARRAY) and RANGE<T>.
type DataType struct {
	Kind Kind

	// NumericPrecision/NumericScale are set only for KindNumeric when the
	// planner supplied an explicit NUMERIC(precision, scale); both zero
	// means an unparameterized NUMERIC.
	NumericPrecision int
	NumericScale     int
	HasNumericParams bool

	// Elem is the element type for KindArray and KindRange.
	Elem *DataType

	// Fields enumerates STRUCT members in declaration order.
	Fields []StructField
}

// The *Type vars are the singleton data types for every non-parameterized
// kind. The value constructors of the same kinds (Bool, Int64, ...) keep
// the bare names; the Type suffix disambiguates the two namespaces the way
// ArrayOf disambiguates from Array.
var (
	UnknownType    = DataType{Kind: KindUnknown}
	BoolType       = DataType{Kind: KindBool}
	Int64Type      = DataType{Kind: KindInt64}
	Float64Type    = DataType{Kind: KindFloat64}
	BigNumericType = DataType{Kind: KindBigNumeric}
	StringType     = DataType{Kind: KindString}
	BytesType      = DataType{Kind: KindBytes}
	DateType       = DataType{Kind: KindDate}
	TimeType       = DataType{Kind: KindTime}
	DateTimeType   = DataType{Kind: KindDateTime}
	TimestampType  = DataType{Kind: KindTimestamp}
	GeographyType  = DataType{Kind: KindGeography}
	JSONType       = DataType{Kind: KindJSON}
	IntervalType   = DataType{Kind: KindInterval}
)

// NumericType builds a plain (unparameterized) NUMERIC data type.
func NumericType() DataType { return DataType{Kind: KindNumeric} }

// NumericWithParams builds NUMERIC(precision, scale).
func NumericWithParams(precision, scale int) DataType {
	return DataType{Kind: KindNumeric, NumericPrecision: precision, NumericScale: scale, HasNumericParams: true}
}

// Array builds ARRAY<elem>.
func Array(elem DataType) DataType {
	e := elem
	return DataType{Kind: KindArray, Elem: &e}
}

// Range builds RANGE<elem>.
func Range(elem DataType) DataType {
	e := elem
	return DataType{Kind: KindRange, Elem: &e}
}

// Struct builds STRUCT<fields...>.
func Struct(fields []StructField) DataType {
	return DataType{Kind: KindStruct, Fields: fields}
}

// Equal reports whether two data types describe the same shape. NUMERIC
// precision/scale is ignored for equality, matching BigQuery's treatment
// of NUMERIC as a single type regardless of parameterization.
func (d DataType) Equal(o DataType) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case KindArray, KindRange:
		if d.Elem == nil || o.Elem == nil {
			return d.Elem == o.Elem
		}
		return d.Elem.Equal(*o.Elem)
	case KindStruct:
		if len(d.Fields) != len(o.Fields) {
			return false
		}
		for i := range d.Fields {
			if !strings.EqualFold(d.Fields[i].Name, o.Fields[i].Name) || !d.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical BigQuery-flavored type name, e.g.
// "ARRAY<INT64>", "NUMERIC(10, 2)", "STRUCT<a INT64, b STRING>".
func (d DataType) String() string {
	switch d.Kind {
	case KindNumeric:
		if d.HasNumericParams {
			return fmt.Sprintf("NUMERIC(%d, %d)", d.NumericPrecision, d.NumericScale)
		}
		return "NUMERIC"
	case KindArray:
		return fmt.Sprintf("ARRAY<%s>", d.elemString())
	case KindRange:
		return fmt.Sprintf("RANGE<%s>", d.elemString())
	case KindStruct:
		var b strings.Builder
		b.WriteString("STRUCT<")
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteByte(' ')
			b.WriteString(f.Type.String())
		}
		b.WriteString(">")
		return b.String()
	default:
		return d.Kind.String()
	}
}

func (d DataType) elemString() string {
	if d.Elem == nil {
		return KindUnknown.String()
	}
	return d.Elem.String()
}

// ToBQType is the coarse legacy-BigQuery type name used when a result
// schema is rendered for external consumers (e.g. the JSON output
// formatter): most types map to their own name, RANGE degrades to
// STRING, and BOOL uses the unparameterized BOOLEAN alias.
func (d DataType) ToBQType() string {
	switch d.Kind {
	case KindUnknown:
		return "STRING"
	case KindBool:
		return "BOOLEAN"
	case KindArray:
		return fmt.Sprintf("ARRAY<%s>", d.elemString())
	case KindRange:
		return "STRING"
	case KindStruct:
		return "STRUCT"
	default:
		return d.Kind.String()
	}
}
