package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// wireValue is the self-describing tagged representation used to
// serialize a Value: a variant tag plus whichever payload field applies.
// Every other representation (debug strings, ToJSON) is lossy by design;
// this one round-trips exactly, satisfying deserialize(serialize(v)) == v.
type wireValue struct {
	Kind    Kind        `json:"kind"`
	Default bool        `json:"default,omitempty"`
	Bool    *bool       `json:"bool,omitempty"`
	Int64   *int64      `json:"int64,omitempty"`
	Float64 *string     `json:"float64,omitempty"` // strconv text so NaN/Inf survive JSON
	Decimal *string     `json:"decimal,omitempty"`
	String  *string     `json:"string,omitempty"`
	Bytes   *string     `json:"bytes,omitempty"` // base64
	Days    *int32      `json:"days,omitempty"`
	Nanos   *int64      `json:"nanos,omitempty"`
	Micros  *int64      `json:"micros,omitempty"`
	JSON    *string     `json:"json,omitempty"` // raw JSON text
	Array   []wireValue `json:"array,omitempty"`
	Struct  []wireEntry `json:"struct,omitempty"`
	Months  *int32      `json:"months,omitempty"`
	RngLo   *wireValue  `json:"range_start,omitempty"`
	RngHi   *wireValue  `json:"range_end,omitempty"`
}

type wireEntry struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

// MarshalJSON emits the self-describing tagged representation.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

func (v Value) toWire() wireValue {
	w := wireValue{Kind: v.kind, Default: v.isDflt}
	switch v.kind {
	case KindBool:
		w.Bool = &v.b
	case KindInt64:
		w.Int64 = &v.i
	case KindFloat64:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		w.Float64 = &s
	case KindNumeric, KindBigNumeric:
		s := v.dec.String()
		w.Decimal = &s
	case KindString:
		w.String = &v.s
	case KindBytes:
		s := base64.StdEncoding.EncodeToString(v.bs)
		w.Bytes = &s
	case KindDate:
		w.Days = &v.date.Days
	case KindTime:
		w.Nanos = &v.tod.Nanos
	case KindDateTime:
		w.Micros = &v.dt.Micros
	case KindTimestamp:
		w.Micros = &v.ts.Micros
	case KindGeography:
		w.String = &v.geo
	case KindJSON:
		s, _ := encodeJSONText(v.js)
		w.JSON = &s
	case KindInterval:
		w.Months = &v.ivl.Months
		days := v.ivl.Days
		w.Days = &days
		nanos := v.ivl.Nanos
		w.Nanos = &nanos
	case KindArray:
		w.Array = make([]wireValue, len(v.arr))
		for i, e := range v.arr {
			w.Array[i] = e.toWire()
		}
	case KindStruct:
		w.Struct = make([]wireEntry, len(v.strct))
		for i, e := range v.strct {
			w.Struct[i] = wireEntry{Name: e.Name, Value: e.Value.toWire()}
		}
	case KindRange:
		if v.rng.Start != nil {
			sw := v.rng.Start.toWire()
			w.RngLo = &sw
		}
		if v.rng.End != nil {
			ew := v.rng.End.toWire()
			w.RngHi = &ew
		}
	}
	return w
}

// UnmarshalJSON implements the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out, err := w.toValue()
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func (w wireValue) toValue() (Value, error) {
	if w.Default {
		return Default, nil
	}
	switch w.Kind {
	case KindUnknown:
		return Null, nil
	case KindBool:
		return Bool(derefBool(w.Bool)), nil
	case KindInt64:
		return Int64(derefInt64(w.Int64)), nil
	case KindFloat64:
		f, err := strconv.ParseFloat(derefString(w.Float64), 64)
		if err != nil {
			return Value{}, fmt.Errorf("value: decode float64: %w", err)
		}
		return Float64(f), nil
	case KindNumeric, KindBigNumeric:
		d, err := decimal.NewFromString(derefString(w.Decimal))
		if err != nil {
			return Value{}, fmt.Errorf("value: decode decimal: %w", err)
		}
		if w.Kind == KindBigNumeric {
			return BigNumeric(d), nil
		}
		return Numeric(d), nil
	case KindString:
		return String(derefString(w.String)), nil
	case KindBytes:
		b, err := base64.StdEncoding.DecodeString(derefString(w.Bytes))
		if err != nil {
			return Value{}, fmt.Errorf("value: decode bytes: %w", err)
		}
		return Bytes(b), nil
	case KindDate:
		return DateVal(Date{Days: derefInt32(w.Days)}), nil
	case KindTime:
		return TimeVal(TimeOfDay{Nanos: derefInt64(w.Nanos)}), nil
	case KindDateTime:
		return DateTimeV(DateTimeVal{Micros: derefInt64(w.Micros)}), nil
	case KindTimestamp:
		return TimestampV(TimestampVal{Micros: derefInt64(w.Micros)}), nil
	case KindGeography:
		return Geography(derefString(w.String)), nil
	case KindJSON:
		j, err := ParseJSONText(derefString(w.JSON))
		if err != nil {
			return Value{}, fmt.Errorf("value: decode json: %w", err)
		}
		return JSON(j), nil
	case KindInterval:
		return Interval(IntervalValue{
			Months: derefInt32(w.Months),
			Days:   derefInt32(w.Days),
			Nanos:  derefInt64(w.Nanos),
		}), nil
	case KindArray:
		elems := make([]Value, len(w.Array))
		for i, e := range w.Array {
			ev, err := e.toValue()
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return ArrayOf(elems), nil
	case KindStruct:
		entries := make([]StructEntry, len(w.Struct))
		for i, e := range w.Struct {
			ev, err := e.Value.toValue()
			if err != nil {
				return Value{}, err
			}
			entries[i] = StructEntry{Name: e.Name, Value: ev}
		}
		return StructOf(entries), nil
	case KindRange:
		var lo, hi *Value
		if w.RngLo != nil {
			v, err := w.RngLo.toValue()
			if err != nil {
				return Value{}, err
			}
			lo = &v
		}
		if w.RngHi != nil {
			v, err := w.RngHi.toValue()
			if err != nil {
				return Value{}, err
			}
			hi = &v
		}
		return RangeOf(NewRange(lo, hi)), nil
	default:
		return Null, nil
	}
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// wireDataType mirrors DataType's shape for serialization.
type wireDataType struct {
	Kind             Kind           `json:"kind"`
	NumericPrecision int            `json:"precision,omitempty"`
	NumericScale     int            `json:"scale,omitempty"`
	HasNumericParams bool           `json:"has_params,omitempty"`
	Elem             *wireDataType  `json:"elem,omitempty"`
	Fields           []wireField    `json:"fields,omitempty"`
}

type wireField struct {
	Name string       `json:"name"`
	Type wireDataType `json:"type"`
}

// MarshalJSON implements DataType's tagged serialization.
func (d DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toWire())
}

func (d DataType) toWire() wireDataType {
	w := wireDataType{
		Kind:             d.Kind,
		NumericPrecision: d.NumericPrecision,
		NumericScale:     d.NumericScale,
		HasNumericParams: d.HasNumericParams,
	}
	if d.Elem != nil {
		ew := d.Elem.toWire()
		w.Elem = &ew
	}
	if len(d.Fields) > 0 {
		w.Fields = make([]wireField, len(d.Fields))
		for i, f := range d.Fields {
			w.Fields[i] = wireField{Name: f.Name, Type: f.Type.toWire()}
		}
	}
	return w
}

// UnmarshalJSON implements DataType's tagged deserialization.
func (d *DataType) UnmarshalJSON(data []byte) error {
	var w wireDataType
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = w.toDataType()
	return nil
}

func (w wireDataType) toDataType() DataType {
	d := DataType{
		Kind:             w.Kind,
		NumericPrecision: w.NumericPrecision,
		NumericScale:     w.NumericScale,
		HasNumericParams: w.HasNumericParams,
	}
	if w.Elem != nil {
		e := w.Elem.toDataType()
		d.Elem = &e
	}
	if len(w.Fields) > 0 {
		d.Fields = make([]StructField, len(w.Fields))
		for i, f := range w.Fields {
			d.Fields[i] = StructField{Name: f.Name, Type: f.Type.toDataType()}
		}
	}
	return d
}
