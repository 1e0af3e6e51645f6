package value

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Display renders the canonical, non-literal formatting used by
// CAST(... AS STRING) and as the JSON-encoding fallback.
func (v Value) Display() string {
	switch v.kind {
	case KindUnknown:
		if v.isDflt {
			return "DEFAULT"
		}
		return "NULL"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindFloat64:
		return formatFloat(v.f)
	case KindNumeric, KindBigNumeric:
		return v.dec.String()
	case KindString:
		return v.s
	case KindBytes:
		return hex.EncodeToString(v.bs)
	case KindDate:
		return v.date.String()
	case KindTime:
		return v.tod.String()
	case KindDateTime:
		return v.dt.String()
	case KindTimestamp:
		return v.ts.String()
	case KindGeography:
		return v.geo
	case KindJSON:
		s, _ := encodeJSONText(v.js)
		return s
	case KindInterval:
		return v.ivl.String()
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindStruct:
		parts := make([]string, len(v.strct))
		for i, e := range v.strct {
			parts[i] = fmt.Sprintf("%s: %s", e.Name, e.Value.Display())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		return rangeDisplay(v.rng, false)
	default:
		return "NULL"
	}
}

// String satisfies fmt.Stringer with Display semantics.
func (v Value) String() string { return v.Display() }

// Debug renders the SQL-literal-like form ('hello', b'68656c6c6f',
// DATE '2024-01-01', ...).
func (v Value) Debug() string {
	switch v.kind {
	case KindUnknown:
		if v.isDflt {
			return "DEFAULT"
		}
		return "NULL"
	case KindString:
		return "'" + v.s + "'"
	case KindBytes:
		return "b'" + hex.EncodeToString(v.bs) + "'"
	case KindDate:
		return "DATE '" + v.date.String() + "'"
	case KindTime:
		return "TIME '" + v.tod.String() + "'"
	case KindDateTime:
		return "DATETIME '" + v.dt.String() + "'"
	case KindTimestamp:
		return "TIMESTAMP '" + v.ts.String() + "'"
	case KindJSON:
		s, _ := encodeJSONText(v.js)
		return "JSON '" + s + "'"
	case KindGeography:
		return "GEOGRAPHY '" + v.geo + "'"
	case KindInterval:
		return "INTERVAL " + v.ivl.DebugString()
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.Debug()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindStruct:
		parts := make([]string, len(v.strct))
		for i, e := range v.strct {
			parts[i] = fmt.Sprintf("%s: %s", e.Name, e.Value.Debug())
		}
		return "STRUCT(" + strings.Join(parts, ", ") + ")"
	case KindRange:
		return rangeDisplay(v.rng, true)
	default:
		return v.Display()
	}
}

func rangeDisplay(r RangeValue, debug bool) string {
	render := func(v *Value, unbounded string) string {
		if v == nil {
			return unbounded
		}
		if debug {
			return v.Debug()
		}
		return v.Display()
	}
	unboundedTok := "UNBOUNDED"
	if debug {
		unboundedTok = "NULL"
	}
	return "[" + render(r.Start, unboundedTok) + ", " + render(r.End, unboundedTok) + ")"
}

func formatFloat(f float64) string {
	// %v keeps integral floats like 3 instead of 3.000000 while still
	// printing full precision for non-integral values.
	return fmt.Sprintf("%v", f)
}
