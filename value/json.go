package value

import (
	"encoding/base64"
	"encoding/json"
)

// ToJSON converts v into a plain Go value (map[string]any / []any /
// string / int64 / float64 / bool / nil) suitable for json.Marshal, following the
// engine's JSON encoding rules: BYTES as standard base64, NUMERIC/
// BIGNUMERIC as strings (to avoid float precision loss), INTERVAL and
// RANGE as their debug text, containers recursed into.
func (v Value) ToJSON() any {
	switch v.kind {
	case KindUnknown:
		return nil
	case KindBool:
		return v.b
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindNumeric, KindBigNumeric:
		return v.dec.String()
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.bs)
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
		return v.js
	case KindInterval:
		return v.ivl.DebugString()
	case KindRange:
		return rangeDisplay(v.rng, true)
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToJSON()
		}
		return out
	case KindStruct:
		out := make(map[string]any, len(v.strct))
		for _, e := range v.strct {
			out[e.Name] = e.Value.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// encodeJSONText renders a decoded JSON document back to compact text,
// used by Display/Debug for KindJSON values.
func encodeJSONText(j any) (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseJSONText decodes JSON text into the plain-Go representation used
// internally by KindJSON values.
func ParseJSONText(text string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	return out, nil
}
