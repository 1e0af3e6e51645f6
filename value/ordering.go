package value

import "math"

// Compare implements the engine's total order over values:
//
//	nulls compare greater than any non-null;
//	INT64/FLOAT64 widen to float64 and compare there;
//	same-variant BOOL, numeric, STRING, BYTES and temporal payloads
//	compare directly;
//	otherwise Equal (an explicit, documented fallback), which includes
//	same-variant GEOGRAPHY, JSON, INTERVAL, RANGE, ARRAY and STRUCT pairs.
//
// Returns -1, 0, or 1.
func Compare(a, b Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return 1
	}
	if b.IsNull() {
		return -1
	}

	aNum, aIsNum := numericFloat(a)
	bNum, bIsNum := numericFloat(b)
	if aIsNum && bIsNum && (a.kind != b.kind) {
		return compareFloat(aNum, bNum)
	}

	if a.kind != b.kind {
		return 0
	}

	switch a.kind {
	case KindBool:
		return compareBool(a.b, b.b)
	case KindInt64:
		return compareInt64(a.i, b.i)
	case KindFloat64:
		return compareFloat(a.f, b.f)
	case KindNumeric, KindBigNumeric:
		return a.dec.Cmp(b.dec)
	case KindString:
		return compareString(a.s, b.s)
	case KindBytes:
		return compareBytes(a.bs, b.bs)
	case KindDate:
		return compareInt64(int64(a.date.Days), int64(b.date.Days))
	case KindTime:
		return compareInt64(a.tod.Nanos, b.tod.Nanos)
	case KindDateTime:
		return compareInt64(a.dt.Micros, b.dt.Micros)
	case KindTimestamp:
		return compareInt64(a.ts.Micros, b.ts.Micros)
	default:
		return 0
	}
}

// numericFloat reports the float64 widening used only for cross-type
// INT64<->FLOAT64 comparisons (not used when kinds already match, so an
// INT64/INT64 pair still compares as integers).
func numericFloat(v Value) (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(v.i), true
	case KindFloat64:
		return v.f, true
	default:
		return 0, false
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

// compareFloat gives NaN a total order: NaN compares equal to NaN and
// greater than every other float, matching the bit-pattern equality rule
// (values must serve as group/hash keys).
func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports content equality using the same NaN-equals-NaN semantics
// as Compare, recursing into containers.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(a.strct) != len(b.strct) {
			return false
		}
		for i := range a.strct {
			if a.strct[i].Name != b.strct[i].Name || !Equal(a.strct[i].Value, b.strct[i].Value) {
				return false
			}
		}
		return true
	case KindJSON:
		return jsonEqual(a.js, b.js)
	case KindGeography:
		return a.geo == b.geo
	case KindInterval:
		return a.ivl == b.ivl
	case KindRange:
		sameBound := func(x, y *Value) bool {
			if x == nil || y == nil {
				return x == nil && y == nil
			}
			return Equal(*x, *y)
		}
		return sameBound(a.rng.Start, b.rng.Start) && sameBound(a.rng.End, b.rng.End)
	default:
		// a.kind == b.kind here, so Compare never falls into its
		// cross-type widening or "otherwise Equal" branches.
		return Compare(a, b) == 0
	}
}

func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !jsonEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || (math.IsNaN(av) && math.IsNaN(bv)))
	default:
		return a == b
	}
}
