package value

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
)

// Hash computes a content hash suitable for using Values as group/hash
// keys: discriminant XOR hash(contents), containers hashed element-wise,
// floats hashed by bit pattern so NaN hashes equal to NaN.
func Hash(v Value) uint64 {
	h := fnv.New64a()
	writeUint64(h, uint64(v.kind))
	hashInto(h, v)
	return h.Sum64() ^ (uint64(v.kind) * 0x9E3779B97F4A7C15)
}

func writeUint64(h interface{ Write([]byte) (int, error) }, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = h.Write(buf[:])
}

func hashInto(h interface{ Write([]byte) (int, error) }, v Value) {
	switch v.kind {
	case KindUnknown:
		// NULL/DEFAULT contribute only their discriminant.
	case KindBool:
		if v.b {
			writeUint64(h, 1)
		} else {
			writeUint64(h, 0)
		}
	case KindInt64:
		writeUint64(h, uint64(v.i))
	case KindFloat64:
		writeUint64(h, math.Float64bits(v.f))
	case KindNumeric, KindBigNumeric:
		_, _ = h.Write([]byte(v.dec.String()))
	case KindString:
		_, _ = h.Write([]byte(v.s))
	case KindBytes:
		_, _ = h.Write(v.bs)
	case KindDate:
		writeUint64(h, uint64(v.date.Days))
	case KindTime:
		writeUint64(h, uint64(v.tod.Nanos))
	case KindDateTime:
		writeUint64(h, uint64(v.dt.Micros))
	case KindTimestamp:
		writeUint64(h, uint64(v.ts.Micros))
	case KindGeography:
		_, _ = h.Write([]byte(v.geo))
	case KindInterval:
		writeUint64(h, uint64(v.ivl.Months))
		writeUint64(h, uint64(v.ivl.Days))
		writeUint64(h, uint64(v.ivl.Nanos))
	case KindArray:
		for _, e := range v.arr {
			hashInto(h, e)
		}
	case KindStruct:
		for _, e := range v.strct {
			_, _ = h.Write([]byte(e.Name))
			hashInto(h, e.Value)
		}
	case KindRange:
		if v.rng.Start != nil {
			hashInto(h, *v.rng.Start)
		}
		if v.rng.End != nil {
			hashInto(h, *v.rng.End)
		}
	case KindJSON:
		hashJSON(h, v.js)
	}
}

// JSON kind tags: fixed byte prefixes mixed into the canonical JSON
// hasher so equal documents hash equal regardless of key order.
const (
	jsonTagNull   = 0
	jsonTagBool   = 1
	jsonTagNumber = 2
	jsonTagString = 3
	jsonTagArray  = 4
	jsonTagObject = 5
)

func hashJSON(h interface{ Write([]byte) (int, error) }, j any) {
	switch t := j.(type) {
	case nil:
		writeUint64(h, jsonTagNull)
	case bool:
		writeUint64(h, jsonTagBool)
		if t {
			writeUint64(h, 1)
		} else {
			writeUint64(h, 0)
		}
	case float64:
		writeUint64(h, jsonTagNumber)
		writeUint64(h, math.Float64bits(t))
	case string:
		writeUint64(h, jsonTagString)
		_, _ = h.Write([]byte(t))
	case []any:
		writeUint64(h, jsonTagArray)
		for _, item := range t {
			hashJSON(h, item)
		}
	case map[string]any:
		writeUint64(h, jsonTagObject)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = h.Write([]byte(k))
			hashJSON(h, t[k])
		}
	}
}
