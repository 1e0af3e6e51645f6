package column

import (
	"math"
	"math/bits"

	"yachtsql/value"
)

// Sum implements the word-at-a-time aggregation kernel: for INT64/FLOAT64
// it walks the null bitmap 64 rows at a time, taking the all-valid fast
// path (bitmap_word == 0) or the all-null skip (bitmap_word == ^uint64(0))
// before falling back to a trailing-zeros bit walk for a mixed word, then
// handles the final partial chunk the same way using the same last word's
// bits. NUMERIC/BIGNUMERIC sum by filtering nulls and summing as float64.
// Every other kind has no defined sum and reports ok=false.
func (c *Column) Sum() (sum float64, ok bool) {
	switch c.kind {
	case value.KindInt64:
		return sumWords(c.i64Data, c.nulls.Words(), c.Len())
	case value.KindFloat64:
		return sumWords(c.f64Data, c.nulls.Words(), c.Len())
	case value.KindNumeric, value.KindBigNumeric:
		n := c.Len()
		nullCount := c.nulls.CountNull()
		if nullCount == n {
			return 0, false
		}
		var total float64
		for i := 0; i < n; i++ {
			if c.nulls.IsNull(i) {
				continue
			}
			f, _ := c.decData[i].Float64()
			total += f
		}
		return total, true
	default:
		return 0, false
	}
}

// numeric constrains the element types sumWords accepts: the two lanes
// that get a dedicated packed vector and participate in word-at-a-time
// summation (everything else routes through the decimal path above).
type numeric interface{ ~int64 | ~float64 }

func sumWords[T numeric](data []T, words []uint64, n int) (sum float64, ok bool) {
	fullChunks := n / 64
	remainder := n % 64

	for w := 0; w < fullChunks; w++ {
		word := words[w]
		chunk := data[w*64 : w*64+64]
		if word == 0 {
			for _, v := range chunk {
				sum += float64(v)
			}
			ok = true
			continue
		}
		if word == ^uint64(0) {
			continue
		}
		validMask := ^word
		for validMask != 0 {
			bit := bits.TrailingZeros64(validMask)
			sum += float64(chunk[bit])
			ok = true
			validMask &= validMask - 1
		}
	}

	if remainder > 0 {
		lastWord := uint64(0)
		if len(words) > 0 {
			lastWord = words[len(words)-1]
		}
		rem := data[fullChunks*64 : n]
		if lastWord == 0 {
			for _, v := range rem {
				sum += float64(v)
			}
			ok = true
		} else {
			for i, v := range rem {
				if (lastWord>>uint(i))&1 == 0 {
					sum += float64(v)
					ok = true
				}
			}
		}
	}
	return sum, ok
}

// Min returns the smallest non-null value, following value.Compare's order
// (STRING and BYTES lexicographic). For FLOAT64 a pair involving NaN counts
// as equal and keeps the current result, so NaN is returned only when it is
// the first non-null row. ok is false when every row is null or the kind has
// no defined ordering for aggregation (containers, JSON, GEOGRAPHY,
// INTERVAL, RANGE, BOOL).
func (c *Column) Min() (value.Value, bool) {
	return c.extremum(func(best, cand value.Value) bool {
		return value.Compare(cand, best) < 0
	})
}

// Max returns the largest non-null value; see Min for the shared rules.
func (c *Column) Max() (value.Value, bool) {
	return c.extremum(func(best, cand value.Value) bool {
		return value.Compare(cand, best) > 0
	})
}

func (c *Column) extremum(better func(best, cand value.Value) bool) (value.Value, bool) {
	switch c.kind {
	case value.KindInt64, value.KindFloat64, value.KindNumeric, value.KindBigNumeric,
		value.KindString, value.KindBytes, value.KindDate, value.KindTime, value.KindDateTime, value.KindTimestamp:
	default:
		return value.Null, false
	}
	var best value.Value
	found := false
	for i := 0; i < c.Len(); i++ {
		if c.nulls.IsNull(i) {
			continue
		}
		cand := c.Get(i)
		if found && c.kind == value.KindFloat64 {
			bf, _ := best.AsFloat64()
			cf, _ := cand.AsFloat64()
			if math.IsNaN(bf) || math.IsNaN(cf) {
				// Unordered pair: treated as equal, best is kept.
				continue
			}
		}
		if !found || better(best, cand) {
			best = cand
			found = true
		}
	}
	return best, found
}
