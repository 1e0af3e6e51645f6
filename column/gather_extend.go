package column

import "yachtsql/value"

// Gather builds a new column pulling row indices[k] into position k,
// mirroring bitmap.Gather so a selection vector from a filter or join
// probe can be materialized against every column of a row batch at once.
func (c *Column) Gather(indices []int) *Column {
	out := New(c.DataType())
	out.nulls = c.nulls.Gather(indices)
	switch c.kind {
	case value.KindBool:
		out.boolData = gatherSlice(c.boolData, indices)
	case value.KindInt64:
		out.i64Data = gatherSlice(c.i64Data, indices)
	case value.KindFloat64:
		out.f64Data = gatherSlice(c.f64Data, indices)
	case value.KindNumeric, value.KindBigNumeric:
		out.decData = gatherSlice(c.decData, indices)
	case value.KindString:
		out.strData = gatherSlice(c.strData, indices)
	case value.KindBytes:
		out.bytesData = gatherSlice(c.bytesData, indices)
	case value.KindDate:
		out.dateData = gatherSlice(c.dateData, indices)
	case value.KindTime:
		out.timeData = gatherSlice(c.timeData, indices)
	case value.KindDateTime:
		out.dtData = gatherSlice(c.dtData, indices)
	case value.KindTimestamp:
		out.tsData = gatherSlice(c.tsData, indices)
	case value.KindGeography:
		out.geoData = gatherSlice(c.geoData, indices)
	case value.KindJSON:
		out.jsonData = gatherSlice(c.jsonData, indices)
	case value.KindInterval:
		out.ivlData = gatherSlice(c.ivlData, indices)
	case value.KindArray:
		out.arrData = gatherSlice(c.arrData, indices)
	case value.KindStruct:
		out.structData = gatherSlice(c.structData, indices)
	case value.KindRange:
		out.rngData = gatherSlice(c.rngData, indices)
	}
	return out
}

func gatherSlice[T any](s []T, indices []int) []T {
	out := make([]T, len(indices))
	for k, idx := range indices {
		out[k] = s[idx]
	}
	return out
}

// Extend appends other's rows in order. Both columns must share a Kind;
// a type mismatch (e.g. concatenating an INT64 column onto a STRING
// column from two batches with diverging schemas) is reported rather than
// silently coerced.
func (c *Column) Extend(other *Column) error {
	if c.kind != other.kind {
		return typeMismatch(c, other)
	}
	c.nulls.Extend(other.nulls)
	switch c.kind {
	case value.KindBool:
		c.boolData = append(c.boolData, other.boolData...)
	case value.KindInt64:
		c.i64Data = append(c.i64Data, other.i64Data...)
	case value.KindFloat64:
		c.f64Data = append(c.f64Data, other.f64Data...)
	case value.KindNumeric, value.KindBigNumeric:
		c.decData = append(c.decData, other.decData...)
	case value.KindString:
		c.strData = append(c.strData, other.strData...)
	case value.KindBytes:
		c.bytesData = append(c.bytesData, other.bytesData...)
	case value.KindDate:
		c.dateData = append(c.dateData, other.dateData...)
	case value.KindTime:
		c.timeData = append(c.timeData, other.timeData...)
	case value.KindDateTime:
		c.dtData = append(c.dtData, other.dtData...)
	case value.KindTimestamp:
		c.tsData = append(c.tsData, other.tsData...)
	case value.KindGeography:
		c.geoData = append(c.geoData, other.geoData...)
	case value.KindJSON:
		c.jsonData = append(c.jsonData, other.jsonData...)
	case value.KindInterval:
		c.ivlData = append(c.ivlData, other.ivlData...)
	case value.KindArray:
		c.arrData = append(c.arrData, other.arrData...)
	case value.KindStruct:
		c.structData = append(c.structData, other.structData...)
	case value.KindRange:
		c.rngData = append(c.rngData, other.rngData...)
	}
	return nil
}
