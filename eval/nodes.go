package eval

import (
	"strings"
	"time"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// evalCase implements both CASE forms: SIMPLE
// (Operand != nil) compares Operand to each WHEN value; SEARCHED
// (Operand == nil) evaluates each WHEN as a boolean. The first matching
// arm short-circuits; no match falls through to Else or NULL.
func (e *ValueEvaluator) evalCase(n *expr.Case, record table.Record) (value.Value, error) {
	var operand value.Value
	simple := n.Operand != nil
	if simple {
		v, err := e.Evaluate(n.Operand, record)
		if err != nil {
			return value.Null, err
		}
		operand = v
	}
	for _, arm := range n.Whens {
		if simple {
			whenVal, err := e.Evaluate(arm.When, record)
			if err != nil {
				return value.Null, err
			}
			if !operand.IsNull() && !whenVal.IsNull() && value.Compare(operand, whenVal) == 0 {
				return e.Evaluate(arm.Then, record)
			}
			continue
		}
		cond, err := e.Evaluate(arm.When, record)
		if err != nil {
			return value.Null, err
		}
		if b, ok := cond.AsBool(); ok && b {
			return e.Evaluate(arm.Then, record)
		}
	}
	if n.Else != nil {
		return e.Evaluate(n.Else, record)
	}
	return value.Null, nil
}

// evalBetween implements three-way NULL-propagating BETWEEN:
// `low <= v <= high`, result XORed with Negated.
func (e *ValueEvaluator) evalBetween(n *expr.Between, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	low, err := e.Evaluate(n.Low, record)
	if err != nil {
		return value.Null, err
	}
	high, err := e.Evaluate(n.High, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() || low.IsNull() || high.IsNull() {
		return value.Null, nil
	}
	in := value.Compare(v, low) >= 0 && value.Compare(v, high) <= 0
	return value.Bool(in != n.Negated), nil
}

// evalInList implements `[NOT] IN (...)`: short-circuit TRUE on any
// equal; if no equal but any NULL was seen, the result is NULL; else
// FALSE. Negated flips the final boolean only.
func (e *ValueEvaluator) evalInList(n *expr.InList, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	sawNull := false
	for _, item := range n.List {
		iv, err := e.Evaluate(item, record)
		if err != nil {
			return value.Null, err
		}
		if iv.IsNull() {
			sawNull = true
			continue
		}
		if value.Compare(v, iv) == 0 {
			return value.Bool(!n.Negated), nil
		}
	}
	if sawNull {
		return value.Null, nil
	}
	return value.Bool(n.Negated), nil
}

// evalInUnnest implements `[NOT] IN UNNEST(array_expr)` with the same
// short-circuit/NULL rules as evalInList.
func (e *ValueEvaluator) evalInUnnest(n *expr.InUnnest, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	arr, err := e.Evaluate(n.Array, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	elems, ok := arr.AsArray()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("IN UNNEST requires an ARRAY operand")
	}
	sawNull := false
	for _, iv := range elems {
		if iv.IsNull() {
			sawNull = true
			continue
		}
		if value.Compare(v, iv) == 0 {
			return value.Bool(!n.Negated), nil
		}
	}
	if sawNull {
		return value.Null, nil
	}
	return value.Bool(n.Negated), nil
}

func (e *ValueEvaluator) evalArray(n *expr.Array, record table.Record) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.Evaluate(el, record)
		if err != nil {
			return value.Null, err
		}
		elems[i] = v
	}
	return value.ArrayOf(elems), nil
}

func (e *ValueEvaluator) evalStruct(n *expr.Struct, record table.Record) (value.Value, error) {
	entries := make([]value.StructEntry, len(n.Fields))
	for i, f := range n.Fields {
		v, err := e.Evaluate(f.Value, record)
		if err != nil {
			return value.Null, err
		}
		name := f.Name
		if name == "" {
			name = defaultFieldName(i)
		}
		entries[i] = value.StructEntry{Name: name, Value: v}
	}
	return value.StructOf(entries), nil
}

func defaultFieldName(i int) string {
	return "_field" + itoa(i+1)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// evalArrayAccess implements the OFFSET/ORDINAL/SAFE_* indexing modes
// plus the plain 1-based, NULL-on-out-of-bounds default.
func (e *ValueEvaluator) evalArrayAccess(n *expr.ArrayAccess, record table.Record) (value.Value, error) {
	arr, err := e.Evaluate(n.Array, record)
	if err != nil {
		return value.Null, err
	}
	idxVal, err := e.Evaluate(n.Index, record)
	if err != nil {
		return value.Null, err
	}
	if arr.IsNull() || idxVal.IsNull() {
		return value.Null, nil
	}
	idx, ok := idxVal.AsInt64()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("array index must be INT64")
	}
	if j, isJSON := arr.AsJSON(); isJSON {
		// JSON containers are forgiving: any out-of-bound or wrong-kind
		// access is NULL, regardless of the access mode.
		items, isArr := j.([]any)
		if !isArr || idx < 0 || idx >= int64(len(items)) {
			return value.Null, nil
		}
		return value.JSON(items[idx]), nil
	}
	elems, ok := arr.AsArray()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("array access requires an ARRAY operand")
	}

	safe := n.Mode == expr.AccessSafeOffset || n.Mode == expr.AccessSafeOrdinal
	ordinal := n.Mode == expr.AccessOrdinal || n.Mode == expr.AccessSafeOrdinal || n.Mode == expr.AccessPlain

	pos := idx
	if ordinal {
		pos = idx - 1
	}
	if pos < 0 || pos >= int64(len(elems)) {
		if safe || n.Mode == expr.AccessPlain {
			return value.Null, nil
		}
		return value.Null, yqerr.NewInvalidQuery("array index %d out of bounds", idx)
	}
	return elems[pos], nil
}

// evalStructAccess implements case-insensitive field projection; NULL
// on a NULL target or a miss.
func (e *ValueEvaluator) evalStructAccess(n *expr.StructAccess, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	entries, ok := v.AsStruct()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("field access requires a STRUCT operand")
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, n.Field) {
			return entry.Value, nil
		}
	}
	return value.Null, nil
}

// evalSubstring implements 1-based SUBSTR(value, start[, length]).
func (e *ValueEvaluator) evalSubstring(n *expr.Substring, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Value, record)
	if err != nil {
		return value.Null, err
	}
	startVal, err := e.Evaluate(n.Start, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() || startVal.IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("SUBSTR requires a STRING operand")
	}
	start, _ := startVal.AsInt64()
	runes := []rune(s)

	var length int64 = int64(len(runes))
	hasLength := false
	if n.Length != nil {
		lenVal, err := e.Evaluate(n.Length, record)
		if err != nil {
			return value.Null, err
		}
		if lenVal.IsNull() {
			return value.Null, nil
		}
		length, _ = lenVal.AsInt64()
		hasLength = true
	}

	from := start - 1
	if from < 0 {
		if hasLength {
			length += from
		}
		from = 0
	}
	if from >= int64(len(runes)) || length <= 0 {
		return value.String(""), nil
	}
	to := from + length
	if to > int64(len(runes)) {
		to = int64(len(runes))
	}
	return value.String(string(runes[from:to])), nil
}

// evalPosition implements 1-based POSITION(needle IN haystack), 0 if
// not found.
func (e *ValueEvaluator) evalPosition(n *expr.Position, record table.Record) (value.Value, error) {
	needleVal, err := e.Evaluate(n.Needle, record)
	if err != nil {
		return value.Null, err
	}
	haystackVal, err := e.Evaluate(n.Haystack, record)
	if err != nil {
		return value.Null, err
	}
	if needleVal.IsNull() || haystackVal.IsNull() {
		return value.Null, nil
	}
	needle, _ := needleVal.AsString()
	haystack, _ := haystackVal.AsString()
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return value.Int64(0), nil
	}
	return value.Int64(int64(len([]rune(haystack[:idx]))) + 1), nil
}

// evalOverlay replaces `[start, start+len)` of Value with Replacement.
func (e *ValueEvaluator) evalOverlay(n *expr.Overlay, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Value, record)
	if err != nil {
		return value.Null, err
	}
	repl, err := e.Evaluate(n.Replacement, record)
	if err != nil {
		return value.Null, err
	}
	startVal, err := e.Evaluate(n.Start, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() || repl.IsNull() || startVal.IsNull() {
		return value.Null, nil
	}
	s, _ := v.AsString()
	r, _ := repl.AsString()
	runes := []rune(s)
	start, _ := startVal.AsInt64()

	length := int64(len([]rune(r)))
	if n.Length != nil {
		lenVal, err := e.Evaluate(n.Length, record)
		if err != nil {
			return value.Null, err
		}
		if lenVal.IsNull() {
			return value.Null, nil
		}
		length, _ = lenVal.AsInt64()
	}

	from := start - 1
	if from < 0 {
		from = 0
	}
	if from > int64(len(runes)) {
		from = int64(len(runes))
	}
	to := from + length
	if to > int64(len(runes)) {
		to = int64(len(runes))
	}
	if to < from {
		to = from
	}
	out := string(runes[:from]) + r + string(runes[to:])
	return value.String(out), nil
}

// evalTrim implements character-set TRIM (default charset = space).
func (e *ValueEvaluator) evalTrim(n *expr.Trim, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Value, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("TRIM requires a STRING operand")
	}
	cutset := " "
	if n.Chars != nil {
		charsVal, err := e.Evaluate(n.Chars, record)
		if err != nil {
			return value.Null, err
		}
		if charsVal.IsNull() {
			return value.Null, nil
		}
		cutset, _ = charsVal.AsString()
	}
	switch n.Where {
	case expr.TrimLeading:
		return value.String(strings.TrimLeft(s, cutset)), nil
	case expr.TrimTrailing:
		return value.String(strings.TrimRight(s, cutset)), nil
	default:
		return value.String(strings.Trim(s, cutset)), nil
	}
}

// evalInterval constructs an INTERVAL value from a numeric amount and a
// leading field.
func (e *ValueEvaluator) evalInterval(n *expr.Interval, record table.Record) (value.Value, error) {
	amountVal, err := e.Evaluate(n.Amount, record)
	if err != nil {
		return value.Null, err
	}
	if amountVal.IsNull() {
		return value.Null, nil
	}
	amount, ok := amountVal.AsInt64()
	if !ok {
		f, fok := amountVal.AsFloat64()
		if !fok {
			return value.Null, yqerr.NewInvalidQuery("INTERVAL amount must be numeric")
		}
		amount = int64(f)
	}
	switch n.Field {
	case expr.FieldYear:
		return value.Interval(value.IntervalFromMonths(int32(amount) * 12)), nil
	case expr.FieldMonth:
		return value.Interval(value.IntervalFromMonths(int32(amount))), nil
	case expr.FieldDay:
		return value.Interval(value.IntervalFromDays(int32(amount))), nil
	case expr.FieldHour:
		return value.Interval(value.IntervalFromHours(amount)), nil
	case expr.FieldMinute:
		return value.Interval(value.NewInterval(0, 0, amount*60*value.MicrosPerSecond)), nil
	case expr.FieldSecond:
		return value.Interval(value.NewInterval(0, 0, amount*value.MicrosPerSecond)), nil
	case expr.FieldMicrosecond:
		return value.Interval(value.NewInterval(0, 0, amount)), nil
	default:
		return value.Null, yqerr.NewUnsupported("INTERVAL field %v", n.Field)
	}
}

// evalIsDistinctFrom implements NULL-sensitive inequality: both NULL
// means FALSE (not distinct); exactly one NULL means TRUE; otherwise
// plain value inequality.
func (e *ValueEvaluator) evalIsDistinctFrom(n *expr.IsDistinctFrom, record table.Record) (value.Value, error) {
	left, err := e.Evaluate(n.Left, record)
	if err != nil {
		return value.Null, err
	}
	right, err := e.Evaluate(n.Right, record)
	if err != nil {
		return value.Null, err
	}
	var distinct bool
	switch {
	case left.IsNull() && right.IsNull():
		distinct = false
	case left.IsNull() || right.IsNull():
		distinct = true
	default:
		distinct = !value.Equal(left, right)
	}
	return value.Bool(distinct != n.Negated), nil
}

// evalJsonAccess walks Path through a decoded JSON document, returning
// NULL on any missing or mistyped step.
func (e *ValueEvaluator) evalJsonAccess(n *expr.JsonAccess, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Source, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	cur, ok := v.AsJSON()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("JSON access requires a JSON operand")
	}
	for _, step := range n.Path {
		if step.IsKey {
			obj, ok := cur.(map[string]any)
			if !ok {
				return value.Null, nil
			}
			next, ok := obj[step.Key]
			if !ok {
				return value.Null, nil
			}
			cur = next
			continue
		}
		arr, ok := cur.([]any)
		if !ok || step.Index < 0 || step.Index >= len(arr) {
			return value.Null, nil
		}
		cur = arr[step.Index]
	}
	return value.JSON(cur), nil
}

// evalExtract implements EXTRACT(field FROM source).
func (e *ValueEvaluator) evalExtract(n *expr.Extract, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Source, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	t, err := timeOf(v)
	if err != nil {
		return value.Null, err
	}
	switch n.Field {
	case expr.FieldYear:
		return value.Int64(int64(t.Year())), nil
	case expr.FieldMonth:
		return value.Int64(int64(t.Month())), nil
	case expr.FieldDay:
		return value.Int64(int64(t.Day())), nil
	case expr.FieldHour:
		return value.Int64(int64(t.Hour())), nil
	case expr.FieldMinute:
		return value.Int64(int64(t.Minute())), nil
	case expr.FieldSecond:
		return value.Int64(int64(t.Second())), nil
	case expr.FieldMicrosecond:
		return value.Int64(int64(t.Nanosecond() / 1000)), nil
	case expr.FieldDayOfWeek:
		return value.Int64(int64(t.Weekday()) + 1), nil
	case expr.FieldDayOfYear:
		return value.Int64(int64(t.YearDay())), nil
	case expr.FieldWeek:
		_, week := t.ISOWeek()
		return value.Int64(int64(week)), nil
	case expr.FieldQuarter:
		return value.Int64(int64((t.Month()-1)/3) + 1), nil
	case expr.FieldDate:
		return value.DateVal(value.DateFromTime(t)), nil
	case expr.FieldTime:
		return value.TimeVal(value.TimeOfDayFromClock(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())), nil
	default:
		return value.Null, yqerr.NewUnsupported("EXTRACT field %v", n.Field)
	}
}

func timeOf(v value.Value) (time.Time, error) {
	switch v.Kind() {
	case value.KindDate:
		d, _ := v.AsDate()
		return d.Time(), nil
	case value.KindDateTime:
		dt, _ := v.AsDateTime()
		return dt.Time(), nil
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		return ts.Time(), nil
	default:
		return time.Time{}, yqerr.NewInvalidQuery("EXTRACT requires a temporal operand, got %s", v.Kind())
	}
}
