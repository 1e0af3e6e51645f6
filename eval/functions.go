package eval

import (
	"math"
	"strconv"
	"strings"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// evalScalarFunction dispatches enum-tagged builtins straight through
// evalEnumFunction; Custom(name) tries the
// user-function table, then the builtin name table, then falls back to
// user-function lookup once more before giving up as Unsupported.
func (e *ValueEvaluator) evalScalarFunction(n *expr.ScalarFunction, record table.Record) (value.Value, error) {
	if n.Func != expr.FuncCustom {
		args, err := e.evalArgs(n.Args, record)
		if err != nil {
			return value.Null, err
		}
		return e.evalEnumFunction(n.Func, n.Name, args)
	}

	upper := strings.ToUpper(n.Name)
	if fn, ok := e.userFunctions[upper]; ok {
		return e.invokeUserFunction(fn, n.Args, record)
	}
	if kind, ok := builtinNameTable[upper]; ok {
		args, err := e.evalArgs(n.Args, record)
		if err != nil {
			return value.Null, err
		}
		return e.evalEnumFunction(kind, n.Name, args)
	}
	if fn, ok := e.userFunctions[upper]; ok {
		return e.invokeUserFunction(fn, n.Args, record)
	}
	return value.Null, yqerr.NewUnsupported("unknown function %s", n.Name)
}

// builtinNameTable resolves Custom(name) calls to an enum variant,
// covering the common name-table families (COALESCE/IFNULL/NULLIF,
// string/math/date functions, ARRAY_*, MAP_*, JSON_*/LAX_*, RANGE_*, COLLATE). Anything
// outside this subset (KEYS.*, AEAD.*, NET.*, ST_*) falls through to
// Unsupported via the caller.
var builtinNameTable = map[string]expr.ScalarFuncKind{
	"COALESCE":            expr.FuncCoalesce,
	"IFNULL":              expr.FuncIfnull,
	"NULLIF":              expr.FuncNullif,
	"NULLIFZERO":          expr.FuncNullifzero,
	"LENGTH":              expr.FuncLength,
	"CHAR_LENGTH":         expr.FuncLength,
	"UPPER":               expr.FuncUpper,
	"LOWER":               expr.FuncLower,
	"CONCAT":              expr.FuncConcat,
	"SUBSTR":              expr.FuncSubstr,
	"SUBSTRING":           expr.FuncSubstr,
	"TRIM":                expr.FuncTrim,
	"ABS":                 expr.FuncAbs,
	"ROUND":               expr.FuncRound,
	"FLOOR":               expr.FuncFloor,
	"CEIL":                expr.FuncCeil,
	"CEILING":             expr.FuncCeil,
	"SQRT":                expr.FuncSqrt,
	"MOD":                 expr.FuncMod,
	"POW":                 expr.FuncPow,
	"POWER":               expr.FuncPow,
	"CURRENT_DATE":        expr.FuncCurrentDate,
	"CURRENT_TIMESTAMP":   expr.FuncCurrentTimestamp,
	"DATETIME_ADD":        expr.FuncDatetimeAdd,
	"DATETIME_SUB":        expr.FuncDatetimeSub,
	"DATETIME_DIFF":       expr.FuncDatetimeDiff,
	"TIMESTAMP_ADD":       expr.FuncTimestampAdd,
	"TIMESTAMP_SUB":       expr.FuncTimestampSub,
	"TIMESTAMP_DIFF":      expr.FuncTimestampDiff,
	"TIME_ADD":            expr.FuncTimeAdd,
	"TIME_SUB":            expr.FuncTimeSub,
	"TIME_DIFF":           expr.FuncTimeDiff,
	"ARRAY_SLICE":         expr.FuncArraySlice,
	"ARRAY_FIRST":         expr.FuncArrayFirst,
	"ARRAY_LAST":          expr.FuncArrayLast,
	"MAP_KEYS":            expr.FuncMapKeys,
	"MAP_VALUES":          expr.FuncMapValues,
	"JSON_EXTRACT":        expr.FuncJSONExtract,
	"JSON_EXTRACT_SCALAR": expr.FuncJSONExtractScalar,
	"LAX_BOOL":            expr.FuncLaxBool,
	"LAX_INT64":           expr.FuncLaxInt64,
	"LAX_FLOAT64":         expr.FuncLaxFloat64,
	"LAX_STRING":          expr.FuncLaxString,
	"COLLATE":             expr.FuncCollate,
	"RANGE_CONTAINS":      expr.FuncRangeContains,
	"RANGE_OVERLAPS":      expr.FuncRangeOverlaps,
	"RANGE_INTERSECT":     expr.FuncRangeIntersect,
	"HLL_COUNT.EXTRACT":   expr.FuncHLLCountExtract,
}

func (e *ValueEvaluator) evalArgs(nodes []expr.Node, record table.Record) ([]value.Value, error) {
	out := make([]value.Value, len(nodes))
	for i, n := range nodes {
		v, err := e.Evaluate(n, record)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *ValueEvaluator) invokeUserFunction(fn UserFunction, argNodes []expr.Node, record table.Record) (value.Value, error) {
	args, err := e.evalArgs(argNodes, record)
	if err != nil {
		return value.Null, err
	}
	switch fn.Kind {
	case UserFunctionSQL:
		vars := make(map[string]value.Value, len(fn.Params))
		for i, p := range fn.Params {
			if i < len(args) {
				vars[p] = args[i]
			}
		}
		sub := New(e.schema).WithVariables(vars).WithSystemVariables(e.systemVariables).WithUserFunctions(e.userFunctions).WithExternalRuntime(e.external)
		return sub.Evaluate(fn.SQLBody, record)
	case UserFunctionSQLQuery:
		return value.Null, yqerr.NewUnsupported("SQL query-bodied user functions are not supported")
	case UserFunctionExternal:
		if e.external == nil {
			return value.Null, yqerr.NewUnsupported("no external runtime registered for language %q", fn.Language)
		}
		return e.external.Invoke(fn.Language, fn.Source, args)
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled user function kind %v", fn.Kind)
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null
	}
	return args[i]
}

// evalEnumFunction dispatches the enum-tagged builtins; see the
// builtinNameTable doc comment for the name-table scope.
func (e *ValueEvaluator) evalEnumFunction(kind expr.ScalarFuncKind, name string, args []value.Value) (value.Value, error) {
	switch kind {
	case expr.FuncCoalesce:
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.Null, nil
	case expr.FuncIfnull:
		if !arg(args, 0).IsNull() {
			return arg(args, 0), nil
		}
		return arg(args, 1), nil
	case expr.FuncNullif:
		a, b := arg(args, 0), arg(args, 1)
		if !a.IsNull() && !b.IsNull() && value.Compare(a, b) == 0 {
			return value.Null, nil
		}
		return a, nil
	case expr.FuncNullifzero:
		a := arg(args, 0)
		if i, ok := a.AsInt64(); ok && i == 0 {
			return value.Null, nil
		}
		if f, ok := a.AsFloat64(); ok && f == 0 {
			return value.Null, nil
		}
		return a, nil
	case expr.FuncLength:
		return funcLength(arg(args, 0))
	case expr.FuncUpper:
		return funcCase(arg(args, 0), strings.ToUpper)
	case expr.FuncLower:
		return funcCase(arg(args, 0), strings.ToLower)
	case expr.FuncConcat:
		return funcConcatAll(args)
	case expr.FuncTrim:
		return funcTrimFn(args)
	case expr.FuncAbs:
		return funcAbs(arg(args, 0))
	case expr.FuncRound:
		return funcRound(args)
	case expr.FuncFloor:
		return funcMathUnary(arg(args, 0), math.Floor)
	case expr.FuncCeil:
		return funcMathUnary(arg(args, 0), math.Ceil)
	case expr.FuncSqrt:
		return funcMathUnary(arg(args, 0), math.Sqrt)
	case expr.FuncMod:
		return evalArithmetic(expr.OpMod, arg(args, 0), arg(args, 1))
	case expr.FuncPow:
		return funcPow(arg(args, 0), arg(args, 1))
	case expr.FuncArraySlice:
		return funcArraySlice(args)
	case expr.FuncArrayFirst:
		return funcArrayEdge(arg(args, 0), true)
	case expr.FuncArrayLast:
		return funcArrayEdge(arg(args, 0), false)
	case expr.FuncMapKeys:
		return funcMapField(arg(args, 0), "keys")
	case expr.FuncMapValues:
		return funcMapField(arg(args, 0), "values")
	case expr.FuncLaxBool:
		return funcLaxBool(arg(args, 0))
	case expr.FuncLaxInt64:
		return funcLaxNumeric(arg(args, 0), true)
	case expr.FuncLaxFloat64:
		return funcLaxNumeric(arg(args, 0), false)
	case expr.FuncLaxString:
		return funcLax(arg(args, 0), value.String)
	case expr.FuncCollate:
		if len(args) != 2 {
			return value.Null, yqerr.NewInvalidQuery("COLLATE requires exactly 2 arguments")
		}
		return arg(args, 0), nil
	case expr.FuncRangeContains:
		r, ok := arg(args, 0).AsRange()
		if !ok {
			return value.Null, yqerr.NewInvalidQuery("RANGE_CONTAINS requires a RANGE first argument")
		}
		return value.Bool(r.Contains(arg(args, 1))), nil
	case expr.FuncRangeOverlaps:
		r1, ok1 := arg(args, 0).AsRange()
		r2, ok2 := arg(args, 1).AsRange()
		if !ok1 || !ok2 {
			return value.Null, yqerr.NewInvalidQuery("RANGE_OVERLAPS requires two RANGE arguments")
		}
		return value.Bool(r1.Overlaps(r2)), nil
	case expr.FuncRangeIntersect:
		r1, ok1 := arg(args, 0).AsRange()
		r2, ok2 := arg(args, 1).AsRange()
		if !ok1 || !ok2 {
			return value.Null, yqerr.NewInvalidQuery("RANGE_INTERSECT requires two RANGE arguments")
		}
		out, ok := r1.Intersect(r2)
		if !ok {
			return value.Null, nil
		}
		return value.RangeOf(out), nil
	case expr.FuncHLLCountExtract:
		return funcHLLExtract(arg(args, 0))
	case expr.FuncCurrentDate:
		return funcCurrentDate(), nil
	case expr.FuncCurrentTimestamp:
		return funcCurrentTimestamp(), nil
	case expr.FuncDatetimeAdd, expr.FuncTimestampAdd, expr.FuncTimeAdd:
		return funcAddInterval(arg(args, 0), arg(args, 1), 1)
	case expr.FuncDatetimeSub, expr.FuncTimestampSub, expr.FuncTimeSub:
		return funcAddInterval(arg(args, 0), arg(args, 1), -1)
	case expr.FuncDatetimeDiff, expr.FuncTimestampDiff, expr.FuncTimeDiff:
		return funcTemporalDiff(args)
	case expr.FuncJSONExtract:
		return funcJSONExtract(args, false)
	case expr.FuncJSONExtractScalar:
		return funcJSONExtract(args, true)
	case expr.FuncKeysNew, expr.FuncAeadEncrypt, expr.FuncAeadDecrypt,
		expr.FuncNetHost, expr.FuncNetIPFromString,
		expr.FuncSTAsText, expr.FuncSTDistance:
		return value.Null, yqerr.NewUnsupported("function %s is not implemented", name)
	case expr.FuncSubstr:
		return funcSubstrDirect(args)
	default:
		return value.Null, yqerr.NewUnsupported("function %s is not implemented", name)
	}
}

func funcLength(v value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return value.Int64(int64(len([]rune(s)))), nil
	case value.KindBytes:
		b, _ := v.AsBytes()
		return value.Int64(int64(len(b))), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("LENGTH requires a STRING or BYTES operand")
	}
}

func funcCase(v value.Value, fn func(string) string) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("requires a STRING operand")
	}
	return value.String(fn(s)), nil
}

func funcConcatAll(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return value.Null, nil
		}
		s, ok := a.AsString()
		if !ok {
			return value.Null, yqerr.NewInvalidQuery("CONCAT requires STRING arguments")
		}
		b.WriteString(s)
	}
	return value.String(b.String()), nil
}

func funcTrimFn(args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("TRIM requires a STRING operand")
	}
	cutset := " "
	if len(args) > 1 {
		if args[1].IsNull() {
			return value.Null, nil
		}
		cutset, _ = args[1].AsString()
	}
	return value.String(strings.Trim(s, cutset)), nil
}

func funcAbs(v value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	switch v.Kind() {
	case value.KindInt64:
		i, _ := v.AsInt64()
		if i < 0 {
			i = -i
		}
		return value.Int64(i), nil
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		return value.Float64(math.Abs(f)), nil
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		return value.Numeric(d.Abs()), nil
	default:
		return value.Null, yqerr.NewInvalidQuery("ABS requires a numeric operand")
	}
}

func funcRound(args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.IsNull() {
		return value.Null, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("ROUND requires a numeric operand")
	}
	digits := 0
	if len(args) > 1 && !args[1].IsNull() {
		d, _ := args[1].AsInt64()
		digits = int(d)
	}
	mul := math.Pow(10, float64(digits))
	return value.Float64(math.Round(f*mul) / mul), nil
}

func funcMathUnary(v value.Value, fn func(float64) float64) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("requires a numeric operand")
	}
	return value.Float64(fn(f)), nil
}

func funcPow(base, exp value.Value) (value.Value, error) {
	if base.IsNull() || exp.IsNull() {
		return value.Null, nil
	}
	bf, bok := toFloat(base)
	ef, eok := toFloat(exp)
	if !bok || !eok {
		return value.Null, yqerr.NewInvalidQuery("POW requires numeric operands")
	}
	return value.Float64(math.Pow(bf, ef)), nil
}

func funcArraySlice(args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.IsNull() {
		return value.Null, nil
	}
	elems, ok := v.AsArray()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("ARRAY_SLICE requires an ARRAY operand")
	}
	start, _ := arg(args, 1).AsInt64()
	end, _ := arg(args, 2).AsInt64()
	n := int64(len(elems))
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if start > end || start >= n {
		return value.ArrayOf(nil), nil
	}
	return value.ArrayOf(append([]value.Value(nil), elems[start:end+1]...)), nil
}

func funcArrayEdge(v value.Value, first bool) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	elems, ok := v.AsArray()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("requires an ARRAY operand")
	}
	if len(elems) == 0 {
		return value.Null, nil
	}
	if first {
		return elems[0], nil
	}
	return elems[len(elems)-1], nil
}

// funcMapField reads the "keys"/"values" member of the engine's MAP
// representation: a STRUCT{keys: ARRAY<K>, values: ARRAY<V>}, since the
// value model has no dedicated MAP kind (mirroring BigQuery, which has
// none either).
func funcMapField(v value.Value, field string) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	entries, ok := v.AsStruct()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("requires a MAP (STRUCT{keys,values}) operand")
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, field) {
			return e.Value, nil
		}
	}
	return value.ArrayOf(nil), nil
}

func funcLax(v value.Value, wrap func(string) value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	j, ok := v.AsJSON()
	if !ok {
		return value.Null, nil
	}
	s, ok := j.(string)
	if !ok {
		return value.Null, nil
	}
	return wrap(s), nil
}

func funcLaxBool(v value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	j, ok := v.AsJSON()
	if !ok {
		return value.Null, nil
	}
	switch t := j.(type) {
	case bool:
		return value.Bool(t), nil
	case string:
		switch strings.ToLower(t) {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		}
	}
	return value.Null, nil
}

func funcLaxNumeric(v value.Value, wantInt bool) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	j, ok := v.AsJSON()
	if !ok {
		return value.Null, nil
	}
	f, ok := j.(float64)
	if !ok {
		if s, sok := j.(string); sok {
			if parsed, err := strconv.ParseFloat(s, 64); err == nil {
				f = parsed
			} else {
				return value.Null, nil
			}
		} else {
			return value.Null, nil
		}
	}
	if wantInt {
		return value.Int64(int64(f)), nil
	}
	return value.Float64(f), nil
}

// funcHLLExtract parses the engine's sketch text representation, which
// embeds the cardinality estimate as an "n<N>" segment.
func funcHLLExtract(v value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("HLL_COUNT.EXTRACT requires a STRING sketch")
	}
	start := strings.Index(s, "n<")
	if start < 0 {
		return value.Null, yqerr.NewInvalidQuery("malformed HLL sketch")
	}
	start += 2
	end := strings.Index(s[start:], ">")
	if end < 0 {
		return value.Null, yqerr.NewInvalidQuery("malformed HLL sketch")
	}
	n, err := strconv.ParseInt(s[start:start+end], 10, 64)
	if err != nil {
		return value.Null, yqerr.NewInvalidQuery("malformed HLL sketch")
	}
	return value.Int64(n), nil
}

// funcSubstrDirect handles SUBSTR/SUBSTRING invoked as a Custom scalar
// function call rather than through the dedicated expr.Substring node.
func funcSubstrDirect(args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.IsNull() || arg(args, 1).IsNull() {
		return value.Null, nil
	}
	s, ok := v.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("SUBSTR requires a STRING operand")
	}
	start, _ := arg(args, 1).AsInt64()
	runes := []rune(s)
	length := int64(len(runes))
	hasLength := len(args) > 2
	if hasLength {
		if args[2].IsNull() {
			return value.Null, nil
		}
		length, _ = args[2].AsInt64()
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
