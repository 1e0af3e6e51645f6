package eval

import (
	"strings"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

func (e *ValueEvaluator) evalBinary(n *expr.Binary, record table.Record) (value.Value, error) {
	switch n.Op {
	case expr.OpAnd:
		return e.evalAnd(n, record)
	case expr.OpOr:
		return e.evalOr(n, record)
	}

	left, err := e.Evaluate(n.Left, record)
	if err != nil {
		return value.Null, err
	}
	right, err := e.Evaluate(n.Right, record)
	if err != nil {
		return value.Null, err
	}

	switch n.Op {
	case expr.OpAdd, expr.OpSub, expr.OpMul, expr.OpDiv, expr.OpMod:
		return evalArithmetic(n.Op, left, right)
	case expr.OpEq, expr.OpNotEq, expr.OpLt, expr.OpLtEq, expr.OpGt, expr.OpGtEq:
		return e.evalComparison(n, left, right)
	case expr.OpConcat:
		return evalConcat(left, right)
	case expr.OpBitAnd, expr.OpBitOr, expr.OpBitXor, expr.OpShiftLeft, expr.OpShiftRight:
		return evalBitwise(n.Op, left, right)
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled binary operator %v", n.Op)
	}
}

// evalAnd implements Kleene AND: FALSE dominates regardless of the
// other operand's nullness; otherwise NULL propagates.
func (e *ValueEvaluator) evalAnd(n *expr.Binary, record table.Record) (value.Value, error) {
	left, err := e.Evaluate(n.Left, record)
	if err != nil {
		return value.Null, err
	}
	if lb, ok := left.AsBool(); ok && !lb {
		return value.Bool(false), nil
	}
	right, err := e.Evaluate(n.Right, record)
	if err != nil {
		return value.Null, err
	}
	if rb, ok := right.AsBool(); ok && !rb {
		return value.Bool(false), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	lb, lok := left.AsBool()
	rb, rok := right.AsBool()
	if !lok || !rok {
		return value.Null, yqerr.NewInvalidQuery("AND requires boolean operands")
	}
	return value.Bool(lb && rb), nil
}

// evalOr implements Kleene OR: TRUE dominates; otherwise NULL propagates.
func (e *ValueEvaluator) evalOr(n *expr.Binary, record table.Record) (value.Value, error) {
	left, err := e.Evaluate(n.Left, record)
	if err != nil {
		return value.Null, err
	}
	if lb, ok := left.AsBool(); ok && lb {
		return value.Bool(true), nil
	}
	right, err := e.Evaluate(n.Right, record)
	if err != nil {
		return value.Null, err
	}
	if rb, ok := right.AsBool(); ok && rb {
		return value.Bool(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	lb, lok := left.AsBool()
	rb, rok := right.AsBool()
	if !lok || !rok {
		return value.Null, yqerr.NewInvalidQuery("OR requires boolean operands")
	}
	return value.Bool(lb || rb), nil
}

// arithKind classifies an operand for the arithmetic type hierarchy.
type arithKind int

const (
	arithNone arithKind = iota
	arithInt
	arithFloat
	arithDecimal
)

func classify(v value.Value) arithKind {
	switch v.Kind() {
	case value.KindInt64:
		return arithInt
	case value.KindFloat64:
		return arithFloat
	case value.KindNumeric, value.KindBigNumeric:
		return arithDecimal
	default:
		return arithNone
	}
}

func evalArithmetic(op expr.BinaryOp, left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	lk, rk := classify(left), classify(right)
	if lk == arithNone || rk == arithNone {
		return value.Null, yqerr.NewInvalidQuery("arithmetic operator requires numeric operands")
	}

	if lk == arithInt && rk == arithInt {
		li, _ := left.AsInt64()
		ri, _ := right.AsInt64()
		return intArith(op, li, ri)
	}

	if lk == arithDecimal && rk == arithDecimal {
		// NUMERIC/NUMERIC reduces to FLOAT64; division precision is
		// explicitly not promised at NUMERIC scale.
		lf, _ := left.AsDecimal()
		rf, _ := right.AsDecimal()
		lff, _ := lf.Float64()
		rff, _ := rf.Float64()
		return floatArith(op, lff, rff)
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return value.Null, yqerr.NewInvalidQuery("arithmetic operator requires numeric operands")
	}
	return floatArith(op, lf, rf)
}

func toFloat(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.KindInt64:
		i, _ := v.AsInt64()
		return float64(i), true
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		return f, true
	case value.KindNumeric, value.KindBigNumeric:
		d, _ := v.AsDecimal()
		f, _ := d.Float64()
		return f, true
	default:
		return 0, false
	}
}

func intArith(op expr.BinaryOp, l, r int64) (value.Value, error) {
	switch op {
	case expr.OpAdd:
		return value.Int64(l + r), nil
	case expr.OpSub:
		return value.Int64(l - r), nil
	case expr.OpMul:
		return value.Int64(l * r), nil
	case expr.OpDiv:
		if r == 0 {
			return value.Null, yqerr.NewInvalidQuery("division by zero")
		}
		return value.Int64(l / r), nil
	case expr.OpMod:
		if r == 0 {
			return value.Null, yqerr.NewInvalidQuery("division by zero")
		}
		return value.Int64(l % r), nil
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled int arithmetic op %v", op)
	}
}

func floatArith(op expr.BinaryOp, l, r float64) (value.Value, error) {
	switch op {
	case expr.OpAdd:
		return value.Float64(l + r), nil
	case expr.OpSub:
		return value.Float64(l - r), nil
	case expr.OpMul:
		return value.Float64(l * r), nil
	case expr.OpDiv:
		return value.Float64(l / r), nil
	case expr.OpMod:
		return value.Float64(modFloat(l, r)), nil
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled float arithmetic op %v", op)
	}
}

func modFloat(l, r float64) float64 {
	if r == 0 {
		return 0
	}
	q := l - r*float64(int64(l/r))
	return q
}

func evalConcat(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	ls, lok := left.AsString()
	rs, rok := right.AsString()
	if !lok || !rok {
		return value.Null, yqerr.NewInvalidQuery("|| requires string operands")
	}
	return value.String(ls + rs), nil
}

func evalBitwise(op expr.BinaryOp, left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	li, lok := left.AsInt64()
	ri, rok := right.AsInt64()
	if !lok || !rok {
		return value.Null, yqerr.NewInvalidQuery("bitwise operator requires INT64 operands")
	}
	switch op {
	case expr.OpBitAnd:
		return value.Int64(li & ri), nil
	case expr.OpBitOr:
		return value.Int64(li | ri), nil
	case expr.OpBitXor:
		return value.Int64(li ^ ri), nil
	case expr.OpShiftLeft:
		if ri < 0 || ri >= 64 {
			return value.Int64(0), nil
		}
		return value.Int64(li << uint(ri)), nil
	case expr.OpShiftRight:
		if ri < 0 || ri >= 64 {
			if li < 0 {
				return value.Int64(-1), nil
			}
			return value.Int64(0), nil
		}
		return value.Int64(li >> uint(ri)), nil
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled bitwise op %v", op)
	}
}

// evalComparison implements `=, <>, <, <=, >, >=` with NULL propagation
// and collation-aware string equality. `<=` is derived from `(< OR =)`
// with NULL dominance, equivalent here to a direct three-way compare.
func (e *ValueEvaluator) evalComparison(n *expr.Binary, left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	if n.Op == expr.OpEq || n.Op == expr.OpNotEq {
		if collation := e.collationOf(n.Left, n.Right); isCaseInsensitive(collation) {
			ls, lok := left.AsString()
			rs, rok := right.AsString()
			if lok && rok {
				eq := strings.EqualFold(ls, rs)
				if n.Op == expr.OpNotEq {
					eq = !eq
				}
				return value.Bool(eq), nil
			}
		}
	}
	cmp := value.Compare(left, right)
	switch n.Op {
	case expr.OpEq:
		return value.Bool(cmp == 0), nil
	case expr.OpNotEq:
		return value.Bool(cmp != 0), nil
	case expr.OpLt:
		return value.Bool(cmp < 0), nil
	case expr.OpLtEq:
		return value.Bool(cmp <= 0), nil
	case expr.OpGt:
		return value.Bool(cmp > 0), nil
	case expr.OpGtEq:
		return value.Bool(cmp >= 0), nil
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled comparison op %v", n.Op)
	}
}

// collationOf resolves the schema-declared collation of either side of a
// comparison when that side is a direct column reference; anything else
// (expressions, literals) carries no collation.
func (e *ValueEvaluator) collationOf(left, right expr.Node) string {
	if c := e.columnCollation(left); c != "" {
		return c
	}
	return e.columnCollation(right)
}

func (e *ValueEvaluator) columnCollation(node expr.Node) string {
	col, ok := node.(*expr.Column)
	if !ok || e.schema == nil {
		return ""
	}
	if f, ok := e.schema.Lookup(col.Name); ok {
		return f.Collation
	}
	return ""
}

func isCaseInsensitive(collation string) bool {
	return strings.HasSuffix(strings.ToLower(collation), ":ci")
}

func (e *ValueEvaluator) evalUnary(n *expr.Unary, record table.Record) (value.Value, error) {
	v, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	switch n.Op {
	case expr.UnaryNot:
		b, ok := v.AsBool()
		if !ok {
			return value.Null, yqerr.NewInvalidQuery("NOT requires a boolean operand")
		}
		return value.Bool(!b), nil
	case expr.UnaryPlus:
		return v, nil
	case expr.UnaryNeg:
		switch v.Kind() {
		case value.KindInt64:
			i, _ := v.AsInt64()
			return value.Int64(-i), nil
		case value.KindFloat64:
			f, _ := v.AsFloat64()
			return value.Float64(-f), nil
		case value.KindNumeric:
			d, _ := v.AsDecimal()
			return value.Numeric(d.Neg()), nil
		case value.KindBigNumeric:
			d, _ := v.AsDecimal()
			return value.BigNumeric(d.Neg()), nil
		default:
			return value.Null, yqerr.NewInvalidQuery("unary - requires a numeric operand")
		}
	case expr.UnaryBitNot:
		i, ok := v.AsInt64()
		if !ok {
			return value.Null, yqerr.NewInvalidQuery("~ requires an INT64 operand")
		}
		return value.Int64(^i), nil
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled unary op %v", n.Op)
	}
}
