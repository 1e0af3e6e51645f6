// Package eval implements the expression evaluator: given a
// schema and a row, it walks an expr.Node tree and produces a
// value.Value, with full SQL three-valued NULL propagation, BigQuery
// cast rules, and a pluggable hook for user-defined function bodies.
package eval

import (
	"strings"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// UserFunctionKind tags how a user-registered function's body should be
// invoked.
type UserFunctionKind int

const (
	// UserFunctionSQL re-enters the evaluator with Params bound to Args
	// as variables, evaluating SQLBody as a scalar expression.
	UserFunctionSQL UserFunctionKind = iota
	// UserFunctionSQLQuery wraps a full query body; unsupported by this
	// evaluator.
	UserFunctionSQLQuery
	// UserFunctionExternal dispatches to an ExternalRuntime (JS/Python
	// bodies).
	UserFunctionExternal
)

// UserFunction is one entry of the evaluator's user-function table,
// populated by the session from the catalog's function map.
type UserFunction struct {
	Params     []string
	ReturnType value.DataType
	Kind       UserFunctionKind
	SQLBody    expr.Node
	Language   string // "js", "python", ... — meaningful only for UserFunctionExternal
	Source     string // external function body text
}

// ExternalRuntime is the pluggable invocation hook for non-SQL UDF
// bodies; the evaluator only needs this invocation hook, never a
// language runtime of its own.
type ExternalRuntime interface {
	Invoke(language, source string, args []value.Value) (value.Value, error)
}

// ValueEvaluator is constructed via New(schema) and the With* builder
// methods; every reference is borrowed, and the evaluator itself holds
// no mutable state.
type ValueEvaluator struct {
	schema          *table.Schema
	variables       map[string]value.Value
	systemVariables map[string]value.Value
	userFunctions   map[string]UserFunction
	external        ExternalRuntime
}

// New builds an evaluator bound to schema with empty variable/function
// tables.
func New(schema *table.Schema) *ValueEvaluator {
	return &ValueEvaluator{schema: schema}
}

// WithVariables attaches caller-supplied variable bindings, looked up by
// uppercased name.
func (e *ValueEvaluator) WithVariables(vars map[string]value.Value) *ValueEvaluator {
	e.variables = upperKeys(vars)
	return e
}

// WithSystemVariables attaches system (`@@...`) variable bindings.
func (e *ValueEvaluator) WithSystemVariables(vars map[string]value.Value) *ValueEvaluator {
	e.systemVariables = upperKeys(vars)
	return e
}

// WithUserFunctions attaches the user-function table, looked up by
// uppercased name.
func (e *ValueEvaluator) WithUserFunctions(fns map[string]UserFunction) *ValueEvaluator {
	m := make(map[string]UserFunction, len(fns))
	for k, v := range fns {
		m[strings.ToUpper(k)] = v
	}
	e.userFunctions = m
	return e
}

// WithExternalRuntime attaches the JS/Python invocation hook.
func (e *ValueEvaluator) WithExternalRuntime(rt ExternalRuntime) *ValueEvaluator {
	e.external = rt
	return e
}

func upperKeys(m map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// Evaluate dispatches node against record, implementing the full node
// dispatch table.
func (e *ValueEvaluator) Evaluate(node expr.Node, record table.Record) (value.Value, error) {
	switch n := node.(type) {
	case *expr.Literal:
		return n.Value, nil
	case *expr.Column:
		return e.evalColumn(n, record)
	case *expr.Binary:
		return e.evalBinary(n, record)
	case *expr.Unary:
		return e.evalUnary(n, record)
	case *expr.ScalarFunction:
		return e.evalScalarFunction(n, record)
	case *expr.IsNull:
		v, err := e.Evaluate(n.Operand, record)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(v.IsNull() != n.Negated), nil
	case *expr.Cast:
		return e.evalCast(n, record)
	case *expr.Case:
		return e.evalCase(n, record)
	case *expr.Between:
		return e.evalBetween(n, record)
	case *expr.Like:
		return e.evalLike(n, record)
	case *expr.InList:
		return e.evalInList(n, record)
	case *expr.InUnnest:
		return e.evalInUnnest(n, record)
	case *expr.Extract:
		return e.evalExtract(n, record)
	case *expr.Substring:
		return e.evalSubstring(n, record)
	case *expr.Array:
		return e.evalArray(n, record)
	case *expr.Struct:
		return e.evalStruct(n, record)
	case *expr.ArrayAccess:
		return e.evalArrayAccess(n, record)
	case *expr.StructAccess:
		return e.evalStructAccess(n, record)
	case *expr.Alias:
		return e.Evaluate(n.Operand, record)
	case *expr.TypedString:
		return e.evalTypedString(n)
	case *expr.Position:
		return e.evalPosition(n, record)
	case *expr.Overlay:
		return e.evalOverlay(n, record)
	case *expr.Trim:
		return e.evalTrim(n, record)
	case *expr.Interval:
		return e.evalInterval(n, record)
	case *expr.Variable:
		return e.evalVariable(n)
	case *expr.IsDistinctFrom:
		return e.evalIsDistinctFrom(n, record)
	case *expr.JsonAccess:
		return e.evalJsonAccess(n, record)
	default:
		return value.Null, yqerr.NewInternal("eval: unhandled expression node %T", node)
	}
}

// evalColumn resolves an identifier: index hint, then case-insensitive
// schema scan, then variables, then struct-valued-variable field.
func (e *ValueEvaluator) evalColumn(n *expr.Column, record table.Record) (value.Value, error) {
	if n.Index >= 0 && n.Index < record.Len() {
		return record.Get(n.Index), nil
	}
	if e.schema != nil {
		if idx := e.schema.IndexOf(n.Name); idx >= 0 {
			return record.Get(idx), nil
		}
	}
	upper := strings.ToUpper(n.Name)
	if e.variables != nil {
		if v, ok := e.variables[upper]; ok {
			return v, nil
		}
	}
	if n.Table != "" && e.variables != nil {
		if sv, ok := e.variables[strings.ToUpper(n.Table)]; ok {
			if entries, ok := sv.AsStruct(); ok {
				for _, f := range entries {
					if strings.EqualFold(f.Name, n.Name) {
						return f.Value, nil
					}
				}
			}
		}
	}
	return value.Null, &yqerr.ColumnNotFoundError{Name: n.Name}
}

func (e *ValueEvaluator) evalVariable(n *expr.Variable) (value.Value, error) {
	upper := strings.ToUpper(n.Name)
	if e.variables != nil {
		if v, ok := e.variables[upper]; ok {
			return v, nil
		}
	}
	if e.systemVariables != nil {
		if v, ok := e.systemVariables[upper]; ok {
			return v, nil
		}
	}
	return value.Null, nil
}
