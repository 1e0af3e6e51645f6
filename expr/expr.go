// Package expr defines the expression tree contract consumed by the
// evaluator: a closed set of node types satisfying the
// Node interface. Parsing and planning are non-goals of this engine —
// a node tree arrives fully built from an external planner — so this
// package only needs to give that tree a concrete Go shape to compile
// the evaluator against.
package expr

import "yachtsql/value"

// Node is the closed set of expression tree variants. Implementations
// are pointer types whose only job is to let package eval switch on a
// concrete type; Node itself carries no behavior.
type Node interface {
	exprNode()
}

// Literal materializes directly to a value.Value at evaluation time.
type Literal struct {
	Value value.Value
}

// Column resolves against the active schema/record, with a fast-path
// positional index hint the planner may supply.
type Column struct {
	Name  string
	Index int    // -1 when no hint is available
	Table string // non-empty when qualified, e.g. struct-valued variable lookup
}

// BinaryOp enumerates every infix operator the evaluator understands.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpConcat
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
)

// Binary is a two-operand operator application.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// UnaryOp enumerates the supported prefix operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryPlus
	UnaryBitNot
)

// Unary is a single-operand operator application.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

// ScalarFuncKind enumerates the built-in functions dispatched through a
// single vtable-style call; Custom carries a name for the user-function/
// builtin-name-table fallback path.
type ScalarFuncKind int

const (
	FuncCustom ScalarFuncKind = iota
	FuncCoalesce
	FuncIfnull
	FuncNullif
	FuncNullifzero
	FuncLength
	FuncUpper
	FuncLower
	FuncConcat
	FuncSubstr
	FuncTrim
	FuncAbs
	FuncRound
	FuncFloor
	FuncCeil
	FuncSqrt
	FuncMod
	FuncPow
	FuncCurrentDate
	FuncCurrentTimestamp
	FuncDatetimeAdd
	FuncDatetimeSub
	FuncDatetimeDiff
	FuncTimestampAdd
	FuncTimestampSub
	FuncTimestampDiff
	FuncTimeAdd
	FuncTimeSub
	FuncTimeDiff
	FuncArraySlice
	FuncArrayFirst
	FuncArrayLast
	FuncMapKeys
	FuncMapValues
	FuncJSONExtract
	FuncJSONExtractScalar
	FuncLaxBool
	FuncLaxInt64
	FuncLaxFloat64
	FuncLaxString
	FuncCollate
	FuncRangeContains
	FuncRangeOverlaps
	FuncRangeIntersect
	FuncHLLCountExtract
	FuncKeysNew
	FuncAeadEncrypt
	FuncAeadDecrypt
	FuncNetHost
	FuncNetIPFromString
	FuncSTAsText
	FuncSTDistance
)

// ScalarFunction applies a builtin or user-registered function to Args.
// Name carries the original-cased identifier for Custom (and is
// informational for enum variants), used for the uppercase name-table
// lookup.
type ScalarFunction struct {
	Func ScalarFuncKind
	Name string
	Args []Node
}

// IsNull is `IS [NOT] NULL`.
type IsNull struct {
	Operand Node
	Negated bool
}

// Cast is `CAST`/`SAFE_CAST`.
type Cast struct {
	Operand Node
	Target  value.DataType
	Safe    bool
}

// CaseWhen is one WHEN/THEN arm of a Case node.
type CaseWhen struct {
	When Node
	Then Node
}

// Case covers both SIMPLE CASE (Operand != nil: compare Operand to each
// WHEN value) and SEARCHED CASE (Operand == nil: evaluate each WHEN as a
// boolean).
type Case struct {
	Operand Node // nil for SEARCHED CASE
	Whens   []CaseWhen
	Else    Node // nil means NULL on no match
}

// Between is three-way NULL-propagating `[NOT] BETWEEN low AND high`.
type Between struct {
	Operand Node
	Low     Node
	High    Node
	Negated bool
}

// Like is `[NOT] LIKE`, optionally case-insensitive.
type Like struct {
	Operand         Node
	Pattern         Node
	Negated         bool
	CaseInsensitive bool
}

// InList is `[NOT] IN (a, b, c, ...)`.
type InList struct {
	Operand Node
	List    []Node
	Negated bool
}

// InUnnest is `[NOT] IN UNNEST(array_expr)`.
type InUnnest struct {
	Operand Node
	Array   Node
	Negated bool
}

// DateTimeField enumerates the EXTRACT/INTERVAL leading field set.
type DateTimeField int

const (
	FieldYear DateTimeField = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
	FieldMicrosecond
	FieldDayOfWeek
	FieldDayOfYear
	FieldWeek
	FieldQuarter
	FieldDate
	FieldTime
)

// Extract is `EXTRACT(field FROM source)`.
type Extract struct {
	Field  DateTimeField
	Source Node
}

// Substring is 1-based `SUBSTR(value, start[, length])`.
type Substring struct {
	Value  Node
	Start  Node
	Length Node // nil means "to the end"
}

// Array constructs an ARRAY<...> literal from its elements.
type Array struct {
	Elements []Node
}

// StructField is one named member of a Struct construction; an empty
// Name means the evaluator assigns the positional `_fieldN` default.
type StructField struct {
	Name  string
	Value Node
}

// Struct constructs a STRUCT<...> literal.
type Struct struct {
	Fields []StructField
}

// ArrayAccessMode selects the OFFSET/ORDINAL/SAFE_* indexing semantics;
// Plain is the default `arr[i]` form (1-based, NULL on OOB).
type ArrayAccessMode int

const (
	AccessPlain ArrayAccessMode = iota
	AccessOffset
	AccessOrdinal
	AccessSafeOffset
	AccessSafeOrdinal
)

// ArrayAccess is `arr[mode(index)]`.
type ArrayAccess struct {
	Array Node
	Index Node
	Mode  ArrayAccessMode
}

// StructAccess is case-insensitive field projection off a STRUCT value.
type StructAccess struct {
	Operand Node
	Field   string
}

// Alias is a transparent pass-through that names its operand for the
// result schema; evaluation ignores Name entirely.
type Alias struct {
	Operand Node
	Name    string
}

// TypedString parses a string literal using the named type's literal
// parser, e.g. `DATE '2024-01-01'`.
type TypedString struct {
	Target value.DataType
	Text   string
}

// Position is the 1-based `POSITION(needle IN haystack)` (alias STRPOS).
type Position struct {
	Needle   Node
	Haystack Node
}

// Overlay replaces `[start, start+len)` of Value with Replacement;
// Length == nil means "length of Replacement".
type Overlay struct {
	Value       Node
	Replacement Node
	Start       Node
	Length      Node
}

// TrimWhere selects which side(s) TRIM removes characters from.
type TrimWhere int

const (
	TrimBoth TrimWhere = iota
	TrimLeading
	TrimTrailing
)

// Trim is `TRIM([where] [chars FROM] value)`; Chars == nil means space.
type Trim struct {
	Value Node
	Chars Node
	Where TrimWhere
}

// Interval constructs an INTERVAL value from a numeric expression and a
// leading field (months/days/hours/... — only a subset of DateTimeField
// is valid here, enforced by the evaluator).
type Interval struct {
	Amount Node
	Field  DateTimeField
}

// Variable is an uppercase-keyed lookup against the evaluator's variable
// maps (user variables first, then system variables), falling back to
// NULL.
type Variable struct {
	Name string
}

// IsDistinctFrom is NULL-sensitive inequality: `[NOT] IS DISTINCT FROM`.
type IsDistinctFrom struct {
	Left    Node
	Right   Node
	Negated bool
}

// JsonPathElement is one step of a JsonAccess path: either a string key
// or an array index (IsKey false signals an index step).
type JsonPathElement struct {
	Key   string
	Index int
	IsKey bool
}

// JsonAccess walks Path through a JSON value, returning NULL on any
// missing or mistyped step.
type JsonAccess struct {
	Source Node
	Path   []JsonPathElement
}

func (*Literal) exprNode()        {}
func (*Column) exprNode()         {}
func (*Binary) exprNode()         {}
func (*Unary) exprNode()          {}
func (*ScalarFunction) exprNode() {}
func (*IsNull) exprNode()         {}
func (*Cast) exprNode()           {}
func (*Case) exprNode()           {}
func (*Between) exprNode()        {}
func (*Like) exprNode()           {}
func (*InList) exprNode()         {}
func (*InUnnest) exprNode()       {}
func (*Extract) exprNode()        {}
func (*Substring) exprNode()      {}
func (*Array) exprNode()          {}
func (*Struct) exprNode()         {}
func (*ArrayAccess) exprNode()    {}
func (*StructAccess) exprNode()   {}
func (*Alias) exprNode()          {}
func (*TypedString) exprNode()    {}
func (*Position) exprNode()       {}
func (*Overlay) exprNode()        {}
func (*Trim) exprNode()           {}
func (*Interval) exprNode()       {}
func (*Variable) exprNode()       {}
func (*IsDistinctFrom) exprNode() {}
func (*JsonAccess) exprNode()     {}
