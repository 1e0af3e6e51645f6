// Package plan declares the logical plan node contract the session
// executes. It mirrors expr.Node's role: a closed set of types handed
// in by an external planner, not produced by this module.
package plan

import (
	"yachtsql/expr"
	"yachtsql/value"
)

// Node is satisfied by every plan variant below. The marker method
// keeps the set closed to this package.
type Node interface {
	planNode()
}

// PlanSchema names the output columns of a plan node, independent of
// any one table.Schema — a Join or SetOperation has a schema that no
// single registered table owns.
type PlanSchema struct {
	Fields []PlanField
}

type PlanField struct {
	Name     string
	Type     value.DataType
	Table    string
	Nullable bool
}

func (s *PlanSchema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if equalFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// --- Query family -----------------------------------------------------

type Scan struct {
	TableName  string
	Schema     *PlanSchema
	Projection []int // nil means all columns
}

type Filter struct {
	Input     Node
	Predicate expr.Node
}

type Project struct {
	Input       Node
	Expressions []expr.Node
	Schema      *PlanSchema
}

type AggregateExpr struct {
	Func  AggregateFunc
	Arg   expr.Node // nil for COUNT(*)
	Alias string
}

type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggCountStar
	AggSum
	AggAvg
	AggMin
	AggMax
	AggArrayAgg
	AggStringAgg
	AggAny
	AggLogicalAnd
	AggLogicalOr
)

type Aggregate struct {
	Input      Node
	GroupBy    []expr.Node
	Aggregates []AggregateExpr
}

type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

type Join struct {
	Left      Node
	Right     Node
	Type      JoinType
	Condition expr.Node // nil for Cross
}

type SortExpr struct {
	Expr       expr.Node
	Asc        bool
	NullsFirst bool
}

type Sort struct {
	Input     Node
	SortExprs []SortExpr
}

type Limit struct {
	Input  Node
	Limit  *int64
	Offset int64
}

type Distinct struct {
	Input Node
}

type Values struct {
	Rows   [][]expr.Node
	Schema *PlanSchema
}

type Empty struct {
	Schema *PlanSchema
}

type SetOperationType int

const (
	SetUnion SetOperationType = iota
	SetIntersect
	SetExcept
)

type SetOperation struct {
	Left  Node
	Right Node
	Op    SetOperationType
	All   bool
}

type WindowExpr struct {
	Func        expr.ScalarFuncKind
	Args        []expr.Node
	PartitionBy []expr.Node
	OrderBy     []SortExpr
	Alias       string
}

type Window struct {
	Input       Node
	WindowExprs []WindowExpr
}

type Qualify struct {
	Input     Node
	Predicate expr.Node
}

type Cte struct {
	Name  string
	Query Node
}

type WithCte struct {
	Ctes []Cte
	Body Node
}

type Sample struct {
	Input       Node
	SampleValue float64
	Percent     bool
}

// --- DDL/DML family -----------------------------------------------------

type ColumnDef struct {
	Name      string
	Type      value.DataType
	Nullable  bool
	Default   *value.Value
	Collation string
}

type CreateTable struct {
	TableName   string
	Columns     []ColumnDef
	IfNotExists bool
	OrReplace   bool
	Query       Node // non-nil for CREATE TABLE AS SELECT
}

type DropTable struct {
	TableNames []string
	IfExists   bool
}

type Insert struct {
	TableName string
	Columns   []string
	Source    Node
}

type Assignment struct {
	Column string
	Value  expr.Node
}

type Update struct {
	TableName   string
	Alias       string
	Assignments []Assignment
	From        Node
	Filter      expr.Node // nil means every row
}

type Delete struct {
	TableName string
	Alias     string
	Filter    expr.Node // nil means every row
}

type Truncate struct {
	TableName string
}

type AlterTableOpKind int

const (
	AlterAddColumn AlterTableOpKind = iota
	AlterDropColumn
	AlterRenameColumn
	AlterSetNotNull
	AlterSetNullable
	AlterSetDefault
	AlterSetCollation
	AlterSetDataType
)

type AlterTableOp struct {
	Kind       AlterTableOpKind
	ColumnName string
	NewName    string
	NewType    value.DataType
	Default    *value.Value
	Collation  string
	NewColumn  *ColumnDef
}

type AlterTable struct {
	TableName string
	Operation AlterTableOp
	IfExists  bool
}

type CreateView struct {
	Name          string
	QuerySQL      string
	ColumnAliases []string
	OrReplace     bool
	IfNotExists   bool
}

type DropView struct {
	Name     string
	IfExists bool
}

type CreateSchema struct {
	Name        string
	IfNotExists bool
}

type DropSchema struct {
	Name     string
	IfExists bool
	Cascade  bool
}

type FunctionBodyKind int

const (
	FunctionBodySQL FunctionBodyKind = iota
	FunctionBodyJS
	FunctionBodyPython
)

type FunctionBody struct {
	Kind   FunctionBodyKind
	SQL    expr.Node // parsed expression body, for FunctionBodySQL
	Source string    // raw source text, for JS/Python
}

type FunctionArg struct {
	Name string
	Type value.DataType
}

type CreateFunction struct {
	Name        string
	Args        []FunctionArg
	ReturnType  value.DataType
	Body        FunctionBody
	OrReplace   bool
	IfNotExists bool
	IsAggregate bool
}

type DropFunction struct {
	Name     string
	IfExists bool
}

type Explain struct {
	Input   Node
	Analyze bool
}

type Begin struct{}
type Commit struct{}
type Rollback struct{}

func (*Scan) planNode()           {}
func (*Filter) planNode()         {}
func (*Project) planNode()        {}
func (*Aggregate) planNode()      {}
func (*Join) planNode()           {}
func (*Sort) planNode()           {}
func (*Limit) planNode()          {}
func (*Distinct) planNode()       {}
func (*Values) planNode()         {}
func (*Empty) planNode()          {}
func (*SetOperation) planNode()   {}
func (*Window) planNode()         {}
func (*Qualify) planNode()        {}
func (*WithCte) planNode()        {}
func (*Sample) planNode()         {}
func (*CreateTable) planNode()    {}
func (*DropTable) planNode()      {}
func (*Insert) planNode()         {}
func (*Update) planNode()         {}
func (*Delete) planNode()         {}
func (*Truncate) planNode()       {}
func (*AlterTable) planNode()     {}
func (*CreateView) planNode()     {}
func (*DropView) planNode()       {}
func (*CreateSchema) planNode()   {}
func (*DropSchema) planNode()     {}
func (*CreateFunction) planNode() {}
func (*DropFunction) planNode()   {}
func (*Explain) planNode()        {}
func (*Begin) planNode()          {}
func (*Commit) planNode()         {}
func (*Rollback) planNode()       {}

// IsQuery reports whether n belongs to the query family (as opposed to
// DDL/DML): query nodes are converted to an execution-context
// plan and collected into row batches rather than dispatched to a
// dedicated handler.
func IsQuery(n Node) bool {
	switch n.(type) {
	case *Scan, *Filter, *Project, *Aggregate, *Join, *Sort, *Limit,
		*Distinct, *Values, *Empty, *SetOperation, *Window, *Qualify,
		*WithCte, *Sample:
		return true
	default:
		return false
	}
}

// SchemaOf reports the declared output schema for the plan nodes that
// carry one directly; callers fall back to walking Input/Left/Right for
// the rest.
func SchemaOf(n Node) (*PlanSchema, bool) {
	switch v := n.(type) {
	case *Scan:
		return v.Schema, true
	case *Project:
		return v.Schema, true
	case *Values:
		return v.Schema, true
	case *Empty:
		return v.Schema, true
	default:
		return nil, false
	}
}
