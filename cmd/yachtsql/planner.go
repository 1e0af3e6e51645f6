package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"yachtsql/ddlparse"
	"yachtsql/expr"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
)

// scriptPlanner is the CLI's minimal SQL frontend: it lowers the small
// statement subset the exec command supports (CREATE/DROP/TRUNCATE
// TABLE, INSERT ... VALUES with literals, SELECT * FROM t [LIMIT n])
// into logical plan nodes. Anything richer belongs to a real planner
// wired in by the embedding host; the session itself never parses SQL.
type scriptPlanner struct {
	p   *parser.Parser
	ddl *ddlparse.Parser
}

func newScriptPlanner() *scriptPlanner {
	return &scriptPlanner{p: parser.New(), ddl: ddlparse.NewParser()}
}

// ParseAndPlan lowers a single SQL statement.
func (sp *scriptPlanner) ParseAndPlan(_ context.Context, sql string) (plan.Node, error) {
	stmts, _, err := sp.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("expected exactly one statement, got %d", len(stmts))
	}
	return sp.lower(stmts[0])
}

// ParseScript parses a whole script and lowers each statement in order.
func (sp *scriptPlanner) ParseScript(sql string) ([]plan.Node, error) {
	stmts, _, err := sp.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	nodes := make([]plan.Node, 0, len(stmts))
	for _, stmt := range stmts {
		node, err := sp.lower(stmt)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (sp *scriptPlanner) lower(stmt ast.StmtNode) (plan.Node, error) {
	switch n := stmt.(type) {
	case *ast.CreateTableStmt:
		return sp.lowerCreateTable(n)
	case *ast.DropTableStmt:
		names := make([]string, len(n.Tables))
		for i, t := range n.Tables {
			names[i] = tableName(t)
		}
		return &plan.DropTable{TableNames: names, IfExists: n.IfExists}, nil
	case *ast.TruncateTableStmt:
		return &plan.Truncate{TableName: tableName(n.Table)}, nil
	case *ast.InsertStmt:
		return sp.lowerInsert(n)
	case *ast.SelectStmt:
		return sp.lowerSelect(n)
	default:
		return nil, fmt.Errorf("statement %T is not supported by the script runner", stmt)
	}
}

func (sp *scriptPlanner) lowerCreateTable(n *ast.CreateTableStmt) (plan.Node, error) {
	def, err := sp.ddl.Convert(n)
	if err != nil {
		return nil, err
	}
	cols := make([]plan.ColumnDef, def.Schema.Len())
	for i, f := range def.Schema.Fields() {
		cols[i] = plan.ColumnDef{
			Name:      f.Name,
			Type:      f.Type,
			Nullable:  f.Mode != table.ModeRequired,
			Default:   f.DefaultValue,
			Collation: f.Collation,
		}
	}
	return &plan.CreateTable{TableName: def.Name, Columns: cols, IfNotExists: n.IfNotExists}, nil
}

func (sp *scriptPlanner) lowerInsert(n *ast.InsertStmt) (plan.Node, error) {
	source, ok := n.Table.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return nil, fmt.Errorf("INSERT requires a plain table target")
	}
	target, ok := source.Source.(*ast.TableName)
	if !ok {
		return nil, fmt.Errorf("INSERT requires a plain table target")
	}
	if len(n.Lists) == 0 {
		return nil, fmt.Errorf("only INSERT ... VALUES is supported by the script runner")
	}

	columns := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		columns[i] = c.Name.O
	}
	rows := make([][]expr.Node, len(n.Lists))
	for r, list := range n.Lists {
		row := make([]expr.Node, len(list))
		for i, e := range list {
			if _, isDefault := e.(*ast.DefaultExpr); isDefault {
				row[i] = &expr.Literal{Value: value.Default}
				continue
			}
			v, ok := ddlparse.LiteralValue(e)
			if !ok {
				return nil, fmt.Errorf("INSERT values must be literals")
			}
			row[i] = &expr.Literal{Value: v}
		}
		rows[r] = row
	}
	return &plan.Insert{
		TableName: tableName(target),
		Columns:   columns,
		Source:    &plan.Values{Rows: rows},
	}, nil
}

func (sp *scriptPlanner) lowerSelect(n *ast.SelectStmt) (plan.Node, error) {
	if n.From == nil || n.Where != nil || n.GroupBy != nil || n.Having != nil {
		return nil, fmt.Errorf("only SELECT * FROM <table> [LIMIT n] is supported by the script runner")
	}
	source, ok := n.From.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return nil, fmt.Errorf("only plain table scans are supported by the script runner")
	}
	target, ok := source.Source.(*ast.TableName)
	if !ok {
		return nil, fmt.Errorf("only plain table scans are supported by the script runner")
	}
	if len(n.Fields.Fields) != 1 || n.Fields.Fields[0].WildCard == nil {
		return nil, fmt.Errorf("only SELECT * projections are supported by the script runner")
	}

	var node plan.Node = &plan.Scan{TableName: tableName(target)}
	if n.Limit != nil && n.Limit.Count != nil {
		text := ddlparse.ExprText(n.Limit.Count)
		if text == nil {
			return nil, fmt.Errorf("malformed LIMIT clause")
		}
		count, err := strconv.ParseInt(*text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed LIMIT clause: %w", err)
		}
		node = &plan.Limit{Input: node, Limit: &count}
	}
	return node, nil
}

func tableName(t *ast.TableName) string {
	if t.Schema.O != "" {
		return t.Schema.O + "." + t.Name.O
	}
	return t.Name.O
}
