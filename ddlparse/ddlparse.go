// Package ddlparse reads CREATE TABLE text into table schemas so hosts
// and the CLI can stand up tables without hand-building field slices.
// It uses TiDB's parser, so standard MySQL-style DDL syntax is accepted;
// this is deliberately not a SQL-to-plan compiler — queries still arrive
// as logical plan trees.
package ddlparse

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"yachtsql/eval"
	"yachtsql/table"
	"yachtsql/value"
)

// TableDef is one parsed CREATE TABLE statement.
type TableDef struct {
	Name   string
	Schema *table.Schema
}

// Parser wraps a TiDB SQL parser instance. Not safe for concurrent use;
// create one per goroutine.
type Parser struct {
	p *parser.Parser
}

// NewParser builds a ready-to-use Parser.
func NewParser() *Parser {
	return &Parser{p: parser.New()}
}

// Parse extracts every CREATE TABLE statement from sql. Other statement
// kinds are skipped, matching a schema-dump reading posture.
func (p *Parser) Parse(sql string) ([]TableDef, error) {
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	var defs []TableDef
	for _, stmt := range stmtNodes {
		create, ok := stmt.(*ast.CreateTableStmt)
		if !ok {
			continue
		}
		def, err := p.convertCreateTable(create)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Convert lowers an already-parsed CREATE TABLE node. Hosts that drive
// the TiDB parser themselves (e.g. the CLI's statement loop) use this
// instead of re-parsing text.
func (p *Parser) Convert(stmt *ast.CreateTableStmt) (TableDef, error) {
	return p.convertCreateTable(stmt)
}

func (p *Parser) convertCreateTable(stmt *ast.CreateTableStmt) (TableDef, error) {
	name := stmt.Table.Name.O
	if stmt.Table.Schema.O != "" {
		name = stmt.Table.Schema.O + "." + name
	}

	fields := make([]table.Field, 0, len(stmt.Cols))
	for _, colDef := range stmt.Cols {
		field := table.Field{
			Name:      colDef.Name.Name.O,
			Type:      normalizeType(colDef.Tp.String()),
			Mode:      table.ModeNullable,
			Collation: normalizeCollation(colDef.Tp.GetCollate()),
		}
		for _, opt := range colDef.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull, ast.ColumnOptionPrimaryKey:
				field.Mode = table.ModeRequired
			case ast.ColumnOptionNull:
				field.Mode = table.ModeNullable
			case ast.ColumnOptionDefaultValue:
				if text := p.exprToString(opt.Expr); text != nil {
					if v, ok := defaultLiteral(*text, field.Type); ok {
						field.DefaultValue = &v
					}
				}
			case ast.ColumnOptionCollate:
				if text := p.exprToString(opt.Expr); text != nil {
					field.Collation = normalizeCollation(*text)
				} else if opt.StrValue != "" {
					field.Collation = normalizeCollation(opt.StrValue)
				}
			}
		}
		fields = append(fields, field)
	}
	return TableDef{Name: name, Schema: table.NewSchema(fields)}, nil
}

// typeRule maps raw type-string substrings (case-insensitive) to the
// engine's data types. Order matters: earlier rules win, so BIGINT must
// be checked before INT-as-substring would match it anyway, and
// DATETIME before DATE.
var typeRules = []struct {
	dt         value.DataType
	substrings []string
}{
	{value.BoolType, []string{"bool", "tinyint(1)"}},
	{value.Int64Type, []string{"bigint", "int", "smallint", "mediumint", "serial"}},
	{value.NumericType(), []string{"decimal", "numeric"}},
	{value.Float64Type, []string{"float", "double", "real"}},
	{value.JSONType, []string{"json"}},
	{value.BytesType, []string{"blob", "varbinary", "binary"}},
	{value.DateTimeType, []string{"datetime"}},
	{value.TimestampType, []string{"timestamp"}},
	{value.DateType, []string{"date"}},
	{value.TimeType, []string{"time"}},
	{value.GeographyType, []string{"geometry", "geography"}},
	{value.StringType, []string{"char", "text", "enum", "set"}},
}

func normalizeType(rawType string) value.DataType {
	lower := strings.ToLower(strings.TrimSpace(rawType))
	for _, rule := range typeRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.dt
			}
		}
	}
	return value.StringType
}

// normalizeCollation keeps only case-insensitive collations, mapped to
// the engine's `unicode:ci` tag; binary and case-sensitive collations
// mean default comparison and are dropped.
func normalizeCollation(collate string) string {
	if strings.HasSuffix(strings.ToLower(collate), "_ci") {
		return "unicode:ci"
	}
	return ""
}

// defaultLiteral parses a restored DEFAULT expression into a typed
// value. Non-literal defaults (function calls like CURRENT_TIMESTAMP)
// are skipped rather than guessed at.
func defaultLiteral(text string, dt value.DataType) (value.Value, bool) {
	switch strings.ToUpper(text) {
	case "NULL":
		return value.Null, true
	case "TRUE":
		return value.Bool(true), true
	case "FALSE":
		return value.Bool(false), true
	}
	if strings.ContainsAny(text, "()") {
		return value.Null, false
	}
	v, err := eval.CastValue(value.String(text), dt)
	if err != nil {
		return value.Null, false
	}
	return v, true
}

func (p *Parser) exprToString(expr ast.ExprNode) *string {
	return ExprText(expr)
}

// ExprText restores an expression node to trimmed SQL text, unquoting a
// plain string literal. Nil is returned when the node cannot be
// restored.
func ExprText(expr ast.ExprNode) *string {
	if expr == nil {
		return nil
	}
	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return nil
	}
	s := strings.TrimSpace(sb.String())
	if unquoted, ok := unquoteStringLiteral(s); ok {
		return &unquoted
	}
	return &s
}

// LiteralValue maps a literal expression node to an untyped engine
// value: NULL stays NULL, TRUE/FALSE become BOOL, everything else is
// carried as its text and left for the target schema's cast to type.
func LiteralValue(expr ast.ExprNode) (value.Value, bool) {
	text := ExprText(expr)
	if text == nil {
		return value.Null, false
	}
	switch strings.ToUpper(*text) {
	case "NULL":
		return value.Null, true
	case "TRUE":
		return value.Bool(true), true
	case "FALSE":
		return value.Bool(false), true
	}
	return value.String(*text), true
}

func unquoteStringLiteral(s string) (string, bool) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", false
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, "''", "'"), true
}
