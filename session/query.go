package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"yachtsql/column"
	"yachtsql/expr"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// executeQuery materializes a query-family plan node into a table.
func (s *Session) executeQuery(ctx context.Context, node plan.Node) (*table.Table, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return s.executeScan(n)
	case *plan.Filter:
		return s.executeFilter(ctx, n)
	case *plan.Project:
		return s.executeProject(ctx, n)
	case *plan.Values:
		return s.executeValues(n)
	case *plan.Empty:
		return table.New("", planSchemaToSchema(n.Schema)), nil
	case *plan.Sort:
		return s.executeSort(ctx, n)
	case *plan.Limit:
		return s.executeLimit(ctx, n)
	case *plan.Distinct:
		return s.executeDistinct(ctx, n)
	case *plan.WithCte:
		return s.executeWithCte(ctx, n)
	case *plan.Aggregate:
		return s.executeAggregate(ctx, n)
	case *plan.Join:
		left, err := s.executeQuery(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.executeQuery(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, left, right)
	case *plan.SetOperation:
		left, err := s.executeQuery(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.executeQuery(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, left, right)
	case *plan.Window:
		input, err := s.executeQuery(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, input)
	case *plan.Qualify:
		input, err := s.executeQuery(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, input)
	case *plan.Sample:
		input, err := s.executeQuery(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, input)
	default:
		return nil, yqerr.NewInternal("query plan node %T has no handler", node)
	}
}

// delegate hands a non-trivial operator and its already-materialized
// inputs to the registered physical executor.
func (s *Session) delegate(ctx context.Context, node plan.Node, inputs ...*table.Table) (*table.Table, error) {
	if s.physical == nil {
		return nil, yqerr.NewUnsupported("%T requires a physical executor", node)
	}
	return s.physical.Execute(ctx, node, inputs)
}

func (s *Session) executeScan(n *plan.Scan) (*table.Table, error) {
	t, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		return nil, yqerr.NewInvalidQuery("table %s not found", n.TableName)
	}
	if n.Projection == nil {
		return t.Clone(), nil
	}
	return t.SelectColumns(n.Projection)
}

func (s *Session) executeFilter(ctx context.Context, n *plan.Filter) (*table.Table, error) {
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}
	ev := s.evaluator(input.Schema())
	mask := column.New(value.BoolType)
	for i := 0; i < input.RowCount(); i++ {
		rec, err := input.GetRow(i)
		if err != nil {
			return nil, err
		}
		v, err := ev.Evaluate(n.Predicate, rec)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() {
			if _, ok := v.AsBool(); !ok {
				return nil, yqerr.NewInvalidQuery("WHERE predicate must be BOOL, got %s", v.DataType())
			}
		}
		mask.Push(v)
	}
	return input.FilterByMask(mask)
}

func (s *Session) executeProject(ctx context.Context, n *plan.Project) (*table.Table, error) {
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}
	ev := s.evaluator(input.Schema())
	rows := make([][]value.Value, 0, input.RowCount())
	for i := 0; i < input.RowCount(); i++ {
		rec, err := input.GetRow(i)
		if err != nil {
			return nil, err
		}
		row := make([]value.Value, len(n.Expressions))
		for c, ex := range n.Expressions {
			row[c], err = ev.Evaluate(ex, rec)
			if err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	schema := planSchemaToSchema(n.Schema)
	if n.Schema == nil {
		schema = inferSchema(n.Expressions, rows)
	}
	out := table.New(input.Name, schema)
	if err := out.PushRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) executeValues(n *plan.Values) (*table.Table, error) {
	ev := s.evaluator(table.NewSchema(nil))
	rows := make([][]value.Value, 0, len(n.Rows))
	for _, exprs := range n.Rows {
		row := make([]value.Value, len(exprs))
		for c, ex := range exprs {
			v, err := ev.Evaluate(ex, table.EmptyRecord())
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		rows = append(rows, row)
	}
	schema := planSchemaToSchema(n.Schema)
	if n.Schema == nil {
		schema = inferValuesSchema(rows)
	}
	out := table.New("", schema)
	if err := out.PushRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) executeSort(ctx context.Context, n *plan.Sort) (*table.Table, error) {
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}
	ev := s.evaluator(input.Schema())
	keys := make([][]value.Value, input.RowCount())
	for i := 0; i < input.RowCount(); i++ {
		rec, err := input.GetRow(i)
		if err != nil {
			return nil, err
		}
		row := make([]value.Value, len(n.SortExprs))
		for k, se := range n.SortExprs {
			row[k], err = ev.Evaluate(se.Expr, rec)
			if err != nil {
				return nil, err
			}
		}
		keys[i] = row
	}
	indices := make([]int, input.RowCount())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ka, kb := keys[indices[a]], keys[indices[b]]
		for k, se := range n.SortExprs {
			if c := compareSortKeys(ka[k], kb[k], se); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return input.GatherRows(indices)
}

// compareSortKeys orders two key values under one sort expression:
// direction applies to non-null comparisons, null placement is governed
// solely by NullsFirst.
func compareSortKeys(a, b value.Value, se plan.SortExpr) int {
	an, bn := a.IsNull(), b.IsNull()
	switch {
	case an && bn:
		return 0
	case an:
		if se.NullsFirst {
			return -1
		}
		return 1
	case bn:
		if se.NullsFirst {
			return 1
		}
		return -1
	}
	c := value.Compare(a, b)
	if !se.Asc {
		c = -c
	}
	return c
}

func (s *Session) executeLimit(ctx context.Context, n *plan.Limit) (*table.Table, error) {
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}
	start := int(n.Offset)
	if start < 0 {
		start = 0
	}
	if start > input.RowCount() {
		start = input.RowCount()
	}
	end := input.RowCount()
	if n.Limit != nil {
		if e := start + int(*n.Limit); e < end {
			end = e
		}
	}
	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return input.GatherRows(indices)
}

func (s *Session) executeDistinct(ctx context.Context, n *plan.Distinct) (*table.Table, error) {
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64][]int)
	var keep []int
	for i := 0; i < input.RowCount(); i++ {
		rec, err := input.GetRow(i)
		if err != nil {
			return nil, err
		}
		h := rowHash(rec.Values)
		dup := false
		for _, j := range seen[h] {
			prev, _ := input.GetRow(j)
			if rowsEqual(rec.Values, prev.Values) {
				dup = true
				break
			}
		}
		if !dup {
			seen[h] = append(seen[h], i)
			keep = append(keep, i)
		}
	}
	return input.GatherRows(keep)
}

func rowHash(values []value.Value) uint64 {
	var h uint64 = 1469598103934665603
	for _, v := range values {
		h ^= value.Hash(v)
		h *= 1099511628211
	}
	return h
}

func rowsEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !value.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// executeWithCte executes each CTE body in declaration order, registering
// the result under its lowercased name before the next CTE runs so later
// CTEs can reference earlier ones, then executes the main body against the
// enriched catalog and removes the temporary registrations.
func (s *Session) executeWithCte(ctx context.Context, n *plan.WithCte) (*table.Table, error) {
	registered := make([]string, 0, len(n.Ctes))
	defer func() {
		for _, name := range registered {
			s.catalog.DeregisterTable(name)
		}
	}()
	for _, cte := range n.Ctes {
		t, err := s.executeQuery(ctx, cte.Query)
		if err != nil {
			return nil, fmt.Errorf("cte %s: %w", cte.Name, err)
		}
		name := strings.ToLower(cte.Name)
		s.catalog.RegisterTable(name, t)
		registered = append(registered, name)
	}
	return s.executeQuery(ctx, n.Body)
}

// --- schema helpers ---------------------------------------------------

func planSchemaToSchema(ps *plan.PlanSchema) *table.Schema {
	if ps == nil {
		return table.NewSchema(nil)
	}
	fields := make([]table.Field, len(ps.Fields))
	for i, f := range ps.Fields {
		mode := table.ModeNullable
		if !f.Nullable {
			mode = table.ModeRequired
		}
		fields[i] = table.Field{Name: f.Name, Type: f.Type, Mode: mode}
	}
	return table.NewSchema(fields)
}

// inferSchema derives output fields from projection expressions and the
// evaluated rows: names come from aliases or column references, types
// from the first non-null value in each lane.
func inferSchema(exprs []expr.Node, rows [][]value.Value) *table.Schema {
	fields := make([]table.Field, len(exprs))
	for i, ex := range exprs {
		fields[i] = table.Field{Name: exprName(ex, i), Type: laneType(rows, i)}
	}
	return table.NewSchema(fields)
}

func inferValuesSchema(rows [][]value.Value) *table.Schema {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	fields := make([]table.Field, width)
	for i := range fields {
		fields[i] = table.Field{Name: fmt.Sprintf("_col%d", i), Type: laneType(rows, i)}
	}
	return table.NewSchema(fields)
}

func exprName(ex expr.Node, i int) string {
	switch e := ex.(type) {
	case *expr.Alias:
		return e.Name
	case *expr.Column:
		return e.Name
	default:
		return fmt.Sprintf("_col%d", i)
	}
}

func laneType(rows [][]value.Value, i int) value.DataType {
	for _, row := range rows {
		if i < len(row) && !row[i].IsNull() {
			return row[i].DataType()
		}
	}
	return value.UnknownType
}
