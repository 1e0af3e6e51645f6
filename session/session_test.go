package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/expr"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

func col(name string) *expr.Column {
	return &expr.Column{Name: name, Index: -1}
}

func sampleTable(t *testing.T, n int) *table.Table {
	t.Helper()
	tbl := table.New("sample", table.NewSchema([]table.Field{
		{Name: "n", Type: value.Int64Type},
	}))
	for i := 1; i <= n; i++ {
		require.NoError(t, tbl.PushRow([]value.Value{value.Int64(int64(i))}))
	}
	return tbl
}

func lit(v value.Value) *expr.Literal {
	return &expr.Literal{Value: v}
}

func intLits(ns ...int64) []expr.Node {
	out := make([]expr.Node, len(ns))
	for i, n := range ns {
		out[i] = lit(value.Int64(n))
	}
	return out
}

func createBoolPair(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "flags",
		Columns: []plan.ColumnDef{
			{Name: "a", Type: value.BoolType, Nullable: true},
			{Name: "b", Type: value.BoolType, Nullable: true},
		},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "flags",
		Source: &plan.Values{Rows: [][]expr.Node{
			{lit(value.Bool(true)), lit(value.Null)},
			{lit(value.Bool(false)), lit(value.Null)},
			{lit(value.Null), lit(value.Null)},
		}},
	})
	require.NoError(t, err)
}

func TestCreateInsertScan(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "nums",
		Columns:   []plan.ColumnDef{{Name: "n", Type: value.Int64Type, Nullable: true}},
	})
	require.NoError(t, err)

	// Creating again without IF NOT EXISTS fails; with it, it's a no-op.
	_, err = s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "NUMS",
		Columns:   []plan.ColumnDef{{Name: "n", Type: value.Int64Type, Nullable: true}},
	})
	var internal *yqerr.InternalError
	require.ErrorAs(t, err, &internal)
	_, err = s.ExecutePlan(ctx, &plan.CreateTable{
		TableName:   "nums",
		IfNotExists: true,
		Columns:     []plan.ColumnDef{{Name: "n", Type: value.Int64Type, Nullable: true}},
	})
	require.NoError(t, err)

	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "nums",
		Source: &plan.Values{Rows: [][]expr.Node{
			intLits(1), intLits(2), intLits(3),
		}},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "Nums"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 3)
	n, _ := res.Rows[2][0].AsInt64()
	assert.Equal(t, int64(3), n)
}

func TestThreeValuedAndProjection(t *testing.T) {
	s := New()
	ctx := context.Background()
	createBoolPair(t, s)

	batches, err := s.ExecutePlan(ctx, &plan.Project{
		Input: &plan.Scan{TableName: "flags"},
		Expressions: []expr.Node{
			&expr.Binary{Op: expr.OpAnd, Left: col("a"), Right: col("b")},
		},
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 3)

	assert.True(t, res.Rows[0][0].IsNull()) // TRUE AND NULL
	b, ok := res.Rows[1][0].AsBool()        // FALSE AND NULL
	require.True(t, ok)
	assert.False(t, b)
	assert.True(t, res.Rows[2][0].IsNull()) // NULL AND NULL
}

func TestFilterDropsNullPredicateRows(t *testing.T) {
	s := New()
	ctx := context.Background()
	createBoolPair(t, s)

	batches, err := s.ExecutePlan(ctx, &plan.Filter{
		Input:     &plan.Scan{TableName: "flags"},
		Predicate: col("a"),
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	// Only the row where a is TRUE survives; FALSE and NULL are dropped.
	require.Len(t, res.Rows, 1)
}

func TestDeleteKeepsNullFilterRows(t *testing.T) {
	s := New()
	ctx := context.Background()
	createBoolPair(t, s)

	_, err := s.ExecutePlan(ctx, &plan.Delete{TableName: "flags", Filter: col("a")})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "flags"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	// DELETE WHERE a removes only the TRUE row; FALSE and NULL rows stay.
	require.Len(t, res.Rows, 2)
}

func TestUpdateWithFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "accounts",
		Columns: []plan.ColumnDef{
			{Name: "id", Type: value.Int64Type, Nullable: false},
			{Name: "balance", Type: value.Int64Type, Nullable: true},
		},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "accounts",
		Source: &plan.Values{Rows: [][]expr.Node{
			intLits(1, 100), intLits(2, 200),
		}},
	})
	require.NoError(t, err)

	_, err = s.ExecutePlan(ctx, &plan.Update{
		TableName: "accounts",
		Assignments: []plan.Assignment{{
			Column: "Balance",
			Value:  &expr.Binary{Op: expr.OpAdd, Left: col("balance"), Right: lit(value.Int64(5))},
		}},
		Filter: &expr.Binary{Op: expr.OpEq, Left: col("id"), Right: lit(value.Int64(2))},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "accounts"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	b0, _ := res.Rows[0][1].AsInt64()
	b1, _ := res.Rows[1][1].AsInt64()
	assert.Equal(t, int64(100), b0)
	assert.Equal(t, int64(205), b1)
}

func TestSortLimitDistinct(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "v",
		Columns:   []plan.ColumnDef{{Name: "n", Type: value.Int64Type, Nullable: true}},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "v",
		Source: &plan.Values{Rows: [][]expr.Node{
			intLits(3), intLits(1), {lit(value.Null)}, intLits(3), intLits(2),
		}},
	})
	require.NoError(t, err)

	sorted, err := s.ExecutePlan(ctx, &plan.Sort{
		Input:     &plan.Scan{TableName: "v"},
		SortExprs: []plan.SortExpr{{Expr: col("n"), Asc: true}},
	})
	require.NoError(t, err)
	res := ResultFromBatches(sorted)
	require.Len(t, res.Rows, 5)
	first, _ := res.Rows[0][0].AsInt64()
	assert.Equal(t, int64(1), first)
	assert.True(t, res.Rows[4][0].IsNull()) // nulls sort last by default

	limited, err := s.ExecutePlan(ctx, &plan.Limit{
		Input: &plan.Sort{
			Input:     &plan.Scan{TableName: "v"},
			SortExprs: []plan.SortExpr{{Expr: col("n"), Asc: true}},
		},
		Limit:  int64Ptr(2),
		Offset: 1,
	})
	require.NoError(t, err)
	res = ResultFromBatches(limited)
	require.Len(t, res.Rows, 2)
	n0, _ := res.Rows[0][0].AsInt64()
	assert.Equal(t, int64(2), n0)

	distinct, err := s.ExecutePlan(ctx, &plan.Distinct{Input: &plan.Scan{TableName: "v"}})
	require.NoError(t, err)
	res = ResultFromBatches(distinct)
	// 3, 1, NULL, 2 — the duplicate 3 collapses, NULL counts as one value.
	require.Len(t, res.Rows, 4)
}

func int64Ptr(n int64) *int64 { return &n }

func TestAggregateKernels(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "m",
		Columns:   []plan.ColumnDef{{Name: "x", Type: value.Int64Type, Nullable: true}},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "m",
		Source: &plan.Values{Rows: [][]expr.Node{
			intLits(10), intLits(20), {lit(value.Null)}, intLits(30),
		}},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Aggregate{
		Input: &plan.Scan{TableName: "m"},
		Aggregates: []plan.AggregateExpr{
			{Func: plan.AggSum, Arg: col("x"), Alias: "total"},
			{Func: plan.AggCount, Arg: col("x"), Alias: "cnt"},
			{Func: plan.AggCountStar, Alias: "all_rows"},
			{Func: plan.AggMin, Arg: col("x"), Alias: "lo"},
			{Func: plan.AggMax, Arg: col("x"), Alias: "hi"},
			{Func: plan.AggAvg, Arg: col("x"), Alias: "mean"},
		},
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]

	total, _ := row[0].AsInt64()
	assert.Equal(t, int64(60), total)
	cnt, _ := row[1].AsInt64()
	assert.Equal(t, int64(3), cnt)
	all, _ := row[2].AsInt64()
	assert.Equal(t, int64(4), all)
	lo, _ := row[3].AsInt64()
	assert.Equal(t, int64(10), lo)
	hi, _ := row[4].AsInt64()
	assert.Equal(t, int64(30), hi)
	mean, _ := row[5].AsFloat64()
	assert.InDelta(t, 20.0, mean, 1e-9)
}

func TestGroupedAggregateNeedsPhysicalExecutor(t *testing.T) {
	s := New()
	ctx := context.Background()
	createBoolPair(t, s)

	_, err := s.ExecutePlan(ctx, &plan.Aggregate{
		Input:      &plan.Scan{TableName: "flags"},
		GroupBy:    []expr.Node{col("a")},
		Aggregates: []plan.AggregateExpr{{Func: plan.AggCountStar}},
	})
	var unsupported *yqerr.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
}

func TestWithCte(t *testing.T) {
	s := New()
	ctx := context.Background()

	batches, err := s.ExecutePlan(ctx, &plan.WithCte{
		Ctes: []plan.Cte{{
			Name: "Small",
			Query: &plan.Values{
				Rows:   [][]expr.Node{intLits(1), intLits(2)},
				Schema: &plan.PlanSchema{Fields: []plan.PlanField{{Name: "n", Type: value.Int64Type, Nullable: true}}},
			},
		}},
		Body: &plan.Scan{TableName: "small"},
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 2)

	// The CTE registration is scoped to the statement.
	_, err = s.ExecutePlan(ctx, &plan.Scan{TableName: "small"})
	assert.Error(t, err)
}

func TestWithCteChainedReferences(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Each CTE registers before the next executes, so b can read a.
	batches, err := s.ExecutePlan(ctx, &plan.WithCte{
		Ctes: []plan.Cte{
			{
				Name: "a",
				Query: &plan.Values{
					Rows:   [][]expr.Node{intLits(1), intLits(2), intLits(3)},
					Schema: &plan.PlanSchema{Fields: []plan.PlanField{{Name: "n", Type: value.Int64Type, Nullable: true}}},
				},
			},
			{
				Name: "b",
				Query: &plan.Filter{
					Input:     &plan.Scan{TableName: "a"},
					Predicate: &expr.Binary{Op: expr.OpGt, Left: col("n"), Right: lit(value.Int64(1))},
				},
			},
		},
		Body: &plan.Scan{TableName: "b"},
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 2)
	n, _ := res.Rows[0][0].AsInt64()
	assert.Equal(t, int64(2), n)
}

func TestTruncateAndDrop(t *testing.T) {
	s := New()
	ctx := context.Background()
	createBoolPair(t, s)

	_, err := s.ExecutePlan(ctx, &plan.Truncate{TableName: "flags"})
	require.NoError(t, err)
	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "flags"})
	require.NoError(t, err)
	assert.Empty(t, ResultFromBatches(batches).Rows)

	_, err = s.ExecutePlan(ctx, &plan.DropTable{TableNames: []string{"flags"}})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.DropTable{TableNames: []string{"flags"}})
	assert.Error(t, err)
	_, err = s.ExecutePlan(ctx, &plan.DropTable{TableNames: []string{"flags"}, IfExists: true})
	assert.NoError(t, err)
}

func TestAlterTableTypeChange(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "t",
		Columns:   []plan.ColumnDef{{Name: "val", Type: value.Int64Type, Nullable: true}},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "t",
		Source:    &plan.Values{Rows: [][]expr.Node{intLits(42), {lit(value.Null)}, intLits(7)}},
	})
	require.NoError(t, err)

	_, err = s.ExecutePlan(ctx, &plan.AlterTable{
		TableName: "t",
		Operation: plan.AlterTableOp{Kind: plan.AlterSetDataType, ColumnName: "val", NewType: value.NumericType()},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "t"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 3)
	d, ok := res.Rows[0][0].AsDecimal()
	require.True(t, ok)
	assert.Equal(t, "42", d.String())
	assert.True(t, res.Rows[1][0].IsNull())
}

func TestCreateFunctionAndInvoke(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateFunction{
		Name:       "add_one",
		Args:       []plan.FunctionArg{{Name: "x", Type: value.Int64Type}},
		ReturnType: value.Int64Type,
		Body: plan.FunctionBody{
			Kind: plan.FunctionBodySQL,
			SQL:  &expr.Binary{Op: expr.OpAdd, Left: col("x"), Right: lit(value.Int64(1))},
		},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Project{
		Input: &plan.Values{
			Rows:   [][]expr.Node{intLits(41)},
			Schema: &plan.PlanSchema{Fields: []plan.PlanField{{Name: "n", Type: value.Int64Type, Nullable: true}}},
		},
		Expressions: []expr.Node{
			&expr.ScalarFunction{Func: expr.FuncCustom, Name: "ADD_ONE", Args: []expr.Node{col("n")}},
		},
	})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 1)
	n, _ := res.Rows[0][0].AsInt64()
	assert.Equal(t, int64(42), n)

	_, err = s.ExecutePlan(ctx, &plan.DropFunction{Name: "add_one"})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.DropFunction{Name: "add_one"})
	assert.Error(t, err)
}

func TestExplainProducesPlanColumn(t *testing.T) {
	s := New()
	ctx := context.Background()

	batches, err := s.ExecutePlan(ctx, &plan.Explain{
		Input: &plan.Values{Rows: [][]expr.Node{intLits(1)}},
	})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, "plan", batches[0].Schema.Fields()[0].Name)
	text, ok := batches[0].Columns[0].Get(0).AsString()
	require.True(t, ok)
	assert.NotEmpty(t, text)
}

func TestTransactionControlIsNoOp(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, n := range []plan.Node{&plan.Begin{}, &plan.Commit{}, &plan.Rollback{}} {
		batches, err := s.ExecutePlan(ctx, n)
		require.NoError(t, err)
		assert.Empty(t, batches)
	}
}

func TestExecuteSQLWithoutPlanner(t *testing.T) {
	s := New()
	_, err := s.ExecuteSQL(context.Background(), "SELECT 1")
	var unsupported *yqerr.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
}

func TestInsertRespectsRequiredColumns(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "r",
		Columns: []plan.ColumnDef{
			{Name: "id", Type: value.Int64Type, Nullable: false},
			{Name: "note", Type: value.StringType, Nullable: true},
		},
	})
	require.NoError(t, err)

	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "r",
		Source:    &plan.Values{Rows: [][]expr.Node{{lit(value.Null), lit(value.String("x"))}}},
	})
	var invalid *yqerr.InvalidQueryError
	require.ErrorAs(t, err, &invalid)

	// A column list leaves unlisted nullable columns NULL.
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "r",
		Columns:   []string{"ID"},
		Source:    &plan.Values{Rows: [][]expr.Node{intLits(1)}},
	})
	require.NoError(t, err)
	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "r"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0][1].IsNull())
}

func TestInsertCastsToTargetSchema(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ExecutePlan(ctx, &plan.CreateTable{
		TableName: "c",
		Columns:   []plan.ColumnDef{{Name: "f", Type: value.Float64Type, Nullable: true}},
	})
	require.NoError(t, err)
	_, err = s.ExecutePlan(ctx, &plan.Insert{
		TableName: "c",
		Source:    &plan.Values{Rows: [][]expr.Node{{lit(value.String("3.14"))}}},
	})
	require.NoError(t, err)

	batches, err := s.ExecutePlan(ctx, &plan.Scan{TableName: "c"})
	require.NoError(t, err)
	res := ResultFromBatches(batches)
	f, ok := res.Rows[0][0].AsFloat64()
	require.True(t, ok)
	assert.InDelta(t, 3.14, f, 1e-9)
}
