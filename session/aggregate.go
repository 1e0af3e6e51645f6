package session

import (
	"context"
	"fmt"
	"strings"

	"yachtsql/column"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// executeAggregate computes ungrouped aggregates directly over the
// column kernels; anything with a GROUP BY clause is a physical-planner
// concern and goes through the delegate.
func (s *Session) executeAggregate(ctx context.Context, n *plan.Aggregate) (*table.Table, error) {
	if len(n.GroupBy) > 0 {
		input, err := s.executeQuery(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		return s.delegate(ctx, n, input)
	}
	input, err := s.executeQuery(ctx, n.Input)
	if err != nil {
		return nil, err
	}

	fields := make([]table.Field, len(n.Aggregates))
	row := make([]value.Value, len(n.Aggregates))
	for i, agg := range n.Aggregates {
		v, err := s.computeAggregate(input, agg)
		if err != nil {
			return nil, err
		}
		row[i] = v
		name := agg.Alias
		if name == "" {
			name = fmt.Sprintf("_col%d", i)
		}
		fields[i] = table.Field{Name: name, Type: v.DataType()}
	}
	out := table.New("", table.NewSchema(fields))
	if err := out.PushRow(row); err != nil {
		return nil, err
	}
	return out, nil
}

// computeAggregate evaluates one aggregate expression over the whole
// input, materializing the argument into a column so the bitmap kernels
// do the reduction.
func (s *Session) computeAggregate(input *table.Table, agg plan.AggregateExpr) (value.Value, error) {
	if agg.Func == plan.AggCountStar {
		return value.Int64(int64(input.RowCount())), nil
	}
	if agg.Arg == nil {
		return value.Null, yqerr.NewInvalidQuery("aggregate requires an argument")
	}

	col, nonNull, err := s.materializeArg(input, agg)
	if err != nil {
		return value.Null, err
	}

	switch agg.Func {
	case plan.AggCount:
		return value.Int64(int64(len(nonNull))), nil
	case plan.AggSum:
		sum, ok := col.Sum()
		if !ok {
			return value.Null, nil
		}
		if col.Kind() == value.KindInt64 {
			return value.Int64(int64(sum)), nil
		}
		return value.Float64(sum), nil
	case plan.AggAvg:
		sum, ok := col.Sum()
		if !ok || len(nonNull) == 0 {
			return value.Null, nil
		}
		return value.Float64(sum / float64(len(nonNull))), nil
	case plan.AggMin:
		v, ok := col.Min()
		if !ok {
			return value.Null, nil
		}
		return v, nil
	case plan.AggMax:
		v, ok := col.Max()
		if !ok {
			return value.Null, nil
		}
		return v, nil
	case plan.AggAny:
		if len(nonNull) == 0 {
			return value.Null, nil
		}
		return nonNull[0], nil
	case plan.AggArrayAgg:
		return value.ArrayOf(nonNull), nil
	case plan.AggStringAgg:
		parts := make([]string, 0, len(nonNull))
		for _, v := range nonNull {
			s, ok := v.AsString()
			if !ok {
				return value.Null, yqerr.NewInvalidQuery("STRING_AGG requires STRING arguments")
			}
			parts = append(parts, s)
		}
		if len(parts) == 0 {
			return value.Null, nil
		}
		return value.String(strings.Join(parts, ",")), nil
	case plan.AggLogicalAnd, plan.AggLogicalOr:
		saw := false
		acc := agg.Func == plan.AggLogicalAnd
		for _, v := range nonNull {
			b, ok := v.AsBool()
			if !ok {
				return value.Null, yqerr.NewInvalidQuery("LOGICAL_AND/LOGICAL_OR require BOOL arguments")
			}
			saw = true
			if agg.Func == plan.AggLogicalAnd {
				acc = acc && b
			} else {
				acc = acc || b
			}
		}
		if !saw {
			return value.Null, nil
		}
		return value.Bool(acc), nil
	default:
		return value.Null, yqerr.NewUnsupported("aggregate function %d", agg.Func)
	}
}

// materializeArg evaluates the aggregate's argument for every input row
// into a typed column, also returning the non-null values in row order.
func (s *Session) materializeArg(input *table.Table, agg plan.AggregateExpr) (*column.Column, []value.Value, error) {
	ev := s.evaluator(input.Schema())
	values := make([]value.Value, 0, input.RowCount())
	var nonNull []value.Value
	elemType := value.UnknownType
	for i := 0; i < input.RowCount(); i++ {
		rec, err := input.GetRow(i)
		if err != nil {
			return nil, nil, err
		}
		v, err := ev.Evaluate(agg.Arg, rec)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, v)
		if !v.IsNull() {
			if elemType.Kind == value.KindUnknown {
				elemType = v.DataType()
			}
			nonNull = append(nonNull, v)
		}
	}
	col := column.New(elemType)
	for _, v := range values {
		col.Push(v)
	}
	return col, nonNull, nil
}
