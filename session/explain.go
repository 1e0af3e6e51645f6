package session

import (
	"context"
	"fmt"

	"github.com/k0kubun/pp/v3"

	"yachtsql/column"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
)

// explain renders the lowered plan tree as a single-column `plan` batch.
// With ANALYZE the plan is also executed and the observed row count
// appended.
func (s *Session) explain(ctx context.Context, n *plan.Explain) ([]*RecordBatch, error) {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	text := printer.Sprint(n.Input)

	if n.Analyze && plan.IsQuery(n.Input) {
		t, err := s.executeQuery(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		text += fmt.Sprintf("\nrows: %d", t.RowCount())
	}

	schema := table.NewSchema([]table.Field{{Name: "plan", Type: value.StringType}})
	col := column.New(value.StringType)
	col.Push(value.String(text))
	return []*RecordBatch{{Schema: schema, Columns: []*column.Column{col}}}, nil
}
