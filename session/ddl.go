package session

import (
	"context"

	"go.uber.org/zap"

	"yachtsql/catalog"
	"yachtsql/column"
	"yachtsql/eval"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

func (s *Session) createTable(ctx context.Context, n *plan.CreateTable, log *zap.Logger) error {
	if s.catalog.HasTable(n.TableName) {
		if n.IfNotExists {
			return nil
		}
		if !n.OrReplace {
			return yqerr.NewInternal("table %s already exists", n.TableName)
		}
		s.catalog.DeregisterTable(n.TableName)
	}

	var t *table.Table
	if n.Query != nil {
		result, err := s.executeQuery(ctx, n.Query)
		if err != nil {
			return err
		}
		result.Name = n.TableName
		t = result
	} else {
		fields := make([]table.Field, len(n.Columns))
		for i, c := range n.Columns {
			mode := table.ModeNullable
			if !c.Nullable {
				mode = table.ModeRequired
			}
			collation := c.Collation
			if collation == "" && c.Type.Kind == value.KindString {
				collation = s.cfg.DefaultCollation
			}
			fields[i] = table.Field{
				Name:         c.Name,
				Type:         c.Type,
				Mode:         mode,
				DefaultValue: c.Default,
				Collation:    collation,
			}
		}
		t = table.New(n.TableName, table.NewSchema(fields))
	}
	s.catalog.RegisterTable(n.TableName, t)
	log.Info("created table", zap.String("table", n.TableName), zap.Int("rows", t.RowCount()))
	return nil
}

func (s *Session) dropTable(n *plan.DropTable, log *zap.Logger) error {
	for _, name := range n.TableNames {
		if !s.catalog.DeregisterTable(name) && !n.IfExists {
			return yqerr.NewInternal("table %s not found", name)
		}
		log.Info("dropped table", zap.String("table", name))
	}
	return nil
}

func (s *Session) insert(ctx context.Context, n *plan.Insert, log *zap.Logger) error {
	target, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		return yqerr.NewInternal("table %s not found", n.TableName)
	}
	src, err := s.executeQuery(ctx, n.Source)
	if err != nil {
		return err
	}

	schema := target.Schema()
	// Positions[k] is the schema index the k-th source column lands in.
	positions := make([]int, 0, schema.Len())
	if len(n.Columns) > 0 {
		for _, name := range n.Columns {
			idx := schema.IndexOf(name)
			if idx < 0 {
				return &yqerr.ColumnNotFoundError{Name: name}
			}
			positions = append(positions, idx)
		}
	} else {
		if src.Schema().Len() != schema.Len() {
			return yqerr.NewInvalidQuery("INSERT has %d columns but table %s has %d",
				src.Schema().Len(), n.TableName, schema.Len())
		}
		for i := 0; i < schema.Len(); i++ {
			positions = append(positions, i)
		}
	}

	merged := target.Clone()
	for i := 0; i < src.RowCount(); i++ {
		rec, err := src.GetRow(i)
		if err != nil {
			return err
		}
		row, err := buildInsertRow(schema, positions, rec.Values)
		if err != nil {
			return err
		}
		if err := merged.PushRow(row); err != nil {
			return err
		}
	}
	s.catalog.RegisterTable(n.TableName, merged)
	log.Info("inserted rows", zap.String("table", n.TableName), zap.Int("rows", src.RowCount()))
	return nil
}

// buildInsertRow widens one source row to the full target arity: listed
// columns are cast to their declared types, everything else takes the
// column default or NULL, and the DEFAULT sentinel resolves the same
// way.
func buildInsertRow(schema *table.Schema, positions []int, src []value.Value) ([]value.Value, error) {
	row := make([]value.Value, schema.Len())
	for c := range row {
		row[c] = value.Default
	}
	for k, idx := range positions {
		if k < len(src) {
			row[idx] = src[k]
		}
	}
	for c := range row {
		f, _ := schema.FieldAt(c)
		v := row[c]
		if v.IsDefault() {
			if f.DefaultValue != nil {
				v = *f.DefaultValue
			} else {
				v = value.Null
			}
		}
		if !v.IsNull() {
			cast, err := eval.CastValue(v, f.Type)
			if err != nil {
				return nil, err
			}
			v = cast
		}
		if v.IsNull() && f.Mode == table.ModeRequired {
			return nil, yqerr.NewInvalidQuery("cannot insert NULL into REQUIRED column %s", f.Name)
		}
		row[c] = v
	}
	return row, nil
}

func (s *Session) update(ctx context.Context, n *plan.Update, log *zap.Logger) error {
	target, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		return yqerr.NewInternal("table %s not found", n.TableName)
	}
	updated := target.Clone()
	schema := updated.Schema()
	ev := s.evaluator(schema)

	// Resolve assignment targets once.
	assignIdx := make([]int, len(n.Assignments))
	for i, a := range n.Assignments {
		idx := schema.IndexOf(a.Column)
		if idx < 0 {
			return &yqerr.ColumnNotFoundError{Name: a.Column}
		}
		assignIdx[i] = idx
	}

	touched := 0
	for i := 0; i < updated.RowCount(); i++ {
		rec, err := updated.GetRow(i)
		if err != nil {
			return err
		}
		if n.Filter != nil {
			v, err := ev.Evaluate(n.Filter, rec)
			if err != nil {
				return err
			}
			if b, ok := v.AsBool(); !ok || !b {
				continue
			}
		}
		// Assignments all see the pre-update row.
		row := make([]value.Value, len(rec.Values))
		copy(row, rec.Values)
		for k, a := range n.Assignments {
			v, err := ev.Evaluate(a.Value, rec)
			if err != nil {
				return err
			}
			f, _ := schema.FieldAt(assignIdx[k])
			if v.IsDefault() {
				if f.DefaultValue != nil {
					v = *f.DefaultValue
				} else {
					v = value.Null
				}
			}
			if !v.IsNull() {
				v, err = eval.CastValue(v, f.Type)
				if err != nil {
					return err
				}
			}
			row[assignIdx[k]] = v
		}
		if err := updated.UpdateRow(i, row); err != nil {
			return err
		}
		touched++
	}
	s.catalog.RegisterTable(n.TableName, updated)
	log.Info("updated rows", zap.String("table", n.TableName), zap.Int("rows", touched))
	return nil
}

func (s *Session) deleteFrom(ctx context.Context, n *plan.Delete, log *zap.Logger) error {
	target, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		return yqerr.NewInternal("table %s not found", n.TableName)
	}
	ev := s.evaluator(target.Schema())
	// A row is retained unless the filter evaluates to TRUE; a NULL
	// filter result keeps the row, matching three-valued DELETE
	// semantics.
	mask := column.New(value.BoolType)
	for i := 0; i < target.RowCount(); i++ {
		keep := n.Filter != nil
		if n.Filter != nil {
			rec, err := target.GetRow(i)
			if err != nil {
				return err
			}
			v, err := ev.Evaluate(n.Filter, rec)
			if err != nil {
				return err
			}
			if b, ok := v.AsBool(); ok && b {
				keep = false
			}
		}
		mask.Push(value.Bool(keep))
	}
	retained, err := target.FilterByMask(mask)
	if err != nil {
		return err
	}
	s.catalog.RegisterTable(n.TableName, retained)
	log.Info("deleted rows", zap.String("table", n.TableName),
		zap.Int("rows", target.RowCount()-retained.RowCount()))
	return nil
}

func (s *Session) truncate(n *plan.Truncate, log *zap.Logger) error {
	target, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		return yqerr.NewInternal("table %s not found", n.TableName)
	}
	empty := table.New(target.Name, target.Schema())
	s.catalog.RegisterTable(n.TableName, empty)
	log.Info("truncated table", zap.String("table", n.TableName))
	return nil
}

func (s *Session) alterTable(n *plan.AlterTable, log *zap.Logger) error {
	target, ok := s.catalog.LookupTable(n.TableName)
	if !ok {
		if n.IfExists {
			return nil
		}
		return yqerr.NewInternal("table %s not found", n.TableName)
	}
	altered := target.Clone()
	op := n.Operation
	var err error
	switch op.Kind {
	case plan.AlterAddColumn:
		if op.NewColumn == nil {
			return yqerr.NewInternal("ADD COLUMN without a column definition")
		}
		mode := table.ModeNullable
		if !op.NewColumn.Nullable {
			mode = table.ModeRequired
		}
		altered.AddColumn(table.Field{
			Name:      op.NewColumn.Name,
			Type:      op.NewColumn.Type,
			Mode:      mode,
			Collation: op.NewColumn.Collation,
		}, op.NewColumn.Default)
	case plan.AlterDropColumn:
		err = altered.DropColumn(op.ColumnName)
	case plan.AlterRenameColumn:
		err = altered.RenameColumn(op.ColumnName, op.NewName)
	case plan.AlterSetNotNull:
		err = altered.SetColumnNotNull(op.ColumnName)
	case plan.AlterSetNullable:
		err = altered.SetColumnNullable(op.ColumnName)
	case plan.AlterSetDefault:
		err = altered.SetColumnDefault(op.ColumnName, op.Default)
	case plan.AlterSetCollation:
		err = altered.SetColumnCollation(op.ColumnName, op.Collation)
	case plan.AlterSetDataType:
		err = altered.SetColumnDataType(op.ColumnName, op.NewType)
	default:
		return yqerr.NewUnsupported("ALTER TABLE operation %d", op.Kind)
	}
	if err != nil {
		return err
	}
	s.catalog.RegisterTable(n.TableName, altered)
	log.Info("altered table", zap.String("table", n.TableName))
	return nil
}

func (s *Session) createView(n *plan.CreateView, log *zap.Logger) error {
	if _, exists := s.catalog.GetView(n.Name); exists && n.IfNotExists {
		return nil
	}
	def := catalog.ViewDef{Name: n.Name, QuerySQL: n.QuerySQL, ColumnAliases: n.ColumnAliases}
	if err := s.catalog.PutView(def, n.OrReplace); err != nil {
		return err
	}
	log.Info("created view", zap.String("view", n.Name))
	return nil
}

func (s *Session) dropView(n *plan.DropView) error {
	if !s.catalog.DropView(n.Name) && !n.IfExists {
		return yqerr.NewInternal("view %s not found", n.Name)
	}
	return nil
}

func (s *Session) createFunction(n *plan.CreateFunction, log *zap.Logger) error {
	if _, exists := s.catalog.GetFunction(n.Name); exists && n.IfNotExists {
		return nil
	}
	def := catalog.FunctionDef{
		Name:       n.Name,
		ReturnType: n.ReturnType,
		Source:     n.Body.Source,
		SQLBody:    n.Body.SQL,
	}
	for _, a := range n.Args {
		def.Args = append(def.Args, catalog.FunctionArg{Name: a.Name, Type: a.Type})
	}
	switch n.Body.Kind {
	case plan.FunctionBodySQL:
		def.BodyKind = catalog.FunctionBodySQL
	case plan.FunctionBodyJS:
		def.BodyKind = catalog.FunctionBodyJS
	case plan.FunctionBodyPython:
		def.BodyKind = catalog.FunctionBodyPython
	}
	if err := s.catalog.PutFunction(def, n.OrReplace); err != nil {
		return err
	}
	log.Info("created function", zap.String("function", n.Name))
	return nil
}

func (s *Session) dropFunction(n *plan.DropFunction) error {
	if !s.catalog.DropFunction(n.Name) && !n.IfExists {
		return yqerr.NewInternal("function %s not found", n.Name)
	}
	return nil
}
