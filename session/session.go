// Package session implements the process-wide SQL session: it owns the
// catalog, dispatches logical plan nodes to either a query execution
// path or a catalog mutation, and returns batches of result rows.
package session

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yachtsql/catalog"
	"yachtsql/eval"
	"yachtsql/plan"
	"yachtsql/table"
	"yachtsql/yqerr"
)

// Planner is the external collaborator that lexes, parses, and lowers
// SQL text into a logical plan. The session carries no SQL frontend of
// its own.
type Planner interface {
	ParseAndPlan(ctx context.Context, sql string) (plan.Node, error)
}

// PhysicalExecutor is the plug point for the non-trivial physical
// operators (join, grouped aggregation, window, set operation, qualify,
// sample). The session executes the node's children first and hands the
// materialized input tables over; the executor returns the operator's
// output table.
type PhysicalExecutor interface {
	Execute(ctx context.Context, node plan.Node, inputs []*table.Table) (*table.Table, error)
}

// Session drives SQL end to end: ExecuteSQL hands text to the planner,
// ExecutePlan walks the lowered tree. All catalog state lives in the
// embedded catalog; the session itself is safe for concurrent use.
type Session struct {
	catalog  *catalog.Catalog
	planner  Planner
	physical PhysicalExecutor
	runtime  eval.ExternalRuntime
	logger   *zap.Logger
	cfg      Config
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithPlanner attaches the SQL frontend.
func WithPlanner(p Planner) Option { return func(s *Session) { s.planner = p } }

// WithPhysicalExecutor attaches the physical operator runtime.
func WithPhysicalExecutor(p PhysicalExecutor) Option { return func(s *Session) { s.physical = p } }

// WithExternalRuntime attaches the JS/Python UDF invocation hook.
func WithExternalRuntime(rt eval.ExternalRuntime) Option { return func(s *Session) { s.runtime = rt } }

// WithLogger attaches a structured logger; nil falls back to a no-op.
func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.logger = l } }

// WithConfig applies a loaded configuration.
func WithConfig(cfg Config) Option { return func(s *Session) { s.cfg = cfg } }

// New builds a session with an empty catalog.
func New(opts ...Option) *Session {
	s := &Session{
		catalog: catalog.New(),
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cfg.LikeCacheCapacity > 0 {
		eval.SetLikeCacheCapacity(s.cfg.LikeCacheCapacity)
	}
	return s
}

// Catalog exposes the session's catalog for embedding hosts that want
// to register tables programmatically.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// ExecuteSQL parses sql through the registered planner and executes the
// resulting plan.
func (s *Session) ExecuteSQL(ctx context.Context, sql string) ([]*RecordBatch, error) {
	if s.planner == nil {
		return nil, yqerr.NewUnsupported("no planner registered with this session")
	}
	node, err := s.planner.ParseAndPlan(ctx, sql)
	if err != nil {
		return nil, err
	}
	return s.ExecutePlan(ctx, node)
}

// ExecutePlan dispatches one logical plan node: the query family is
// executed against the catalog's registered tables and collected into
// batches; the DDL/DML family mutates the catalog and returns no rows,
// except EXPLAIN, which returns its one-column plan batch.
func (s *Session) ExecutePlan(ctx context.Context, node plan.Node) ([]*RecordBatch, error) {
	queryID := uuid.NewString()
	log := s.logger.With(zap.String("query_id", queryID))

	if plan.IsQuery(node) {
		t, err := s.executeQuery(ctx, node)
		if err != nil {
			log.Warn("query failed", zap.Error(err))
			return nil, err
		}
		return s.batches(t), nil
	}

	batches, err := s.executeStatement(ctx, node, log)
	if err != nil {
		log.Warn("statement failed", zap.Error(err))
		return nil, err
	}
	return batches, nil
}

func (s *Session) executeStatement(ctx context.Context, node plan.Node, log *zap.Logger) ([]*RecordBatch, error) {
	switch n := node.(type) {
	case *plan.CreateTable:
		return nil, s.createTable(ctx, n, log)
	case *plan.DropTable:
		return nil, s.dropTable(n, log)
	case *plan.Insert:
		return nil, s.insert(ctx, n, log)
	case *plan.Update:
		return nil, s.update(ctx, n, log)
	case *plan.Delete:
		return nil, s.deleteFrom(ctx, n, log)
	case *plan.Truncate:
		return nil, s.truncate(n, log)
	case *plan.AlterTable:
		return nil, s.alterTable(n, log)
	case *plan.CreateView:
		return nil, s.createView(n, log)
	case *plan.DropView:
		return nil, s.dropView(n)
	case *plan.CreateSchema:
		return nil, s.catalog.CreateSchema(n.Name, n.IfNotExists)
	case *plan.DropSchema:
		return nil, s.catalog.DropSchema(n.Name, n.IfExists, n.Cascade)
	case *plan.CreateFunction:
		return nil, s.createFunction(n, log)
	case *plan.DropFunction:
		return nil, s.dropFunction(n)
	case *plan.Explain:
		return s.explain(ctx, n)
	case *plan.Begin, *plan.Commit, *plan.Rollback:
		// Transaction control is accepted and ignored.
		return nil, nil
	default:
		return nil, yqerr.NewInternal("plan node %T has no handler", node)
	}
}

// evaluator builds a ValueEvaluator bound to schema, carrying the
// catalog's function table and the session's external UDF runtime.
func (s *Session) evaluator(schema *table.Schema) *eval.ValueEvaluator {
	ev := eval.New(schema).WithUserFunctions(s.userFunctions())
	if s.runtime != nil {
		ev = ev.WithExternalRuntime(s.runtime)
	}
	return ev
}

// userFunctions converts the catalog's function definitions into the
// evaluator's user-function table.
func (s *Session) userFunctions() map[string]eval.UserFunction {
	defs := s.catalog.Functions()
	out := make(map[string]eval.UserFunction, len(defs))
	for name, d := range defs {
		params := make([]string, len(d.Args))
		for i, a := range d.Args {
			params[i] = a.Name
		}
		uf := eval.UserFunction{Params: params, ReturnType: d.ReturnType}
		switch d.BodyKind {
		case catalog.FunctionBodySQL:
			uf.Kind = eval.UserFunctionSQL
			uf.SQLBody = d.SQLBody
		case catalog.FunctionBodyJS:
			uf.Kind = eval.UserFunctionExternal
			uf.Language = "js"
			uf.Source = d.Source
		case catalog.FunctionBodyPython:
			uf.Kind = eval.UserFunctionExternal
			uf.Language = "python"
			uf.Source = d.Source
		}
		out[name] = uf
	}
	return out
}
