// Package catalog owns the session's registered state: tables, views,
// functions, and named schemas. Every map is guarded by its own
// read/write lock so concurrent readers never contend, and every lookup
// folds the name case-insensitively while the stored definition keeps
// the original casing for display.
package catalog

import (
	"strings"
	"sync"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// ViewDef records one registered view: the query text it was created
// from plus optional output column aliases.
type ViewDef struct {
	Name          string
	QuerySQL      string
	ColumnAliases []string
}

// FunctionBodyKind tags how a registered function body is invoked.
type FunctionBodyKind int

const (
	FunctionBodySQL FunctionBodyKind = iota
	FunctionBodyJS
	FunctionBodyPython
)

// FunctionArg is one declared parameter of a registered function.
type FunctionArg struct {
	Name string
	Type value.DataType
}

// FunctionDef records one registered scalar function.
type FunctionDef struct {
	Name       string
	Args       []FunctionArg
	ReturnType value.DataType
	BodyKind   FunctionBodyKind
	SQLBody    expr.Node // parsed scalar expression for SQL bodies
	Source     string    // raw body text for JS/Python
}

// Catalog is the process-wide registry a Session dispatches catalog
// mutations into. Table registration doubles as the execution context of
// the query family: Scan resolves table names against it.
type Catalog struct {
	tablesMu   sync.RWMutex
	tables     map[string]*table.Table
	tableOrder []string // folded names in registration order

	viewsMu sync.RWMutex
	views   map[string]ViewDef

	funcsMu sync.RWMutex
	funcs   map[string]FunctionDef

	schemasMu sync.RWMutex
	schemas   map[string]string // folded name -> original casing
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables:  make(map[string]*table.Table),
		views:   make(map[string]ViewDef),
		funcs:   make(map[string]FunctionDef),
		schemas: make(map[string]string),
	}
}

func foldName(s string) string { return strings.ToLower(s) }

// ParseTableName splits a possibly schema-qualified reference on the
// first dot and lowercases both halves; a bare reference yields an empty
// schema part.
func ParseTableName(name string) (schema, tbl string) {
	if i := strings.Index(name, "."); i >= 0 {
		return foldName(name[:i]), foldName(name[i+1:])
	}
	return "", foldName(name)
}

// --- tables -----------------------------------------------------------

// RegisterTable registers t under name, replacing any previous
// registration for the same folded name.
func (c *Catalog) RegisterTable(name string, t *table.Table) {
	key := foldName(name)
	c.tablesMu.Lock()
	defer c.tablesMu.Unlock()
	if _, exists := c.tables[key]; !exists {
		c.tableOrder = append(c.tableOrder, key)
	}
	c.tables[key] = t
}

// DeregisterTable removes the registration for name. It reports whether
// a table was actually removed.
func (c *Catalog) DeregisterTable(name string) bool {
	key := foldName(name)
	c.tablesMu.Lock()
	defer c.tablesMu.Unlock()
	if _, exists := c.tables[key]; !exists {
		return false
	}
	delete(c.tables, key)
	for i, k := range c.tableOrder {
		if k == key {
			c.tableOrder = append(c.tableOrder[:i], c.tableOrder[i+1:]...)
			break
		}
	}
	return true
}

// LookupTable resolves name (possibly schema-qualified) to a registered
// table.
func (c *Catalog) LookupTable(name string) (*table.Table, bool) {
	schema, tbl := ParseTableName(name)
	key := tbl
	if schema != "" {
		key = schema + "." + tbl
	}
	c.tablesMu.RLock()
	defer c.tablesMu.RUnlock()
	if t, ok := c.tables[key]; ok {
		return t, true
	}
	// A bare reference may still name a table registered with its
	// qualified name intact.
	t, ok := c.tables[foldName(name)]
	return t, ok
}

// HasTable reports whether name resolves to a registered table.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.LookupTable(name)
	return ok
}

// TableNames returns the folded names of all registered tables in
// registration order.
func (c *Catalog) TableNames() []string {
	c.tablesMu.RLock()
	defer c.tablesMu.RUnlock()
	out := make([]string, len(c.tableOrder))
	copy(out, c.tableOrder)
	return out
}

// --- views ------------------------------------------------------------

// PutView registers def under its name. With orReplace=false an existing
// view of the same folded name is an error.
func (c *Catalog) PutView(def ViewDef, orReplace bool) error {
	key := foldName(def.Name)
	c.viewsMu.Lock()
	defer c.viewsMu.Unlock()
	if _, exists := c.views[key]; exists && !orReplace {
		return yqerr.NewInternal("view %s already exists", def.Name)
	}
	c.views[key] = def
	return nil
}

// GetView resolves a view by name.
func (c *Catalog) GetView(name string) (ViewDef, bool) {
	c.viewsMu.RLock()
	defer c.viewsMu.RUnlock()
	def, ok := c.views[foldName(name)]
	return def, ok
}

// DropView removes a view; it reports whether one existed.
func (c *Catalog) DropView(name string) bool {
	key := foldName(name)
	c.viewsMu.Lock()
	defer c.viewsMu.Unlock()
	if _, exists := c.views[key]; !exists {
		return false
	}
	delete(c.views, key)
	return true
}

// --- functions --------------------------------------------------------

// PutFunction registers def under its name. With orReplace=false an
// existing function of the same folded name is an error.
func (c *Catalog) PutFunction(def FunctionDef, orReplace bool) error {
	key := foldName(def.Name)
	c.funcsMu.Lock()
	defer c.funcsMu.Unlock()
	if _, exists := c.funcs[key]; exists && !orReplace {
		return yqerr.NewInternal("function %s already exists", def.Name)
	}
	c.funcs[key] = def
	return nil
}

// GetFunction resolves a function by name.
func (c *Catalog) GetFunction(name string) (FunctionDef, bool) {
	c.funcsMu.RLock()
	defer c.funcsMu.RUnlock()
	def, ok := c.funcs[foldName(name)]
	return def, ok
}

// DropFunction removes a function; it reports whether one existed.
func (c *Catalog) DropFunction(name string) bool {
	key := foldName(name)
	c.funcsMu.Lock()
	defer c.funcsMu.Unlock()
	if _, exists := c.funcs[key]; !exists {
		return false
	}
	delete(c.funcs, key)
	return true
}

// Functions snapshots the whole function map, keyed by folded name. The
// session hands the snapshot to the evaluator as its user-function
// table.
func (c *Catalog) Functions() map[string]FunctionDef {
	c.funcsMu.RLock()
	defer c.funcsMu.RUnlock()
	out := make(map[string]FunctionDef, len(c.funcs))
	for k, v := range c.funcs {
		out[k] = v
	}
	return out
}

// --- schemas ----------------------------------------------------------

// CreateSchema registers a named child schema.
func (c *Catalog) CreateSchema(name string, ifNotExists bool) error {
	key := foldName(name)
	c.schemasMu.Lock()
	defer c.schemasMu.Unlock()
	if _, exists := c.schemas[key]; exists {
		if ifNotExists {
			return nil
		}
		return yqerr.NewInternal("schema %s already exists", name)
	}
	c.schemas[key] = name
	return nil
}

// HasSchema reports whether a schema of that name is registered.
func (c *Catalog) HasSchema(name string) bool {
	c.schemasMu.RLock()
	defer c.schemasMu.RUnlock()
	_, ok := c.schemas[foldName(name)]
	return ok
}

// SchemaTables returns the folded names of every table registered under
// the given schema (i.e. with a "schema." prefix).
func (c *Catalog) SchemaTables(name string) []string {
	prefix := foldName(name) + "."
	c.tablesMu.RLock()
	defer c.tablesMu.RUnlock()
	var out []string
	for _, k := range c.tableOrder {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// DropSchema removes a schema. Without cascade it fails when any table
// is still registered under the schema; with cascade those tables are
// deregistered along with it.
func (c *Catalog) DropSchema(name string, ifExists, cascade bool) error {
	key := foldName(name)
	c.schemasMu.Lock()
	_, exists := c.schemas[key]
	if !exists {
		c.schemasMu.Unlock()
		if ifExists {
			return nil
		}
		return yqerr.NewInternal("schema %s not found", name)
	}
	members := c.SchemaTables(name)
	if len(members) > 0 && !cascade {
		c.schemasMu.Unlock()
		return yqerr.NewInternal("schema %s is not empty; use CASCADE", name)
	}
	delete(c.schemas, key)
	c.schemasMu.Unlock()
	for _, m := range members {
		c.DeregisterTable(m)
	}
	return nil
}
