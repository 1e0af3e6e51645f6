package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/table"
	"yachtsql/value"
)

func newTable(name string) *table.Table {
	return table.New(name, table.NewSchema([]table.Field{
		{Name: "id", Type: value.Int64Type},
	}))
}

func TestParseTableName(t *testing.T) {
	schema, tbl := ParseTableName("Sales.Orders")
	assert.Equal(t, "sales", schema)
	assert.Equal(t, "orders", tbl)

	schema, tbl = ParseTableName("Orders")
	assert.Equal(t, "", schema)
	assert.Equal(t, "orders", tbl)

	// Only the first dot splits.
	schema, tbl = ParseTableName("a.b.c")
	assert.Equal(t, "a", schema)
	assert.Equal(t, "b.c", tbl)
}

func TestTableRegistrationIsCaseInsensitive(t *testing.T) {
	c := New()
	c.RegisterTable("Orders", newTable("Orders"))

	_, ok := c.LookupTable("ORDERS")
	assert.True(t, ok)
	_, ok = c.LookupTable("orders")
	assert.True(t, ok)
	_, ok = c.LookupTable("customers")
	assert.False(t, ok)

	assert.True(t, c.DeregisterTable("oRdErS"))
	assert.False(t, c.DeregisterTable("orders"))
}

func TestTableNamesKeepRegistrationOrder(t *testing.T) {
	c := New()
	c.RegisterTable("b", newTable("b"))
	c.RegisterTable("a", newTable("a"))
	c.RegisterTable("c", newTable("c"))
	assert.Equal(t, []string{"b", "a", "c"}, c.TableNames())

	// Replacing does not move a table to the back.
	c.RegisterTable("A", newTable("a2"))
	assert.Equal(t, []string{"b", "a", "c"}, c.TableNames())
}

func TestViews(t *testing.T) {
	c := New()
	require.NoError(t, c.PutView(ViewDef{Name: "V", QuerySQL: "SELECT 1"}, false))
	err := c.PutView(ViewDef{Name: "v", QuerySQL: "SELECT 2"}, false)
	assert.Error(t, err)
	require.NoError(t, c.PutView(ViewDef{Name: "v", QuerySQL: "SELECT 2"}, true))

	def, ok := c.GetView("V")
	require.True(t, ok)
	assert.Equal(t, "SELECT 2", def.QuerySQL)

	assert.True(t, c.DropView("v"))
	assert.False(t, c.DropView("v"))
}

func TestDropSchemaCascade(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateSchema("sales", false))
	assert.Error(t, c.CreateSchema("SALES", false))
	require.NoError(t, c.CreateSchema("SALES", true))

	c.RegisterTable("sales.orders", newTable("orders"))
	c.RegisterTable("other", newTable("other"))

	err := c.DropSchema("sales", false, false)
	assert.Error(t, err)

	require.NoError(t, c.DropSchema("sales", false, true))
	assert.False(t, c.HasSchema("sales"))
	_, ok := c.LookupTable("sales.orders")
	assert.False(t, ok)
	_, ok = c.LookupTable("other")
	assert.True(t, ok)
}
