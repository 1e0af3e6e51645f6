package ddlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/table"
	"yachtsql/value"
)

func TestParseCreateTable(t *testing.T) {
	p := NewParser()
	defs, err := p.Parse(`
		CREATE TABLE users (
			id BIGINT NOT NULL,
			name VARCHAR(255),
			score DOUBLE,
			balance DECIMAL(10,2),
			active BOOL DEFAULT TRUE,
			joined DATETIME,
			payload JSON
		);
	`)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "users", def.Name)
	require.Equal(t, 7, def.Schema.Len())

	id, ok := def.Schema.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, value.KindInt64, id.Type.Kind)
	assert.Equal(t, table.ModeRequired, id.Mode)

	name, _ := def.Schema.Lookup("name")
	assert.Equal(t, value.KindString, name.Type.Kind)
	assert.Equal(t, table.ModeNullable, name.Mode)

	score, _ := def.Schema.Lookup("score")
	assert.Equal(t, value.KindFloat64, score.Type.Kind)

	balance, _ := def.Schema.Lookup("balance")
	assert.Equal(t, value.KindNumeric, balance.Type.Kind)

	active, _ := def.Schema.Lookup("active")
	assert.Equal(t, value.KindBool, active.Type.Kind)
	require.NotNil(t, active.DefaultValue)
	b, ok := active.DefaultValue.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	joined, _ := def.Schema.Lookup("joined")
	assert.Equal(t, value.KindDateTime, joined.Type.Kind)

	payload, _ := def.Schema.Lookup("payload")
	assert.Equal(t, value.KindJSON, payload.Type.Kind)
}

func TestParseSkipsNonCreateStatements(t *testing.T) {
	p := NewParser()
	defs, err := p.Parse(`
		DROP TABLE IF EXISTS old_users;
		CREATE TABLE t (n INT);
	`)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "t", defs[0].Name)
}

func TestParseQualifiedNameAndCollation(t *testing.T) {
	p := NewParser()
	defs, err := p.Parse("CREATE TABLE sales.orders (note TEXT COLLATE utf8mb4_general_ci);")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "sales.orders", defs[0].Name)

	note, _ := defs[0].Schema.Lookup("note")
	assert.Equal(t, "unicode:ci", note.Collation)
}

func TestParseError(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("CREATE TABLE (")
	assert.Error(t, err)
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]value.Kind{
		"BIGINT":       value.KindInt64,
		"varchar(64)":  value.KindString,
		"tinyint(1)":   value.KindBool,
		"timestamp":    value.KindTimestamp,
		"datetime(6)":  value.KindDateTime,
		"mediumblob":   value.KindBytes,
		"enum('a','b')": value.KindString,
	}
	for raw, kind := range cases {
		assert.Equal(t, kind, normalizeType(raw).Kind, raw)
	}
}
