package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yachtsql/session"
	"yachtsql/value"
)

func sampleResult() *session.QueryResult {
	return &session.QueryResult{
		Schema: []session.ColumnInfo{
			{Name: "id", Type: value.Int64Type},
			{Name: "name", Type: value.StringType},
			{Name: "active", Type: value.BoolType},
		},
		Rows: []session.Row{
			{value.Int64(1), value.String("alice"), value.Bool(true)},
			{value.Int64(2), value.Null, value.Bool(false)},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)
	assert.IsType(t, humanFormatter{}, f)

	f, err = NewFormatter("JSON")
	require.NoError(t, err)
	assert.IsType(t, jsonFormatter{}, f)

	_, err = NewFormatter("yaml")
	assert.Error(t, err)
}

func TestHumanFormat(t *testing.T) {
	f := humanFormatter{}
	out, err := f.FormatResult(sampleResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, rule, two rows
	assert.Contains(t, lines[0], "id")
	assert.Contains(t, lines[0], "name")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[3], "NULL")
}

func TestHumanFormatEmpty(t *testing.T) {
	f := humanFormatter{}
	out, err := f.FormatResult(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSONFormat(t *testing.T) {
	f := jsonFormatter{}
	out, err := f.FormatResult(sampleResult())
	require.NoError(t, err)

	var payload struct {
		Format  string `json:"format"`
		Columns []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
		Rows [][]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "json", payload.Format)
	require.Len(t, payload.Columns, 3)
	assert.Equal(t, "INT64", payload.Columns[0].Type)
	assert.Equal(t, "BOOLEAN", payload.Columns[2].Type)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "alice", payload.Rows[0][1])
	assert.Nil(t, payload.Rows[1][1])
	assert.Equal(t, true, payload.Rows[0][2])
}
