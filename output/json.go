package output

import (
	"encoding/json"

	"yachtsql/session"
)

type jsonFormatter struct{}

type columnPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type resultPayload struct {
	Format  string          `json:"format"`
	Columns []columnPayload `json:"columns"`
	Rows    [][]any         `json:"rows"`
}

// FormatResult encodes the result as a JSON document: the schema as
// name/type pairs (legacy BigQuery type names), each row as an array of
// JSON-projected values.
func (jsonFormatter) FormatResult(res *session.QueryResult) (string, error) {
	payload := resultPayload{Format: string(FormatJSON), Rows: [][]any{}}
	if res != nil {
		for _, c := range res.Schema {
			payload.Columns = append(payload.Columns, columnPayload{Name: c.Name, Type: c.Type.ToBQType()})
		}
		for _, row := range res.Rows {
			cells := make([]any, len(row))
			for i, v := range row {
				cells[i] = v.ToJSON()
			}
			payload.Rows = append(payload.Rows, cells)
		}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
