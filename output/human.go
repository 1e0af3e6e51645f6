package output

import (
	"strings"

	"yachtsql/session"
)

type humanFormatter struct{}

// FormatResult renders the result as an aligned text table with a
// header row; NULL cells print as "NULL".
func (humanFormatter) FormatResult(res *session.QueryResult) (string, error) {
	if res == nil || len(res.Schema) == 0 {
		return "", nil
	}

	widths := make([]int, len(res.Schema))
	header := make([]string, len(res.Schema))
	for i, c := range res.Schema {
		header[i] = c.Name
		widths[i] = len(c.Name)
	}
	cells := make([][]string, len(res.Rows))
	for r, row := range res.Rows {
		cells[r] = make([]string, len(res.Schema))
		for i := range res.Schema {
			text := "NULL"
			if i < len(row) && !row[i].IsNull() {
				text = row[i].Display()
			}
			cells[r][i] = text
			if len(text) > widths[i] {
				widths[i] = len(text)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cols []string) {
		for i, c := range cols {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(c)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		}
		sb.WriteString("\n")
	}
	writeRow(header)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeRow(rule)
	for _, row := range cells {
		writeRow(row)
	}
	return sb.String(), nil
}
