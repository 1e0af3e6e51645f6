// Package output provides formatters for query results. It is
// extendable and for now provides two formats: human-readable tables
// and JSON.
package output

import (
	"fmt"
	"strings"

	"yachtsql/session"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// Formatter is an interface for rendering query results.
type Formatter interface {
	FormatResult(*session.QueryResult) (string, error)
}

// NewFormatter creates a Formatter for the given format name. An empty
// name defaults to the human-readable table format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human' or 'json'", name)
	}
}
