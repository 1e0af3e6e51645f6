// Package yqerr defines the error kinds shared across the execution
// runtime (value, column, table, eval, session). Every kind carries enough
// context to format a useful message and supports errors.As for callers
// that want to branch on the failure category instead of matching strings.
package yqerr

import "fmt"

// ColumnNotFoundError is returned when the evaluator cannot resolve a
// column reference against the active schema, variables, or struct
// qualifiers.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %s", e.Name)
}

// InvalidQueryError represents a type mismatch or semantic error inside an
// operator, e.g. "AND requires boolean operands", an out-of-range cast, or
// an out-of-bounds array access.
type InvalidQueryError struct {
	Msg string
}

func (e *InvalidQueryError) Error() string {
	return e.Msg
}

// NewInvalidQuery builds an InvalidQueryError with a formatted message.
func NewInvalidQuery(format string, args ...any) error {
	return &InvalidQueryError{Msg: fmt.Sprintf(format, args...)}
}

// TypeMismatchError is returned by Column.Extend when the two columns
// being merged carry different variants.
type TypeMismatchError struct {
	Left  string
	Right string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s vs %s", e.Left, e.Right)
}

// UnsupportedFeatureError marks a feature the core deliberately does not
// implement: SQL-bodied UDFs without a host runtime, ALTER variants
// outside the explicit matrix, type-change conversions outside the
// supported pairs, foreign-language UDFs when no runtime is registered.
type UnsupportedFeatureError struct {
	Msg string
}

func (e *UnsupportedFeatureError) Error() string {
	return "unsupported feature: " + e.Msg
}

// NewUnsupported builds an UnsupportedFeatureError with a formatted message.
func NewUnsupported(format string, args ...any) error {
	return &UnsupportedFeatureError{Msg: fmt.Sprintf(format, args...)}
}

// InternalError marks an invariant violation: a filter mask that isn't
// boolean, a plan node the session has no handler for, a catalog
// operation whose semantic failure doesn't deserve its own type.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Msg
}

// NewInternal builds an InternalError with a formatted message.
func NewInternal(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// RegexError wraps a LIKE pattern that failed to compile once translated
// to a regular expression.
type RegexError struct {
	Pattern string
	Reason  string
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("invalid LIKE pattern %q: %s", e.Pattern, e.Reason)
}
