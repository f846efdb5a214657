package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout lttable
var (
	ErrConfigNotFound    = errors.New("table config not found")
	ErrUnknownSource     = errors.New("unknown data source")
	ErrNoColumns         = errors.New("no columns configured")
	ErrNoRowIdentifier   = errors.New("row identifier not configured")
	ErrNotConnected      = errors.New("not connected to database")
	ErrInvalidFilter     = errors.New("invalid filter expression")
	ErrInvalidDirection  = errors.New("sort direction must be asc or desc")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnexpectedPayload = errors.New("unexpected response payload")
)

// TableError is a structured error with context and suggestions
type TableError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *TableError) Error() string {
	if e.Err != nil {
		return e.Title + ": " + e.Err.Error()
	}
	return e.Title
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *TableError) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}
	if e.Err != nil && e.Message == "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Err))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new TableError
func NewError(title string) *TableError {
	return &TableError{Title: title}
}

// WithMessage adds a detailed message
func (e *TableError) WithMessage(msg string) *TableError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *TableError) WithContext(ctx string) *TableError {
	e.Context = ctx
	return e
}

// WithCause adds a possible cause
func (e *TableError) WithCause(cause string) *TableError {
	e.Causes = append(e.Causes, cause)
	return e
}

// WithCauses adds multiple possible causes
func (e *TableError) WithCauses(causes ...string) *TableError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestion adds an actionable suggestion
func (e *TableError) WithSuggestion(sug string) *TableError {
	e.Suggestions = append(e.Suggestions, sug)
	return e
}

// WithSuggestions adds multiple suggestions
func (e *TableError) WithSuggestions(sugs ...string) *TableError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *TableError) Wrap(err error) *TableError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// ConfigNotFoundError reports a missing table config file
func ConfigNotFoundError(path string) *TableError {
	return NewError("Table config not found").
		WithContext(path).
		WithSuggestions(
			"lttable config --init  # Write a default config",
			"lttable --config <file> browse",
		).
		Wrap(ErrConfigNotFound)
}

// UnknownSourceError reports a source kind the CLI cannot build
func UnknownSourceError(kind string) *TableError {
	return NewError(fmt.Sprintf("Unknown data source '%s'", kind)).
		WithMessage("source.kind must be one of: memory, http, postgres, sqlite").
		WithSuggestion("lttable config source.kind memory").
		Wrap(ErrUnknownSource)
}

// DatabaseConnectionError returns a structured error for DB connection issues
func DatabaseConnectionError(dsn string, err error) *TableError {
	return NewError("Cannot connect to database").
		WithContext(dsn).
		WithCauses(
			"Database server is not running",
			"Invalid connection credentials",
			"Database file or table does not exist",
		).
		WithSuggestions(
			"lttable seed           # Load the demo rows into the configured database",
			"lttable config source.dsn <dsn>",
		).
		Wrap(err)
}

// FetchError describes a failed page fetch
func FetchError(target string, err error) *TableError {
	return NewError("Fetch failed").
		WithContext(target).
		WithCauses(
			"The API is unreachable",
			"The API returned a payload that is not a list of rows",
		).
		Wrap(err)
}

// InvalidFilterError reports a malformed --filter flag
func InvalidFilterError(expr string) *TableError {
	return NewError(fmt.Sprintf("Invalid filter '%s'", expr)).
		WithMessage("Filters are written as <column>=<value>").
		WithSuggestion("lttable query --filter email=Dallas@ole.me").
		Wrap(ErrInvalidFilter)
}

// UnknownColumnError reports a column that is not in the table config
func UnknownColumnError(name string) *TableError {
	return NewError(fmt.Sprintf("Unknown column '%s'", name)).
		WithSuggestion("lttable config --list  # Show configured columns").
		Wrap(ErrUnknownColumn)
}

// MissingArgumentError returns an error for missing required argument
func MissingArgumentError(argName, example string) *TableError {
	e := NewError(fmt.Sprintf("Missing required argument: <%s>", argName))
	if example != "" {
		e.WithSuggestion(example)
	}
	return e
}
