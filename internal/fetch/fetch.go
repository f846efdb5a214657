// Package fetch defines the data-fetch collaborator a table calls whenever its
// query changes, together with the implementations lttable ships: an
// in-memory source, an HTTP client, SQL sources and a scripted stub.
//
// A table never interprets the query itself. Paging, search, filtering and
// sorting are entirely the fetcher's business.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/util"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"

	// DefaultDirection is applied whenever a new column is sorted.
	DefaultDirection = Descending
)

// ParseDirection accepts "asc" or "desc" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("%w: %q", util.ErrInvalidDirection, s)
}

// Flip returns the other direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Filters maps a column data path to its selected filter values. A column
// without an entry, or with an empty list, is not filtered.
type Filters map[string][]string

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Equal compares key sets and value lists, order included.
func (f Filters) Equal(o Filters) bool {
	if len(f) != len(o) {
		return false
	}
	for k, v := range f {
		ov, ok := o[k]
		if !ok || len(ov) != len(v) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}

// Keys returns the filtered data paths, sorted.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f Filters) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range f.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: [", k)
		for j, v := range f[k] {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", v)
		}
		sb.WriteByte(']')
	}
	sb.WriteByte('}')
	return sb.String()
}

// Query is the complete input to a fetch. Field order is the argument order
// of the collaborator contract.
type Query struct {
	Page          int
	APIURL        string
	SearchQuery   string
	ActiveFilters Filters
	SortBy        string
	SortDirection Direction
}

// Equal reports whether two queries would produce the same request.
func (q Query) Equal(o Query) bool {
	return q.Page == o.Page &&
		q.APIURL == o.APIURL &&
		q.SearchQuery == o.SearchQuery &&
		q.SortBy == o.SortBy &&
		q.SortDirection == o.SortDirection &&
		q.ActiveFilters.Equal(o.ActiveFilters)
}

// Clone returns a copy that shares no filter slices with q.
func (q Query) Clone() Query {
	q.ActiveFilters = q.ActiveFilters.Clone()
	return q
}

// String renders the query as its argument tuple.
func (q Query) String() string {
	return fmt.Sprintf("(%d, %q, %q, %s, %q, %q)",
		q.Page, q.APIURL, q.SearchQuery, q.ActiveFilters, q.SortBy, q.SortDirection)
}

// Result is one page of rows. PageCount is the total number of pages when
// the source knows it, at least 1, and 0 when it does not.
type Result struct {
	Rows      []record.Record
	PageCount int
}

// Fetcher loads one page of rows for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, q Query) (Result, error)

func (f FetcherFunc) Fetch(ctx context.Context, q Query) (Result, error) {
	return f(ctx, q)
}

type requestIDKey struct{}

// WithRequestID attaches a request id that fetchers forward and log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// PageCount returns the number of pages needed for total rows. An empty
// result still has one page, so 0 is left to mean unknown.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// PageBounds returns the [start, end) slice bounds of page within total rows.
func PageBounds(page, pageSize, total int) (int, int) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
