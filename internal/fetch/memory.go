package fetch

import (
	"context"
	"slices"
	"strings"

	"github.com/imgajeed76/lttable/internal/record"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 10

// Memory serves rows from a fixed slice. It applies filters, search, sort
// and paging itself, so it behaves like a small API backend.
type Memory struct {
	records  []record.Record
	pageSize int
}

// NewMemory returns a Memory source over records.
func NewMemory(records []record.Record, pageSize int) *Memory {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Memory{records: records, pageSize: pageSize}
}

// Fetch implements Fetcher. The API URL is ignored.
func (m *Memory) Fetch(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	rows := Apply(m.records, q)
	start, end := PageBounds(q.Page, m.pageSize, len(rows))
	return Result{
		Rows:      rows[start:end],
		PageCount: PageCount(len(rows), m.pageSize),
	}, nil
}

// Apply filters, searches and sorts records for q without paging them. The
// input slice is not modified.
func Apply(records []record.Record, q Query) []record.Record {
	needle := strings.ToLower(strings.TrimSpace(q.SearchQuery))

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if !matchesFilters(r, q.ActiveFilters) {
			continue
		}
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		out = append(out, r)
	}

	if q.SortBy != "" {
		slices.SortStableFunc(out, func(a, b record.Record) int {
			av, _ := a.Get(q.SortBy)
			bv, _ := b.Get(q.SortBy)
			c := record.Compare(av, bv)
			if q.SortDirection == Descending {
				return -c
			}
			return c
		})
	}
	return out
}

func matchesFilters(r record.Record, filters Filters) bool {
	for key, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		v, ok := r.Get(key)
		if !ok || !slices.Contains(allowed, v.String()) {
			return false
		}
	}
	return true
}

func matchesSearch(r record.Record, needle string) bool {
	for _, f := range r.Fields() {
		if strings.Contains(strings.ToLower(f.Value.String()), needle) {
			return true
		}
	}
	return false
}
