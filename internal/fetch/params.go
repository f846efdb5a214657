package fetch

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query string parameter names shared by the HTTP client and the demo
// server. Filters travel as one repeated "filter.<dataPath>" parameter per
// column.
const (
	ParamPage      = "page"
	ParamSearch    = "q"
	ParamSort      = "sort"
	ParamDirection = "dir"
	FilterPrefix   = "filter."
)

// EncodeParams converts a query into URL parameters. The API URL is not
// part of the parameters; it names the resource.
func EncodeParams(q Query) url.Values {
	values := url.Values{}
	values.Set(ParamPage, strconv.Itoa(q.Page))
	if q.SearchQuery != "" {
		values.Set(ParamSearch, q.SearchQuery)
	}
	if q.SortBy != "" {
		values.Set(ParamSort, q.SortBy)
	}
	if q.SortDirection != "" {
		values.Set(ParamDirection, string(q.SortDirection))
	}
	for _, key := range q.ActiveFilters.Keys() {
		for _, v := range q.ActiveFilters[key] {
			values.Add(FilterPrefix+key, v)
		}
	}
	return values
}

// DecodeParams is the inverse of EncodeParams. Missing page defaults to 1
// and missing direction to DefaultDirection.
func DecodeParams(values url.Values) (Query, error) {
	q := Query{
		Page:          1,
		SearchQuery:   values.Get(ParamSearch),
		SortBy:        values.Get(ParamSort),
		SortDirection: DefaultDirection,
		ActiveFilters: Filters{},
	}

	if raw := values.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Query{}, fmt.Errorf("invalid page %q", raw)
		}
		q.Page = page
	}
	if raw := values.Get(ParamDirection); raw != "" {
		dir, err := ParseDirection(raw)
		if err != nil {
			return Query{}, err
		}
		q.SortDirection = dir
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.HasPrefix(k, FilterPrefix) {
			continue
		}
		col := strings.TrimPrefix(k, FilterPrefix)
		if col == "" {
			return Query{}, fmt.Errorf("filter parameter without column")
		}
		q.ActiveFilters[col] = append([]string(nil), values[k]...)
	}
	return q, nil
}
