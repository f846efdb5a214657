package table

import (
	"github.com/imgajeed76/lttable/internal/fetch"
)

// State is the interaction state of one table. Every operation returns a
// new State and leaves the receiver untouched, so the model can compare the
// query before and after an update.
type State struct {
	Page           int
	SearchQuery    string
	OpenFilter     string // data path of the column whose popover is open, "" for none
	ActiveFilters  fetch.Filters
	SortBy         string
	SortDirection  fetch.Direction
	LastSortedPath string
}

// NewState returns the state a table mounts with: page 1, no search, no
// filters, unsorted, descending.
func NewState() State {
	return State{
		Page:          1,
		ActiveFilters: fetch.Filters{},
		SortDirection: fetch.DefaultDirection,
	}
}

// ChangeSearch replaces the search text. The page is left alone.
func (s State) ChangeSearch(query string) State {
	s.SearchQuery = query
	return s
}

// ChangePage stores page as given. Bounds are the paginator's business;
// only values below 1 are refused since the page is always positive.
func (s State) ChangePage(page int) State {
	if page < 1 {
		return s
	}
	s.Page = page
	return s
}

// ToggleFilterPopover closes the popover of dataPath if it is the open one,
// otherwise opens it in place of any other.
func (s State) ToggleFilterPopover(dataPath string) State {
	if s.OpenFilter == dataPath {
		s.OpenFilter = ""
	} else {
		s.OpenFilter = dataPath
	}
	return s
}

// CommitColumnFilters replaces the filter list of dataPath with the selected
// values of selection, in selection order. Other columns keep their lists.
func (s State) CommitColumnFilters(dataPath string, selection []Choice) State {
	filters := s.ActiveFilters.Clone()

	seen := make(map[string]bool, len(selection))
	values := make([]string, 0, len(selection))
	for _, c := range selection {
		if c.Selected && !seen[c.Value] {
			seen[c.Value] = true
			values = append(values, c.Value)
		}
	}
	filters[dataPath] = values

	s.ActiveFilters = filters
	return s
}

// SortByColumn sorts by dataPath. A column other than the last sorted one
// starts descending; sorting the same column again flips the direction.
func (s State) SortByColumn(dataPath string) State {
	if dataPath != s.LastSortedPath {
		s.LastSortedPath = dataPath
		s.SortBy = dataPath
		s.SortDirection = fetch.DefaultDirection
		return s
	}
	s.SortDirection = s.SortDirection.Flip()
	return s
}

// Query derives the fetch query for apiURL.
func (s State) Query(apiURL string) fetch.Query {
	return fetch.Query{
		Page:          s.Page,
		APIURL:        apiURL,
		SearchQuery:   s.SearchQuery,
		ActiveFilters: s.ActiveFilters.Clone(),
		SortBy:        s.SortBy,
		SortDirection: s.SortDirection,
	}
}

// FilterActive reports whether dataPath has at least one selected value.
func (s State) FilterActive(dataPath string) bool {
	return len(s.ActiveFilters[dataPath]) > 0
}
