package record

import (
	"fmt"
	"strconv"
	"time"
)

// Column describes one table column: where its data comes from and how it
// behaves in the header.
type Column struct {
	ID         int          `toml:"id" json:"id"`
	Title      string       `toml:"title" json:"title"`
	DataPath   string       `toml:"data_path" json:"dataPath"`
	Width      int          `toml:"width" json:"width"`
	Sortable   bool         `toml:"sortable" json:"sortable"`
	Filterable bool         `toml:"filterable" json:"filterable"`
	Filters    FilterValues `toml:"filters,omitempty" json:"filters,omitempty"`
}

// HasFilters reports whether the column shows a filter toggle: it must be
// filterable and have at least one candidate value.
func (c Column) HasFilters() bool {
	return c.Filterable && len(c.Filters) > 0
}

// Label returns the header text, falling back to the data path.
func (c Column) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.DataPath
}

// FilterValues is the ordered list of candidate filter values of a column.
// In TOML the candidates may be written as strings, numbers or booleans;
// they are kept as their display text.
type FilterValues []string

// UnmarshalTOML implements toml.Unmarshaler.
func (f *FilterValues) UnmarshalTOML(data any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("filters: expected array, got %T", data)
	}
	out := make(FilterValues, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case int64:
			out = append(out, strconv.FormatInt(v, 10))
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(v))
		case time.Time:
			out = append(out, v.Format(time.RFC3339))
		default:
			return fmt.Errorf("filters[%d]: unsupported value %T", i, item)
		}
	}
	*f = out
	return nil
}

// ValidateColumns checks that every column has a data path and that ids and
// data paths are unique.
func ValidateColumns(cols []Column) error {
	ids := make(map[int]bool, len(cols))
	paths := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c.DataPath == "" {
			return fmt.Errorf("column %d (%q): data path is required", i, c.Title)
		}
		if paths[c.DataPath] {
			return fmt.Errorf("column %d: duplicate data path %q", i, c.DataPath)
		}
		if ids[c.ID] {
			return fmt.Errorf("column %d (%q): duplicate id %d", i, c.DataPath, c.ID)
		}
		paths[c.DataPath] = true
		ids[c.ID] = true
	}
	return nil
}

// DataPaths returns the data path of every column, in order.
func DataPaths(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.DataPath
	}
	return out
}
