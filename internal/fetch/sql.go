package fetch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/imgajeed76/lttable/internal/util"
	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
)

// dialect holds what differs between the SQL sources.
type dialect struct {
	name  string
	bind  int    // sqlx bind type
	like  string // case-insensitive LIKE operator
	quote func(ident ...string) string
	// boolText stores booleans as "true"/"false" so they cast to the same
	// text the other sources filter on.
	boolText bool
}

var postgresDialect = dialect{
	name: "postgres",
	bind: sqlx.DOLLAR,
	like: "ILIKE",
	quote: func(ident ...string) string {
		return pgx.Identifier(ident).Sanitize()
	},
}

var sqliteDialect = dialect{
	name:     "sqlite3",
	bind:     sqlx.QUESTION,
	like:     "LIKE",
	boolText: true,
	quote: func(ident ...string) string {
		parts := make([]string, len(ident))
		for i, p := range ident {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
		return strings.Join(parts, ".")
	},
}

// selectPlan is a paged SELECT and its matching COUNT.
type selectPlan struct {
	Query      string
	Args       []any
	CountQuery string
	CountArgs  []any
}

// tableIdent turns an API URL such as "/comments" or "public.comments"
// into identifier parts.
func tableIdent(apiURL string) ([]string, error) {
	name := strings.TrimSpace(apiURL)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.Trim(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return nil, fmt.Errorf("api url %q does not name a table", apiURL)
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("api url %q does not name a table", apiURL)
		}
	}
	return parts, nil
}

// buildSelect renders q as SQL for d. Only the given columns may be
// selected, sorted or filtered on.
func buildSelect(d dialect, q Query, columns []string, pageSize int) (selectPlan, error) {
	if len(columns) == 0 {
		return selectPlan{}, util.ErrNoColumns
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	table, err := tableIdent(q.APIURL)
	if err != nil {
		return selectPlan{}, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}

	var where []string
	var args []any

	for _, key := range q.ActiveFilters.Keys() {
		vals := q.ActiveFilters[key]
		if len(vals) == 0 {
			continue
		}
		if !slices.Contains(columns, key) {
			return selectPlan{}, fmt.Errorf("filter on %q: %w", key, util.ErrUnknownColumn)
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
		where = append(where, fmt.Sprintf("CAST(%s AS TEXT) IN (%s)", d.quote(key), marks))
		for _, v := range vals {
			args = append(args, v)
		}
	}

	if needle := strings.TrimSpace(q.SearchQuery); needle != "" {
		pattern := "%" + escapeLike(needle) + "%"
		var ors []string
		for _, c := range quoted {
			ors = append(ors, fmt.Sprintf(`CAST(%s AS TEXT) %s ? ESCAPE '\'`, c, d.like))
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	from := " FROM " + d.quote(table...)
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	countArgs := append([]any(nil), args...)
	countQuery := "SELECT COUNT(*)" + from

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(from)
	if q.SortBy != "" {
		if !slices.Contains(columns, q.SortBy) {
			return selectPlan{}, fmt.Errorf("sort by %q: %w", q.SortBy, util.ErrUnknownColumn)
		}
		dir := "DESC"
		if q.SortDirection == Ascending {
			dir = "ASC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", d.quote(q.SortBy), dir)
	}
	sb.WriteString(" LIMIT ? OFFSET ?")

	page := q.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	return selectPlan{
		Query:      sqlx.Rebind(d.bind, sb.String()),
		Args:       args,
		CountQuery: sqlx.Rebind(d.bind, countQuery),
		CountArgs:  countArgs,
	}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
