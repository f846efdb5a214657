package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imgajeed76/lttable/internal/config"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/ui"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/ui/table"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Fetch one page and print it",
		Long: `Fetch a single page with the same query the interactive table would
issue, and print it.

Examples:
  lttable query                                   # Page 1
  lttable query --page 2 --sort email --dir asc
  lttable query --search fugit --filter postId=2 --filter postId=3
  lttable query --json | jq '.[].email'`,
		Args: cobra.NoArgs,
		RunE: runQuery,
	}

	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().StringP("search", "s", "", "Search text")
	cmd.Flags().StringArrayP("filter", "f", nil, "Filter as <column>=<value> (repeatable)")
	cmd.Flags().String("sort", "", "Column to sort by")
	cmd.Flags().String("dir", string(fetch.DefaultDirection), "Sort direction (asc or desc)")
	cmd.Flags().Bool("json", false, "Output results as JSON array")
	cmd.Flags().Bool("raw", false, "Output raw tab-separated values (for piping)")

	return cmd
}

// queryFlags are the query command's inputs before validation.
type queryFlags struct {
	page    int
	search  string
	filters []string
	sortBy  string
	dir     string
}

func runQuery(cmd *cobra.Command, args []string) error {
	var qf queryFlags
	qf.page, _ = cmd.Flags().GetInt("page")
	qf.search, _ = cmd.Flags().GetString("search")
	qf.filters, _ = cmd.Flags().GetStringArray("filter")
	qf.sortBy, _ = cmd.Flags().GetString("sort")
	qf.dir, _ = cmd.Flags().GetString("dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	raw, _ := cmd.Flags().GetBool("raw")

	cfg, err := loadTableConfig(cmd)
	if err != nil {
		return err
	}
	q, err := buildQuery(cfg, qf)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	defer cancel()

	fetcher, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	spinner := ui.NewSpinner(fmt.Sprintf("Fetching %s", styles.Cyan(describeSource(cfg))))
	spinner.Start()
	res, err := fetcher.Fetch(fetch.WithRequestID(ctx, util.NewULID()), q)
	spinner.Stop()
	if err != nil {
		return util.FetchError(describeSource(cfg), err)
	}

	if err := table.DisplayResults(os.Stdout, cfg.Columns, res.Rows, table.DisplayOptions{JSON: jsonOutput, Raw: raw}); err != nil {
		return err
	}
	if !jsonOutput && !raw && res.PageCount > 0 {
		fmt.Println(styles.Mutef("page %s of %s", humanize.Comma(int64(q.Page)), humanize.Comma(int64(res.PageCount))))
	}
	return nil
}

// buildQuery validates the flags against the config and assembles the
// query the table would issue for the same state.
func buildQuery(cfg *config.Config, qf queryFlags) (fetch.Query, error) {
	if qf.page < 1 {
		return fetch.Query{}, util.NewError(fmt.Sprintf("Invalid page %d", qf.page)).
			WithMessage("Pages start at 1")
	}

	dir, err := fetch.ParseDirection(qf.dir)
	if err != nil {
		return fetch.Query{}, util.NewError(fmt.Sprintf("Invalid sort direction '%s'", qf.dir)).
			WithSuggestion("lttable query --sort email --dir asc").
			Wrap(err)
	}

	state := table.NewState().ChangePage(qf.page).ChangeSearch(qf.search)

	if qf.sortBy != "" {
		col, ok := cfg.Column(qf.sortBy)
		if !ok {
			return fetch.Query{}, util.UnknownColumnError(qf.sortBy)
		}
		if !col.Sortable {
			return fetch.Query{}, util.NewError(fmt.Sprintf("Column '%s' is not sortable", qf.sortBy))
		}
		state = state.SortByColumn(col.DataPath)
		state.SortDirection = dir
	}

	filters := fetch.Filters{}
	for _, expr := range qf.filters {
		path, value, ok := strings.Cut(expr, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return fetch.Query{}, util.InvalidFilterError(expr)
		}
		if _, ok := cfg.Column(path); !ok {
			return fetch.Query{}, util.UnknownColumnError(path)
		}
		filters[path] = append(filters[path], value)
	}
	for path, values := range filters {
		choices := make([]table.Choice, len(values))
		for i, v := range values {
			choices[i] = table.Choice{Value: v, Selected: true}
		}
		state = state.CommitColumnFilters(path, choices)
	}

	return state.Query(cfg.APIURL), nil
}
