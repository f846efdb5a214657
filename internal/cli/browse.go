package cli

import (
	"context"
	"os"

	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/ui/table"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive table",
		Long: `Open the interactive table for the configured source.

Keys:
  ←/→           Select column
  ↑/↓           Select row
  s / enter     Sort by the selected column (desc, then asc)
  f             Open the filter popover of the selected column
  /             Edit the search, enter to submit
  [ / ]         Previous / next page
  1-9, 0        Go to page 1-9, 10
  y / Y         Copy cell / row
  J / R / P     Quit and print the page as JSON / raw / table
  esc           Dismiss a fetch error, close a popover
  q             Quit

When stdout is not a terminal the first page is printed instead.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	cmd.Flags().StringP("search", "s", "", "Start with this search text")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")

	cfg, err := loadTableConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fetcher, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := tableOptions(cfg, fetcher)
	opts.InitialSearch = search

	if !table.IsTerminal() {
		// Same query the table issues on mount
		q := table.NewState().ChangeSearch(search).Query(cfg.APIURL)
		res, err := fetcher.Fetch(fetch.WithRequestID(ctx, util.NewULID()), q)
		if err != nil {
			return util.FetchError(describeSource(cfg), err)
		}
		return table.DisplayResults(os.Stdout, cfg.Columns, res.Rows, table.DisplayOptions{})
	}

	logger.Log.Infof("browsing %s", describeSource(cfg))
	return table.Run(opts)
}
