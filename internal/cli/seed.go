package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/imgajeed76/lttable/internal/config"
	"github.com/imgajeed76/lttable/internal/db"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/ui"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo rows into the configured database",
		Long: `Create the table named by api_url in the configured SQLite or
PostgreSQL database and insert the demo rows, so the SQL sources have
something to show.

Examples:
  lttable seed --kind sqlite --dsn comments.db
  lttable seed --kind postgres --dsn postgres://localhost/demo`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}

	cmd.Flags().String("kind", "", "sqlite or postgres (default: source.kind)")
	cmd.Flags().String("dsn", "", "Database DSN (default: source.dsn)")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath(cmd))
	if err != nil {
		return err
	}
	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		cfg.Source.Kind = kind
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.Source.DSN = dsn
	}
	if cfg.Source.Kind != config.SourceSQLite && cfg.Source.Kind != config.SourcePostgres {
		return util.NewError(fmt.Sprintf("Cannot seed source '%s'", cfg.Source.Kind)).
			WithMessage("Only sqlite and postgres sources hold their own data").
			WithSuggestion("lttable seed --kind sqlite --dsn comments.db")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := initLogging(cmd, cfg); err != nil {
		return err
	}

	ctx := context.Background()
	records := fixture.Comments()
	columns := record.DataPaths(cfg.Columns)

	progress := ui.NewProgress("Seeding", len(records))
	report := fetch.Progress(progress.Update)

	var n int
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		conn, err := fetch.OpenSQLite(cfg.Source.DSN)
		if err != nil {
			return util.DatabaseConnectionError(cfg.Source.DSN, err)
		}
		defer conn.Close()
		n, err = fetch.SeedSQLite(ctx, conn, cfg.APIURL, columns, cfg.RowIdentifier, records, report)
		if err != nil {
			return err
		}

	case config.SourcePostgres:
		spinner := ui.NewSpinner("Connecting to database")
		spinner.Start()
		conn, err := db.Connect(ctx, cfg.Source.DSN)
		spinner.Stop()
		if err != nil {
			return util.DatabaseConnectionError(cfg.Source.DSN, err)
		}
		defer conn.Close()
		n, err = fetch.SeedPostgres(ctx, conn, cfg.APIURL, columns, cfg.RowIdentifier, records, report)
		if err != nil {
			return err
		}
	}
	progress.Done()

	fmt.Println(styles.SuccessMsg(fmt.Sprintf("Seeded %s rows into %s", humanize.Comma(int64(n)), describeSource(cfg))))
	return nil
}
