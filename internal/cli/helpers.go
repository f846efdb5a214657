package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/imgajeed76/lttable/internal/config"
	"github.com/imgajeed76/lttable/internal/db"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/ui/table"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

// configPath returns the --config flag or the per-user default.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultPath()
	}
	return path
}

// loadTableConfig loads and validates the table config and starts logging.
// An explicit --config must exist; the default path may be missing.
func loadTableConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)

	var cfg *config.Config
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := initLogging(cmd, cfg); err != nil {
		return nil, err
	}
	logger.Log.WithField("config", path).Debug("config loaded")
	return cfg, nil
}

func initLogging(cmd *cobra.Command, cfg *config.Config) error {
	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logger.Init(logger.Config{
		File:       cfg.Log.File,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// openSource builds the fetcher configured by source.kind. The returned
// close func releases database handles and is never nil.
func openSource(ctx context.Context, cfg *config.Config) (fetch.Fetcher, func(), error) {
	noop := func() {}
	columns := record.DataPaths(cfg.Columns)

	switch cfg.Source.Kind {
	case config.SourceMemory:
		return fetch.NewMemory(fixture.Comments(), cfg.PageSize), noop, nil

	case config.SourceHTTP:
		h, err := fetch.NewHTTP(cfg.Source.BaseURL,
			fetch.WithTimeout(time.Duration(cfg.Source.TimeoutSeconds)*time.Second),
			fetch.WithRateLimit(cfg.Source.RateLimit, cfg.Source.RateBurst),
		)
		if err != nil {
			return nil, noop, util.NewError("Invalid source.base_url").
				WithSuggestion("lttable config source.base_url http://127.0.0.1:7488").
				Wrap(err)
		}
		return h, noop, nil

	case config.SourcePostgres:
		conn, err := db.Connect(ctx, cfg.Source.DSN)
		if err != nil {
			return nil, noop, util.DatabaseConnectionError(cfg.Source.DSN, err)
		}
		return fetch.NewPostgres(conn, columns, cfg.PageSize), conn.Close, nil

	case config.SourceSQLite:
		conn, err := fetch.OpenSQLite(cfg.Source.DSN)
		if err != nil {
			return nil, noop, util.DatabaseConnectionError(cfg.Source.DSN, err)
		}
		return fetch.NewSQLite(conn, columns, cfg.PageSize), func() { _ = conn.Close() }, nil
	}

	return nil, noop, util.UnknownSourceError(cfg.Source.Kind)
}

// tableOptions maps the config onto the table widget's options.
func tableOptions(cfg *config.Config, f fetch.Fetcher) table.Options {
	return table.Options{
		Title:            cfg.Title,
		APIURL:           cfg.APIURL,
		RowIdentifier:    cfg.RowIdentifier,
		Columns:          cfg.Columns,
		Fetcher:          f,
		MaxPagesToRender: cfg.MaxPagesToRender,
		PageCount:        cfg.PageCount,
		HideSearch:       !cfg.Searchable,
		HidePaginator:    !cfg.Paginatable,
	}
}

// describeSource names where rows come from, for messages.
func describeSource(cfg *config.Config) string {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return fmt.Sprintf("%s%s", cfg.Source.BaseURL, cfg.APIURL)
	case config.SourcePostgres, config.SourceSQLite:
		return fmt.Sprintf("%s %s", cfg.Source.Kind, cfg.APIURL)
	}
	return fmt.Sprintf("demo data %s", cfg.APIURL)
}
