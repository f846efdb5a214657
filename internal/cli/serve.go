package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/server"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo rows as a JSON API",
		Long: `Serve the built-in demo rows over HTTP, answering the same query
parameters the http source sends. Point a table at it with:

  lttable config source.kind http
  lttable config source.base_url http://127.0.0.1:7488

Responses have the form {"rows": [...], "page_count": n}.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "127.0.0.1:7488", "Listen address")
	cmd.Flags().Int("page-size", 0, "Rows per page (default: page_size from the config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	cfg, err := loadTableConfig(cmd)
	if err != nil {
		return err
	}
	if pageSize <= 0 {
		pageSize = cfg.PageSize
	}

	resource := strings.Trim(fixture.Resource, "/")
	srv := server.New(map[string]fetch.Fetcher{
		resource: fetch.NewMemory(fixture.Comments(), pageSize),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s at %s\n", styles.Cyan(fixture.Resource), styles.Cyan("http://"+addr+fixture.Resource))
	fmt.Println(styles.Mute("Press Ctrl+C to stop"))
	return srv.ListenAndServe(ctx, addr)
}
