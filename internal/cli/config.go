package cli

import (
	"fmt"
	"os"

	"github.com/imgajeed76/lttable/internal/config"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get and set table options",
		Long: `Get and set table configuration options.

Examples:
  lttable config title                  # Get value
  lttable config title "Comments"       # Set value
  lttable config source.kind sqlite     # Set value
  lttable config --list                 # List all config
  lttable config --init                 # Write the default config

` + config.GenerateHelpText(),
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("init", false, "Write the default config file")
	cmd.Flags().Bool("force", false, "Overwrite an existing file with --init")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	initFile, _ := cmd.Flags().GetBool("init")
	force, _ := cmd.Flags().GetBool("force")
	path := configPath(cmd)

	if initFile {
		if _, err := os.Stat(util.ExpandHome(path)); err == nil && !force {
			return util.NewError("Config file already exists").
				WithContext(path).
				WithSuggestion("lttable config --init --force  # Overwrite it")
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println(styles.SuccessMsg("Wrote " + path))
		return nil
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Printf("%s=%s\n", key, value)
		}
		for _, col := range cfg.Columns {
			fmt.Printf("columns.%s=%s\n", col.DataPath, col.Label())
		}
		return nil
	}

	if len(args) == 0 {
		return util.MissingArgumentError("key", "lttable config --list")
	}

	key := args[0]

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		fmt.Println(value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
