package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "lttable",
	Short: "A paged, sortable, filterable data table for the terminal",
	Long: `lttable shows rows from a JSON API, a PostgreSQL or SQLite table, or the
built-in demo data in an interactive table with paging, per-column sorting,
per-column filters and free-text search.

The table is described by a TOML config file (see 'lttable config --init').
Every change to the page, search, filters or sort issues a new fetch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		// Check if it's a structured TableError
		var tableErr *util.TableError
		if errors.As(err, &tableErr) {
			fmt.Fprintln(os.Stderr, tableErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Table config file (default "+util.ConfigFile+" in the user config dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Version flag template to show more info
	rootCmd.SetVersionTemplate(fmt.Sprintf("lttable version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	// Set up pre-run to handle global flags
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			styles.SetNoColor(true)
		}
	}

	// Add all subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newBrowseCmd(),
		newQueryCmd(),
		newServeCmd(),
		newSeedCmd(),
		newConfigCmd(),
		newCompletionCmd(),
	)
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lttable.

To load completions:

Bash:
  $ source <(lttable completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ lttable completion bash > /etc/bash_completion.d/lttable
  # macOS:
  $ lttable completion bash > $(brew --prefix)/etc/bash_completion.d/lttable

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ lttable completion zsh > "${fpath[1]}/_lttable"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ lttable completion fish | source

  # To load completions for each session, execute once:
  $ lttable completion fish > ~/.config/fish/completions/lttable.fish

PowerShell:
  PS> lttable completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> lttable completion powershell > lttable.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lttable version %s\n", Version)
			fmt.Printf("  commit: %s\n", CommitSHA)
			fmt.Printf("  built:  %s\n", BuildDate)
		},
	}
}
