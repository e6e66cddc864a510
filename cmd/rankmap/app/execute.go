package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/rankmap/cmd/rankmap/cmd/build"
	"github.com/agentstation/rankmap/cmd/rankmap/cmd/export"
	"github.com/agentstation/rankmap/cmd/rankmap/cmd/query"
	"github.com/agentstation/rankmap/cmd/rankmap/cmd/serve"
	"github.com/agentstation/rankmap/cmd/rankmap/cmd/sources"
	"github.com/agentstation/rankmap/cmd/rankmap/cmd/version"
	"github.com/agentstation/rankmap/internal/cmd/output"
)

// Execute runs the rankmap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rankmap",
		Short:   "College admission cutoff aggregator",
		Version: a.version,
		Long: `Rankmap merges college admission cutoff datasets into one catalog
and answers which colleges a candidate with a given exam rank can expect
to be admitted to.

Sources are declared in a YAML manifest (default ./rankmap.yaml) and may be
JSON, YAML, CSV or XLSX files. "rankmap build" writes the merged catalog to
an artifact that "rankmap query" and "rankmap serve" read.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.rankmap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("manifest", "", "source manifest path (default "+DefaultManifestPath+")")
	flags.String("artifact", "", "catalog artifact path (default "+DefaultArtifactPath+")")
	flags.String("sqlite", "", "SQLite export path (default "+DefaultSQLitePath+")")

	rootCmd.SetVersionTemplate("rankmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		path := a.config.ConfigFile
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	format := mustGetString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
		mustGetString(cmd, "log-level"),
	)
	if v := mustGetString(cmd, "manifest"); v != "" {
		a.config.ManifestPath = v
	}
	if v := mustGetString(cmd, "artifact"); v != "" {
		a.config.ArtifactPath = v
	}
	if v := mustGetString(cmd, "sqlite"); v != "" {
		a.config.SQLitePath = v
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	withGroup := func(cmd *cobra.Command, group string) *cobra.Command {
		cmd.GroupID = group
		return cmd
	}

	// Core commands
	rootCmd.AddCommand(withGroup(build.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(query.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(serve.NewCommand(a), "core"))

	// Management commands
	rootCmd.AddCommand(withGroup(sources.NewCommand(a), "management"))
	rootCmd.AddCommand(withGroup(export.NewCommand(a), "management"))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
