package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/megamenu/internal/app"
	"github.com/MrSnakeDoc/megamenu/internal/config"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ megamenu failed: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root without a
// subcommand is the same as "serve".
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "megamenu",
		Short: "Serve the site mega-menu assembled from SharePoint",
		Long: `megamenu reads the navigation list and the site collection discovery
endpoint of a SharePoint site, links them into a three-level menu tree,
and serves the tree as JSON.

Configuration comes from MEGAMENU_* and REDIS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(newServeCmd(), newAssembleCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service with periodic refresh",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(cmd.Context(), cfg, loggerClient)
	if err != nil {
		return err
	}
	return a.Run()
}

// loadConfig turns the panics of config.Load into an error, so a bad
// environment ends with a one-line message instead of a stack trace.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid configuration: %v", r)
		}
	}()
	return config.Load(), nil
}
