package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/megamenu/internal/app"
	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
)

var errDegraded = errors.New("one or more sources failed")

type assembleOptions struct {
	pretty bool
	strict bool
}

func newAssembleCmd() *cobra.Command {
	var opts assembleOptions

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Fetch both sources once and print the menu tree",
		Long: `Fetch both sources once and print the assembled menu tree as JSON on stdout.

A failed source is logged on stderr and contributes nothing to the tree.
Use --strict to exit non-zero in that case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = loggerClient.Sync() }()

			tree, snap, err := app.AssembleOnce(cmd.Context(), cfg, loggerClient)
			if err != nil {
				return err
			}
			if err := writeTree(cmd.OutOrStdout(), tree, opts.pretty); err != nil {
				return err
			}
			if opts.strict && snap.Degraded() {
				return errDegraded
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when a source failed")
	return cmd
}

func writeTree(w io.Writer, tree domain.NavTree, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode menu: %w", err)
	}
	return nil
}
