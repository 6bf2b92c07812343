package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/export"
	"github.com/dhcgn/email-features/stats"
)

func newExploreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [FILE]",
		Short: "Summarize a labeled email table (defaults to the sample dataset)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.cfg.DataDir, "sample_emails.csv")
			if len(args) == 1 {
				path = args[0]
			}
			return a.explore(cmd.OutOrStdout(), path)
		},
	}
	config.RegisterTopFlag(cmd)
	return cmd
}

func (a *app) explore(w io.Writer, path string) error {
	_, rows, err := export.LoadTable(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.Debug("loaded table", "path", path, "rows", len(rows))

	return stats.Explore(rows, a.cfg.TopN).Print(w)
}
