package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/setup"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		root   string
		create bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the project layout and sample dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.OutOrStdout(), root, create)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Project root directory")
	cmd.Flags().BoolVar(&create, "create", false, "Create missing project directories")
	return cmd
}

func (a *app) check(w io.Writer, root string, create bool) error {
	if create {
		if err := setup.CreateDirs(root); err != nil {
			return err
		}
		a.logger.Debug("created project directories", "root", root)
	}

	r := setup.Check(root)
	if err := r.Print(w); err != nil {
		return err
	}
	if !r.OK() {
		a.logger.Warn("project setup incomplete", "root", root, "missing", r.Missing())
		return fmt.Errorf("project setup incomplete: %d missing (run `email-features check --create` and `email-features sample`)", len(r.Missing()))
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
