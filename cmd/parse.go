package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/features"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE|-",
		Short: "Parse one raw message and print its features as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			rec, err := a.extractor().Parse(string(raw))
			if err != nil {
				var perr *features.ParseError
				if errors.As(err, &perr) {
					a.logger.Debug("parse failed", "input", args[0], "reason", perr.Reason)
				}
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(rec)
		},
	}
	config.RegisterExtractFlags(cmd)
	return cmd
}

// readInput reads a whole file, or stdin for "-".
func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}
