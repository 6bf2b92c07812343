package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/keywords"
	"github.com/dhcgn/email-features/textclean"
)

func newKeywordsCmd(a *app) *cobra.Command {
	var (
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "keywords [TEXT...]",
		Short: "Print the normalized text and its most frequent keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if file != "" {
				b, err := readInput(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				text = string(b)
			}
			if text == "" {
				return fmt.Errorf("no text given (pass TEXT or --file)")
			}

			top, err := keywords.Top(text, a.cfg.TopN)
			if err != nil {
				return err
			}

			normalized := textclean.Normalize(text)
			if strict {
				normalized = textclean.NormalizeStrict(text)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Normalized: %s\n", normalized)
			fmt.Fprintf(w, "Keywords: %s\n", strings.Join(top, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the text from a file (- for stdin)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Also strip tags, digits and punctuation from the normalized text")
	config.RegisterTopFlag(cmd)
	return cmd
}
