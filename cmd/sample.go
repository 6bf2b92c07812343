package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/sample"
)

func newSampleCmd(a *app) *cobra.Command {
	var (
		format    string
		writeMbox bool
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the sample email dataset to the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeSamples(cmd.OutOrStdout(), format, writeMbox, raw)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Table format: csv, json or both")
	cmd.Flags().BoolVar(&writeMbox, "mbox", false, "Also write the samples as an mbox archive")
	cmd.Flags().BoolVar(&raw, "raw", false, "Store full RFC 5322 messages in the content column")
	return cmd
}

func (a *app) writeSamples(w io.Writer, format string, writeMbox, raw bool) error {
	var exts []string
	switch strings.ToLower(format) {
	case "csv":
		exts = []string{".csv"}
	case "json":
		exts = []string{".json"}
	case "both":
		exts = []string{".csv", ".json"}
	default:
		return fmt.Errorf("invalid --format: %s (want csv, json or both)", format)
	}

	emails := sample.Emails()
	table := emails
	if raw {
		table = make([]sample.Email, len(emails))
		for i, e := range emails {
			b, err := sample.Render(e)
			if err != nil {
				return err
			}
			e.Content = string(b)
			table[i] = e
		}
	}

	for _, ext := range exts {
		path := filepath.Join(a.cfg.DataDir, "sample_emails"+ext)
		if err := sample.Save(path, table); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		a.logger.Info("wrote sample data", "path", path, "emails", len(table))
		fmt.Fprintf(w, "Saved %d emails to %s\n", len(table), path)
	}

	if writeMbox {
		var buf bytes.Buffer
		if err := sample.WriteMbox(&buf, emails); err != nil {
			return err
		}
		path := filepath.Join(a.cfg.DataDir, "sample_emails.mbox")
		if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.logger.Info("wrote sample mbox", "path", path, "emails", len(emails))
		fmt.Fprintf(w, "Saved %d emails to %s\n", len(emails), path)
	}

	var labels []string
	seen := make(map[string]bool)
	for _, e := range emails {
		if !seen[e.FilterLabel] {
			seen[e.FilterLabel] = true
			labels = append(labels, e.FilterLabel)
		}
	}
	fmt.Fprintf(w, "Categories: %s\n", strings.Join(labels, ", "))
	return nil
}
