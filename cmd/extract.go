package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/export"
	"github.com/dhcgn/email-features/mbox"
	"github.com/dhcgn/email-features/model"
	"github.com/dhcgn/email-features/progress"
	"github.com/dhcgn/email-features/stats"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		input  string
		output string
		label  string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract training features from a .csv, .json or .mbox email export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = filepath.Join(a.cfg.DataDir, "features.csv")
			}
			summary, err := a.extract(input, output, label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d records to %s (%d failed)\n", summary.Parsed+summary.Failed, output, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Email export to read (.csv, .json or .mbox)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.csv or .json); defaults to <data-dir>/features.csv")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Filter label for records that carry none")
	config.RegisterExtractFlags(cmd)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// extract reads input, extracts features and saves them to output.
func (a *app) extract(input, output, label string) (stats.Summary, error) {
	if _, err := export.FormatOf(output); err != nil {
		return stats.Summary{}, err
	}

	collector := stats.NewCollector()
	recs, bar, err := a.loadRecords(input, label, collector)
	if err != nil {
		return stats.Summary{}, err
	}

	out := a.extractor().ExtractForTraining(recs)
	for _, rec := range out {
		if rec.Err != nil {
			collector.Add(stats.EventTypeFailed, rec.Err)
			continue
		}
		collector.Add(stats.EventTypeParsed, nil)
	}

	if err := export.Save(output, out); err != nil {
		return stats.Summary{}, fmt.Errorf("save %s: %w", output, err)
	}

	summary := collector.Snapshot()
	bar.PrintSummary(summary)
	a.logger.Info("extraction finished", append(summary.LogAttrs(), "input", input, "output", output)...)
	return summary, nil
}

// loadRecords reads extractor input. The returned bar is only drawn for
// mbox archives.
func (a *app) loadRecords(input, label string, collector *stats.Collector) ([]model.EmailRecord, *progress.Bar, error) {
	if !strings.EqualFold(filepath.Ext(input), ".mbox") {
		recs, err := export.LoadEmailRecords(input)
		if err != nil {
			return nil, nil, err
		}
		for i := range recs {
			collector.Add(stats.EventTypeScanned, nil)
			if recs[i].FilterLabel == "" {
				recs[i].FilterLabel = label
			}
		}
		return recs, progress.New(0, a.cfg.LogLevel), nil
	}

	total, err := mbox.Count(input)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("counted messages", "path", input, "total", total)

	bar := progress.New(total, a.cfg.LogLevel)
	recs, err := mbox.Records(input, mbox.Options{
		Label:    label,
		Filter:   a.cfg.FilterOptions(),
		Progress: bar.Add,
	}, collector, a.logger)
	bar.Stop()
	if err != nil {
		return nil, nil, err
	}
	return recs, bar, nil
}
