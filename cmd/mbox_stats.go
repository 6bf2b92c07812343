package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/export"
	"github.com/dhcgn/email-features/filter"
	"github.com/dhcgn/email-features/mbox"
	"github.com/dhcgn/email-features/model"
	"github.com/dhcgn/email-features/stats"
)

// trackedFields are the feature columns counted by mbox-stats.
var trackedFields = []string{"sender", "sender_domain", "recipients", "subject"}

// reportLimit bounds the rows of each CSV report.
const reportLimit = 1000

func newMboxStatsCmd(a *app) *cobra.Command {
	var reportDir string

	cmd := &cobra.Command{
		Use:   "mbox-stats [mbox file]",
		Short: "Analyse an mbox file and show feature statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mboxStats(cmd.OutOrStdout(), args[0], reportDir)
		},
	}

	cmd.Flags().StringVarP(&reportDir, "output", "o", "", "Output directory for CSV reports (none written when empty)")
	config.RegisterTopFlag(cmd)
	config.RegisterExtractFlags(cmd)
	return cmd
}

func (a *app) mboxStats(w io.Writer, path, reportDir string) error {
	fmt.Fprintln(w, "Analyzing mbox file:", path)

	f, err := filter.New(a.cfg.FilterOptions())
	if err != nil {
		return fmt.Errorf("create filter: %w", err)
	}

	counter := make(map[string]map[string]int)
	for _, name := range trackedFields {
		counter[name] = make(map[string]int)
	}

	x := a.extractor()
	collector := stats.NewCollector()
	err = mbox.Read(path, func(msg model.Message) error {
		collector.Add(stats.EventTypeScanned, nil)
		if !f.Allows(msg.Raw) {
			collector.Add(stats.EventTypeFiltered, nil)
			return nil
		}

		rec, err := x.Parse(string(msg.Raw))
		if err != nil {
			collector.Add(stats.EventTypeFailed, err)
			a.logger.Warn("email parse failed", "index", msg.Index, "err", err)
			return nil
		}
		collector.Add(stats.EventTypeParsed, nil)

		count(counter["sender"], rec.Sender)
		count(counter["sender_domain"], rec.SenderDomain)
		count(counter["subject"], rec.Subject)
		for _, r := range rec.Recipients {
			count(counter["recipients"], r)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error reading mbox file: %w", err)
	}

	summary := collector.Snapshot()
	a.logger.Info("mbox analysed", summary.LogAttrs()...)

	total := summary.Parsed + summary.Failed + summary.Filtered
	var filterPercent float64
	if total > 0 {
		filterPercent = float64(summary.Filtered) / float64(total) * 100
	}
	fmt.Fprintf(w, "Processed %d messages (skipped %d by filters, %.2f%%, %d failed)\n\n", summary.Parsed, summary.Filtered, filterPercent, summary.Failed)

	printFilterHits(w, f.Stats())

	for _, name := range trackedFields {
		fmt.Fprintf(w, "Top %d %s:\n", a.cfg.TopN, name)
		for i, p := range stats.Top(counter[name], a.cfg.TopN) {
			fmt.Fprintf(w, "%d. %s (%d)\n", i+1, p.Key, p.Value)
		}
		fmt.Fprintln(w)
	}

	if reportDir == "" {
		return nil
	}
	if err := saveCSVReports(counter, reportDir, reportLimit); err != nil {
		return fmt.Errorf("error saving CSV reports: %w", err)
	}
	fmt.Fprintf(w, "Reports saved to directory: %s\n", reportDir)
	return nil
}

func count(m map[string]int, value string) {
	if value != "" {
		m[value]++
	}
}

func saveCSVReports(counter map[string]map[string]int, dir string, limit int) error {
	columns := []string{"value", "count"}
	for _, name := range trackedFields {
		var rows []export.Row
		for _, p := range stats.Top(counter[name], limit) {
			rows = append(rows, export.Row{"value": p.Key, "count": strconv.Itoa(p.Value)})
		}

		path := filepath.Join(dir, fmt.Sprintf("report_%s.csv", name))
		if err := export.SaveTable(path, columns, rows); err != nil {
			return err
		}
	}
	return nil
}

func printFilterHits(w io.Writer, hits []filter.Hit) {
	if len(hits) == 0 {
		return
	}

	sort.SliceStable(hits, func(i, j int) bool {
		// Sort by hit count descending, then by pattern
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Pattern < hits[j].Pattern
	})

	fmt.Fprintln(w, "Filters:")
	for _, h := range hits {
		mark := "✓"
		if h.Count == 0 {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %s %s: %d hits\n", mark, h.Kind, h.Pattern, h.Count)
	}
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w)
}
