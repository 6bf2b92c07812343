// Package progress shows extraction progress on the terminal.
package progress

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"

	"github.com/dhcgn/email-features/stats"
)

// Bar manages a progress bar for tracking message processing.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	kept    int
	skipped int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar over total messages. It only draws at log level
// "info"; at other levels every method is a no-op.
func New(total int, logLevel string) *Bar {
	bar := &Bar{
		total:   total,
		enabled: logLevel == "info" && total > 0,
	}

	if bar.enabled {
		pterm.Info.Printf("Total messages in mbox: %d\n", total)
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Reading messages").
			Start()
		bar.pb = pb
	}

	return bar
}

// Add advances the bar by one message. kept reports whether the message
// became a record.
func (b *Bar) Add(kept bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if kept {
		b.kept++
	} else {
		b.skipped++
	}

	if !b.enabled || b.pb == nil {
		return
	}
	b.pb.UpdateTitle(fmt.Sprintf("Reading messages (%d kept, %d skipped)", b.kept, b.skipped))
	b.pb.Increment()
}

// Counts returns the number of kept and skipped messages so far.
func (b *Bar) Counts() (kept, skipped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kept, b.skipped
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we reach 100%
	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}

	_, _ = b.pb.Stop()
	pterm.Success.Println("Reading complete!")
}

// PrintSummary renders an extraction summary below the finished bar.
func (b *Bar) PrintSummary(s stats.Summary) {
	if !b.enabled {
		return
	}

	pterm.Println()
	pterm.DefaultSection.Println("Summary Statistics")
	pterm.Info.Printf("Duration: %v\n", s.Duration)
	pterm.Info.Printf("Scanned: %d\n", s.Scanned)
	pterm.Info.Printf("Filtered: %d\n", s.Filtered)
	pterm.Info.Printf("Duplicates (skipped): %d\n", s.Duplicates)
	pterm.Info.Printf("Parsed: %d\n", s.Parsed)
	pterm.Info.Printf("Failed: %d\n", s.Failed)
	if s.LastError != nil {
		pterm.Error.Printf("Last error: %v\n", s.LastError)
	}
}
