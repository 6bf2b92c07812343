package progress

import (
	"testing"

	"github.com/dhcgn/email-features/stats"
)

func TestBar_Disabled(t *testing.T) {
	for _, level := range []string{"debug", "warn", "error"} {
		bar := New(3, level)
		if bar.enabled {
			t.Errorf("New(3, %q) enabled the bar", level)
		}
		bar.Add(true)
		bar.Add(false)
		bar.Add(true)
		bar.Stop()
		bar.PrintSummary(stats.Summary{Scanned: 3})

		if kept, skipped := bar.Counts(); kept != 2 || skipped != 1 {
			t.Errorf("Counts() = %d, %d, want 2, 1", kept, skipped)
		}
	}
}

func TestBar_EmptyArchive(t *testing.T) {
	bar := New(0, "info")
	if bar.enabled {
		t.Error("bar enabled for an empty archive")
	}
	bar.Stop()
}
