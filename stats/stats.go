// Package stats counts what an extraction run did and summarizes datasets.
package stats

import (
	"sort"
	"sync"
	"time"
)

type EventType string

const (
	EventTypeScanned   EventType = "scanned"
	EventTypeFiltered  EventType = "filtered"
	EventTypeDuplicate EventType = "duplicate"
	EventTypeParsed    EventType = "parsed"
	EventTypeFailed    EventType = "failed"
)

type Summary struct {
	Scanned    int
	Filtered   int
	Duplicates int
	Parsed     int
	Failed     int
	LastError  error
	Duration   time.Duration
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"filtered", s.Filtered,
		"duplicates", s.Duplicates,
		"parsed", s.Parsed,
		"failed", s.Failed,
	}
	if s.Duration > 0 {
		attrs = append(attrs, "duration", s.Duration)
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector accumulates events. A nil *Collector ignores them.
type Collector struct {
	mu      sync.Mutex
	summary Summary
	started time.Time
}

func NewCollector() *Collector {
	return &Collector{started: time.Now()}
}

// Add records one event; err is kept as the last error for failures.
func (c *Collector) Add(evt EventType, err error) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeFiltered:
		c.summary.Filtered++
	case EventTypeDuplicate:
		c.summary.Duplicates++
	case EventTypeParsed:
		c.summary.Parsed++
	case EventTypeFailed:
		c.summary.Failed++
		if err != nil {
			c.summary.LastError = err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	if c == nil {
		return Summary{}
	}

	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	summary.Duration = time.Since(c.started)
	return summary
}

// Pair is one ranked frequency entry.
type Pair struct {
	Key   string
	Value int
}

// Top returns the limit most frequent entries of m, ranked by count
// descending then key ascending. A negative limit returns all entries.
func Top(m map[string]int, limit int) []Pair {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value > pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})

	if limit >= 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}
	return pairs
}
