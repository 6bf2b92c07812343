// Package filter selects raw messages by regular expressions over their
// header block and body.
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ErrModeConflict is returned when include and exclude patterns are mixed.
var ErrModeConflict = errors.New("include and exclude filters are mutually exclusive")

// Options captures the filtering configuration.
type Options struct {
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// Active reports whether any pattern is set.
func (o Options) Active() bool {
	return len(o.IncludeHeader)+len(o.IncludeBody)+len(o.ExcludeHeader)+len(o.ExcludeBody) > 0
}

// Hit is the match count of one pattern.
type Hit struct {
	Kind    string
	Pattern string
	Count   int
}

type rule struct {
	kind string
	re   *regexp.Regexp
}

// Filter holds compiled regex patterns for filtering messages. It is safe for
// concurrent use.
type Filter struct {
	includeMode   bool
	includeHeader []rule
	includeBody   []rule
	excludeHeader []rule
	excludeBody   []rule

	mu   sync.Mutex
	hits map[rule]int
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	includeHeader, err := compilePatterns("include-header", opts.IncludeHeader)
	if err != nil {
		return nil, err
	}
	includeBody, err := compilePatterns("include-body", opts.IncludeBody)
	if err != nil {
		return nil, err
	}
	excludeHeader, err := compilePatterns("exclude-header", opts.ExcludeHeader)
	if err != nil {
		return nil, err
	}
	excludeBody, err := compilePatterns("exclude-body", opts.ExcludeBody)
	if err != nil {
		return nil, err
	}

	includeActive := len(includeHeader) > 0 || len(includeBody) > 0
	excludeActive := len(excludeHeader) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return nil, ErrModeConflict
	}

	return &Filter{
		includeMode:   includeActive,
		includeHeader: includeHeader,
		includeBody:   includeBody,
		excludeHeader: excludeHeader,
		excludeBody:   excludeBody,
		hits:          make(map[rule]int),
	}, nil
}

// Allows reports whether the raw message passes the filter. In include mode
// a message must match at least one pattern, in exclude mode none.
func (f *Filter) Allows(raw []byte) bool {
	header, body := SplitRawMessage(raw)

	if f.includeMode {
		return f.matchAny(f.includeHeader, header) || f.matchAny(f.includeBody, body)
	}
	if f.matchAny(f.excludeHeader, header) || f.matchAny(f.excludeBody, body) {
		return false
	}
	return true
}

// Stats returns the match count of every pattern in configuration order.
func (f *Filter) Stats() []Hit {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Hit
	for _, rules := range [][]rule{f.includeHeader, f.includeBody, f.excludeHeader, f.excludeBody} {
		for _, r := range rules {
			out = append(out, Hit{Kind: r.kind, Pattern: r.re.String(), Count: f.hits[r]})
		}
	}
	return out
}

func (f *Filter) matchAny(rules []rule, text []byte) bool {
	for _, r := range rules {
		if r.re.Match(text) {
			f.mu.Lock()
			f.hits[r]++
			f.mu.Unlock()
			return true
		}
	}
	return false
}

// SplitRawMessage splits a raw email message into header and body parts.
func SplitRawMessage(raw []byte) (header, body []byte) {
	if len(raw) == 0 {
		return nil, nil
	}

	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx >= 0 {
		return raw[:idx], raw[idx+4:]
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx >= 0 {
		return raw[:idx], raw[idx+2:]
	}

	return raw, nil
}

func compilePatterns(kind string, patterns []string) ([]rule, error) {
	compiled := make([]rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern %q: %w", kind, pattern, err)
		}
		compiled = append(compiled, rule{kind: kind, re: re})
	}
	return compiled, nil
}
