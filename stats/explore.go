package stats

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dhcgn/email-features/export"
	"github.com/dhcgn/email-features/keywords"
)

// sampleCount is the number of example subjects in a Report.
const sampleCount = 3

// Sample is one example row of a Report.
type Sample struct {
	Subject string
	Label   string
}

// Report summarizes a labeled email table.
type Report struct {
	Rows int
	// Categories holds every filter label with its row count, in order of
	// first appearance.
	Categories       []Pair
	MostCommon       string
	AvgSubjectLength float64
	AvgContentLength float64
	SenderDomains    []Pair
	Keywords         []keywords.Count
	Samples          []Sample
}

// Explore builds a Report over rows keyed by the sample or training column
// names. topN bounds the sender domain and keyword lists.
func Explore(rows []export.Row, topN int) Report {
	r := Report{Rows: len(rows)}

	index := make(map[string]int)
	domains := make(map[string]int)
	var subjectRunes, contentRunes int
	var text strings.Builder

	for _, row := range rows {
		label := row["filter_label"]
		if i, ok := index[label]; ok {
			r.Categories[i].Value++
		} else {
			index[label] = len(r.Categories)
			r.Categories = append(r.Categories, Pair{label, 1})
		}

		subjectRunes += utf8.RuneCountInString(row["subject"])
		contentRunes += utf8.RuneCountInString(row["content"])

		if d := senderDomain(row); d != "" {
			domains[d]++
		}

		text.WriteString(row["subject"])
		text.WriteByte(' ')
		text.WriteString(row["content"])
		text.WriteByte(' ')

		if len(r.Samples) < sampleCount {
			r.Samples = append(r.Samples, Sample{Subject: row["subject"], Label: label})
		}
	}

	if r.Rows > 0 {
		r.AvgSubjectLength = float64(subjectRunes) / float64(r.Rows)
		r.AvgContentLength = float64(contentRunes) / float64(r.Rows)
	}

	best := 0
	for _, c := range r.Categories {
		if c.Value > best {
			best = c.Value
			r.MostCommon = c.Key
		}
	}

	r.SenderDomains = Top(domains, topN)
	r.Keywords = keywords.Counts(text.String())
	if topN >= 0 && topN < len(r.Keywords) {
		r.Keywords = r.Keywords[:topN]
	}
	return r
}

func senderDomain(row export.Row) string {
	if d := row["sender_domain"]; d != "" {
		return d
	}
	_, d, _ := strings.Cut(row["sender"], "@")
	return strings.TrimRight(d, ">")
}

// Print writes the report in a human-readable layout.
func (r Report) Print(w io.Writer) error {
	var b strings.Builder

	labels := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		labels = append(labels, c.Key)
	}

	fmt.Fprintf(&b, "Loaded %d emails\n", r.Rows)
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(labels, ", "))
	b.WriteString("\nBasic statistics:\n")
	fmt.Fprintf(&b, "   - Average subject length: %.1f characters\n", r.AvgSubjectLength)
	fmt.Fprintf(&b, "   - Average content length: %.1f characters\n", r.AvgContentLength)
	fmt.Fprintf(&b, "   - Most common category: %s\n", r.MostCommon)

	b.WriteString("\nEmails per category:\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "   %-12s %d\n", c.Key, c.Value)
	}

	if len(r.SenderDomains) > 0 {
		b.WriteString("\nTop sender domains:\n")
		for i, p := range r.SenderDomains {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, p.Key, p.Value)
		}
	}

	if len(r.Keywords) > 0 {
		b.WriteString("\nTop keywords:\n")
		for i, k := range r.Keywords {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, k.Word, k.Count)
		}
	}

	b.WriteString("\nSample emails:\n")
	for i, s := range r.Samples {
		fmt.Fprintf(&b, "   %d. %s (%s)\n", i+1, s.Subject, s.Label)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
