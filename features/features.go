// Package features turns raw email text into fixed-schema feature records for
// ML training data.
package features

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/email-features/model"
)

const (
	// NoSubject replaces a missing or empty Subject header.
	NoSubject = "No Subject"
	// UnknownLabel is the filter label of records that carry none.
	UnknownLabel = "unknown"
	// DefaultMaxDepth bounds multipart nesting.
	DefaultMaxDepth = 32
)

var (
	senderPattern    = regexp.MustCompile(`<(.+?)>`)
	recipientPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// Options is the parsing policy of an Extractor.
type Options struct {
	// HTMLFallback uses the text of the first text/html part when a
	// multipart message has no text/plain part.
	HTMLFallback bool
	MaxDepth     int
}

// Extractor parses raw messages into FeatureRecords. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

var defaultExtractor = New(Options{}, nil)

// New returns an Extractor with the given policy. logger may be nil.
func New(opts Options, logger *slog.Logger) *Extractor {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Extractor{opts: opts, logger: logger}
}

// Parse extracts features from raw using the default policy.
func Parse(raw string) (model.FeatureRecord, error) {
	return defaultExtractor.Parse(raw)
}

// Parse extracts the features of one raw message. Missing or unparsable
// fields degrade to their empty values; only a structural failure returns an
// error, always a *ParseError.
func (x *Extractor) Parse(raw string) (model.FeatureRecord, error) {
	msg, err := readMessage(raw)
	if err != nil {
		return model.FeatureRecord{}, err
	}

	parts, err := flatten(msg, 0, x.opts.MaxDepth, nil)
	if err != nil {
		return model.FeatureRecord{}, err
	}

	h := mail.Header{Header: msg.Header}
	subject := extractSubject(h)
	sender := extractSender(h)
	content := strings.ReplaceAll(x.selectContent(parts), "\r\n", "\n")

	features := model.FeatureRecord{
		Subject:        subject,
		Sender:         sender,
		Recipients:     extractRecipients(h),
		Content:        content,
		HasAttachments: hasAttachments(parts),
		ContentLength:  utf8.RuneCountInString(content),
		SubjectLength:  utf8.RuneCountInString(subject),
		SenderDomain:   domain(sender),
	}
	if t, err := h.Date(); err == nil && !t.IsZero() {
		features.Date = &t
	}

	return features, nil
}

// ExtractForTraining parses every record and labels the result. The output
// has one entry per input, in input order; failed parses carry Err and no
// features.
func (x *Extractor) ExtractForTraining(records []model.EmailRecord) []model.TrainingRecord {
	out := make([]model.TrainingRecord, 0, len(records))
	for i, rec := range records {
		tr := model.TrainingRecord{
			FilterLabel: rec.FilterLabel,
			EmailID:     rec.ID,
		}
		if tr.FilterLabel == "" {
			tr.FilterLabel = UnknownLabel
		}

		features, err := x.Parse(rec.Content)
		if err != nil {
			tr.Err = err
			if x.logger != nil {
				x.logger.Warn("email parse failed", "index", i, "id", rec.ID, "err", err)
			}
		} else {
			tr.FeatureRecord = &features
		}

		out = append(out, tr)
	}
	return out
}

func extractSubject(h mail.Header) string {
	subject, err := h.Subject()
	if err != nil {
		subject = h.Get("Subject")
	}
	if subject == "" {
		return NoSubject
	}
	return subject
}

func extractSender(h mail.Header) string {
	from := text(h, "From")
	if m := senderPattern.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return from
}

func extractRecipients(h mail.Header) []string {
	recipients := recipientPattern.FindAllString(text(h, "To"), -1)
	if recipients == nil {
		return []string{}
	}
	return recipients
}

// text returns the decoded header value, or the raw one if it has invalid
// encoded words.
func text(h mail.Header, key string) string {
	v, err := h.Text(key)
	if err != nil {
		return h.Get(key)
	}
	return v
}

func (x *Extractor) selectContent(parts []part) string {
	if len(parts) == 0 {
		return ""
	}
	if !parts[0].multipart {
		return parts[0].body
	}

	for _, p := range parts {
		if !p.multipart && p.mediaType == "text/plain" {
			return p.body
		}
	}

	if x.opts.HTMLFallback {
		for _, p := range parts {
			if !p.multipart && p.mediaType == "text/html" {
				return htmlText(p.body)
			}
		}
	}
	return ""
}

func hasAttachments(parts []part) bool {
	for _, p := range parts {
		if p.filename != "" {
			return true
		}
	}
	return false
}

func domain(address string) string {
	_, after, found := strings.Cut(address, "@")
	if !found {
		return ""
	}
	return after
}
