// Package mbox reads mbox archives, as exported by Gmail or Apple Mail, into
// extractor input records.
package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message/textproto"
	"github.com/google/uuid"

	"github.com/dhcgn/email-features/filter"
	"github.com/dhcgn/email-features/model"
	"github.com/dhcgn/email-features/state"
	"github.com/dhcgn/email-features/stats"
)

// idNamespace scopes the ids derived for messages without a Message-Id.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dhcgn/email-features/mbox"))

// Options controls how an archive becomes records.
type Options struct {
	// Label is the filter label given to every record.
	Label  string
	Filter filter.Options
	// Progress, if set, is called once per scanned message.
	Progress func(kept bool)
}

// Read opens an mbox file and calls fn for each message in order.
func Read(path string, fn func(model.Message) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	return ReadFrom(file, fn)
}

// ReadFrom streams the messages of an mbox archive to fn. An error from fn
// stops the iteration and is returned as is.
func ReadFrom(r io.Reader, fn func(model.Message) error) error {
	reader := mboxlib.NewReader(r)
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return fmt.Errorf("message %d read: %w", idx, err)
		}

		if err := fn(model.Message{Index: idx, Hash: state.Hash(raw), Raw: raw}); err != nil {
			return err
		}
	}
}

// Count counts the messages in an mbox file without decoding them.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			return 0, err
		}
		count++
	}
}

// Records reads the archive at path into extractor input records.
func Records(path string, opts Options, c *stats.Collector, logger *slog.Logger) ([]model.EmailRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	return RecordsFrom(file, opts, c, logger)
}

// RecordsFrom turns the messages of an archive into records, skipping
// filtered messages and exact duplicates. c may be nil.
func RecordsFrom(r io.Reader, opts Options, c *stats.Collector, logger *slog.Logger) ([]model.EmailRecord, error) {
	f, err := filter.New(opts.Filter)
	if err != nil {
		return nil, err
	}
	seen := state.NewSeen()

	var recs []model.EmailRecord
	err = ReadFrom(r, func(msg model.Message) error {
		c.Add(stats.EventTypeScanned, nil)

		kept := false
		switch {
		case !f.Allows(msg.Raw):
			c.Add(stats.EventTypeFiltered, nil)
		case seen.Mark(msg.Hash):
			c.Add(stats.EventTypeDuplicate, nil)
			if logger != nil {
				logger.Debug("skipping duplicate message", "index", msg.Index, "hash", msg.Hash)
			}
		default:
			kept = true
			recs = append(recs, model.EmailRecord{
				ID:          MessageID(msg.Raw),
				Content:     string(msg.Raw),
				FilterLabel: opts.Label,
			})
		}

		if opts.Progress != nil {
			opts.Progress(kept)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Debug("mbox records collected", "records", len(recs), "distinct", seen.Len())
	}
	if logger != nil && opts.Filter.Active() {
		for _, hit := range f.Stats() {
			logger.Debug("filter pattern", "kind", hit.Kind, "pattern", hit.Pattern, "matches", hit.Count)
		}
	}
	return recs, nil
}

// MessageID returns the Message-Id of raw without angle brackets, or a
// name-based UUID of the content when the header is missing or unreadable.
func MessageID(raw []byte) string {
	h, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err == nil {
		id := strings.Trim(strings.TrimSpace(h.Get("Message-Id")), "<>")
		if id != "" {
			return id
		}
	}
	return uuid.NewSHA1(idNamespace, raw).String()
}
