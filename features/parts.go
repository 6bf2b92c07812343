package features

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"
)

// fieldLine matches the start of a header field: a token name followed by a
// colon.
var fieldLine = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+:")

// part is one entity of a message after flattening. Containers keep their
// headers but carry no body.
type part struct {
	mediaType string
	filename  string
	multipart bool
	body      string
}

// splitMessage separates header fields from the body. Fields run until the
// first blank line; the first line that is neither a field nor a
// continuation starts the body, so text without headers is all body.
func splitMessage(raw string) (fields []string, body string) {
	pos := 0
	for pos < len(raw) {
		next := len(raw)
		line := raw[pos:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = pos + i + 1
		}
		line = strings.TrimSuffix(line, "\r")

		switch {
		case line == "":
			return fields, raw[next:]
		case fieldLine.MatchString(line):
			fields = append(fields, line)
		case len(fields) > 0 && (line[0] == ' ' || line[0] == '\t'):
			fields = append(fields, line)
		case pos == 0 && strings.HasPrefix(line, "From "):
			// mbox envelope line
		default:
			return fields, raw[pos:]
		}
		pos = next
	}
	return fields, ""
}

func readMessage(raw string) (*message.Entity, error) {
	fields, body := splitMessage(raw)

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	h, err := textproto.ReadHeader(bufio.NewReader(strings.NewReader(b.String())))
	if err != nil {
		return nil, &ParseError{Reason: ReasonHeader, Err: err}
	}

	e, err := message.New(message.Header{Header: h}, strings.NewReader(body))
	if err != nil && !isDecodeError(err) {
		return nil, &ParseError{Reason: ReasonHeader, Err: err}
	}
	return e, nil
}

// flatten appends e and all of its nested parts to parts in depth-first order.
func flatten(e *message.Entity, depth, maxDepth int, parts []part) ([]part, error) {
	if depth > maxDepth {
		return parts, &ParseError{Reason: ReasonNesting, Err: fmt.Errorf("depth exceeds %d", maxDepth)}
	}

	p := part{
		mediaType: mediaType(e.Header),
		filename:  filename(e.Header),
	}

	mr := e.MultipartReader()
	if mr == nil {
		p.body = readBody(e.Body)
		return append(parts, p), nil
	}

	p.multipart = true
	parts = append(parts, p)
	for children := 0; ; children++ {
		child, err := mr.NextPart()
		// only a bare io.EOF marks the closing boundary
		if err == io.EOF {
			return parts, nil
		}
		if err != nil && !isDecodeError(err) {
			// a truncated body keeps the parts read before the cut
			if children > 0 {
				return parts, nil
			}
			return parts, &ParseError{Reason: ReasonMultipart, Err: err}
		}

		parts, err = flatten(child, depth+1, maxDepth, parts)
		if err != nil {
			return parts, err
		}
	}
}

// mediaType defaults to text/plain when the header is absent or unparsable.
func mediaType(h message.Header) string {
	t, _, err := h.ContentType()
	if err != nil || t == "" {
		return "text/plain"
	}
	return t
}

func filename(h message.Header) string {
	if _, params, err := h.ContentDisposition(); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if _, params, err := h.ContentType(); err == nil && params["name"] != "" {
		return params["name"]
	}
	return ""
}

// readBody returns what could be read; a body cut short keeps its prefix.
func readBody(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}

// isDecodeError reports errors after which the entity is still readable,
// with its body left undecoded.
func isDecodeError(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}
