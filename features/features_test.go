package features

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dhcgn/email-features/model"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

var nestedMessage = crlf(
	"From: Billing <billing@service.com>",
	"To: me@example.com, Accounts <accounts@example.org>",
	"Subject: Your invoice",
	"Date: Mon, 15 Jan 2024 08:15:00 +0000",
	"MIME-Version: 1.0",
	`Content-Type: multipart/mixed; boundary="outer"`,
	"",
	"--outer",
	`Content-Type: multipart/alternative; boundary="inner"`,
	"",
	"--inner",
	"Content-Type: text/html; charset=utf-8",
	"",
	"<p>Your invoice is <b>ready</b></p>",
	"--inner",
	"Content-Type: text/plain; charset=utf-8",
	"",
	"Your invoice is ready",
	"--inner--",
	"--outer",
	`Content-Type: application/pdf; name="invoice.pdf"`,
	`Content-Disposition: attachment; filename="invoice.pdf"`,
	"Content-Transfer-Encoding: base64",
	"",
	"JVBERi0xLjQK",
	"--outer--",
	"",
)

var htmlOnlyMessage = crlf(
	"From: deals@shop.com",
	"Subject: Sale",
	`Content-Type: multipart/alternative; boundary="b1"`,
	"",
	"--b1",
	"Content-Type: text/html; charset=utf-8",
	"",
	"<html><head><title>T</title></head><body><h1>Sale</h1><p>50% off today</p></body></html>",
	"--b1--",
	"",
)

func TestParseSimple(t *testing.T) {
	got, err := Parse("From: colleague@company.com\nSubject: Hi\n\nBody text")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := model.FeatureRecord{
		Subject:        "Hi",
		Sender:         "colleague@company.com",
		Recipients:     []string{},
		Content:        "Body text",
		HasAttachments: false,
		ContentLength:  9,
		SubjectLength:  2,
		SenderDomain:   "company.com",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		wantSender string
		wantDomain string
	}{
		{name: "display name", from: "Jane Doe <jane@x.com>", wantSender: "jane@x.com", wantDomain: "x.com"},
		{name: "bare address", from: "jane@x.com", wantSender: "jane@x.com", wantDomain: "x.com"},
		{name: "no address", from: "Jane Doe", wantSender: "Jane Doe", wantDomain: ""},
		{name: "empty brackets kept raw", from: "Jane <>", wantSender: "Jane <>", wantDomain: ""},
		{name: "encoded display name", from: "=?UTF-8?Q?Zo=C3=AB?= <zoe@example.fr>", wantSender: "zoe@example.fr", wantDomain: "example.fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("From: " + tt.from + "\n\nbody")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Sender != tt.wantSender {
				t.Errorf("Sender = %q, want %q", got.Sender, tt.wantSender)
			}
			if got.SenderDomain != tt.wantDomain {
				t.Errorf("SenderDomain = %q, want %q", got.SenderDomain, tt.wantDomain)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	got, err := Parse("X-Mailer: test\n\nhello")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Subject != NoSubject || got.SubjectLength != len(NoSubject) {
		t.Errorf("Subject = %q (%d), want %q", got.Subject, got.SubjectLength, NoSubject)
	}
	if got.Sender != "" || got.SenderDomain != "" {
		t.Errorf("Sender = %q, SenderDomain = %q, want empty", got.Sender, got.SenderDomain)
	}
	if got.Recipients == nil || len(got.Recipients) != 0 {
		t.Errorf("Recipients = %#v, want empty non-nil slice", got.Recipients)
	}
	if got.Date != nil {
		t.Errorf("Date = %v, want nil", got.Date)
	}
}

func TestParseEmptySubjectHeader(t *testing.T) {
	got, err := Parse("Subject:   \n\nbody")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Subject != NoSubject {
		t.Errorf("Subject = %q, want %q", got.Subject, NoSubject)
	}
}

func TestParseRecipients(t *testing.T) {
	raw := "To: Alice <alice@example.com>, bob.smith@mail.example.org,\n\tcarol-x@corp.co.uk\n\nhi"
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"alice@example.com", "bob.smith@mail.example.org", "carol-x@corp.co.uk"}
	if !reflect.DeepEqual(got.Recipients, want) {
		t.Errorf("Recipients = %v, want %v", got.Recipients, want)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want *time.Time
	}{
		{
			name: "rfc5322",
			date: "Mon, 15 Jan 2024 10:30:00 +0000",
			want: ptr(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name: "offset",
			date: "Sun, 14 Jan 2024 16:30:00 -0500",
			want: ptr(time.Date(2024, 1, 14, 21, 30, 0, 0, time.UTC)),
		},
		{name: "garbage", date: "next tuesday-ish", want: nil},
		{name: "iso", date: "2024-01-15 10:30:00", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("Date: " + tt.date + "\n\nbody")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			switch {
			case tt.want == nil && got.Date != nil:
				t.Errorf("Date = %v, want nil", got.Date)
			case tt.want != nil && got.Date == nil:
				t.Errorf("Date = nil, want %v", tt.want)
			case tt.want != nil && !got.Date.Equal(*tt.want):
				t.Errorf("Date = %v, want %v", got.Date, tt.want)
			}
		})
	}
}

func TestParseNestedMultipart(t *testing.T) {
	got, err := Parse(nestedMessage)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Content != "Your invoice is ready" {
		t.Errorf("Content = %q, want %q", got.Content, "Your invoice is ready")
	}
	if got.ContentLength != len("Your invoice is ready") {
		t.Errorf("ContentLength = %d", got.ContentLength)
	}
	if !got.HasAttachments {
		t.Error("HasAttachments = false, want true")
	}
	if got.Sender != "billing@service.com" || got.SenderDomain != "service.com" {
		t.Errorf("Sender = %q, SenderDomain = %q", got.Sender, got.SenderDomain)
	}
	wantTo := []string{"me@example.com", "accounts@example.org"}
	if !reflect.DeepEqual(got.Recipients, wantTo) {
		t.Errorf("Recipients = %v, want %v", got.Recipients, wantTo)
	}
	if got.Date == nil || !got.Date.Equal(time.Date(2024, 1, 15, 8, 15, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", got.Date)
	}
}

func TestParseHTMLOnly(t *testing.T) {
	got, err := Parse(htmlOnlyMessage)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Content != "" {
		t.Errorf("Content = %q, want empty without text/plain part", got.Content)
	}

	x := New(Options{HTMLFallback: true}, nil)
	got, err = x.Parse(htmlOnlyMessage)
	if err != nil {
		t.Fatalf("Parse() with fallback error = %v", err)
	}
	if got.Content != "Sale 50% off today" {
		t.Errorf("Content = %q, want %q", got.Content, "Sale 50% off today")
	}
}

func TestParseDecoding(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSubject string
		wantContent string
	}{
		{
			name: "quoted-printable latin1",
			raw: crlf(
				"Subject: =?UTF-8?Q?Caf=C3=A9_menu?=",
				"Content-Type: text/plain; charset=iso-8859-1",
				"Content-Transfer-Encoding: quoted-printable",
				"",
				"Caf=E9 au lait",
			),
			wantSubject: "Café menu",
			wantContent: "Café au lait",
		},
		{
			name: "base64 part",
			raw: crlf(
				"Subject: encoded",
				`Content-Type: multipart/mixed; boundary="x"`,
				"",
				"--x",
				"Content-Type: text/plain",
				"Content-Transfer-Encoding: base64",
				"",
				"SGVsbG8gZnJvbSBiYXNlNjQ=",
				"--x--",
			),
			wantSubject: "encoded",
			wantContent: "Hello from base64",
		},
		{
			name: "unknown charset left undecoded",
			raw: crlf(
				"Subject: odd",
				"Content-Type: text/plain; charset=x-made-up",
				"",
				"plain ascii",
			),
			wantSubject: "odd",
			wantContent: "plain ascii",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", got.Subject, tt.wantSubject)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if got.SubjectLength != len([]rune(tt.wantSubject)) {
				t.Errorf("SubjectLength = %d, want %d", got.SubjectLength, len([]rune(tt.wantSubject)))
			}
		})
	}
}

func TestParseSinglePartAttachment(t *testing.T) {
	raw := crlf(
		"Subject: scan",
		`Content-Type: application/octet-stream; name="scan.bin"`,
		"",
		"binary",
	)
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.HasAttachments {
		t.Error("HasAttachments = false, want true")
	}
	if got.Content != "binary" {
		t.Errorf("Content = %q, want whole body", got.Content)
	}
}

func TestParseBodyOnly(t *testing.T) {
	text := "Hi, let's meet tomorrow at 2pm to discuss the project. Please bring your notes."
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Content != text {
		t.Errorf("Content = %q, want %q", got.Content, text)
	}
	if got.Subject != NoSubject {
		t.Errorf("Subject = %q, want %q", got.Subject, NoSubject)
	}
}

func TestParseCRLFContent(t *testing.T) {
	got, err := Parse("From: a@x.com\r\nSubject: Hi\r\n\r\nline one\r\nline two\r\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := "line one\nline two\n"; got.Content != want {
		t.Errorf("Content = %q, want %q", got.Content, want)
	}
	if got.ContentLength != 18 {
		t.Errorf("ContentLength = %d, want 18", got.ContentLength)
	}
}

func TestParseTruncatedMultipart(t *testing.T) {
	raw := crlf(
		"From: a@x.com",
		"Subject: cut short",
		`Content-Type: multipart/mixed; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/plain",
		"",
		"hello",
		"--b",
		`Content-Type: application/pdf; name="a.pdf"`,
		`Content-Disposition: attachment; filename="a.pdf"`,
		"",
		"%PDF-1.4",
	)
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("Content = %q, want %q", got.Content, "hello")
	}
	if !got.HasAttachments {
		t.Error("HasAttachments = false, want true")
	}
	if got.Subject != "cut short" {
		t.Errorf("Subject = %q", got.Subject)
	}
}

func TestParseMboxEnvelopeLine(t *testing.T) {
	got, err := Parse("From someone@example.com Mon Jan 15 10:30:00 2024\nFrom: someone@example.com\nSubject: Hi\n\nbody")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Sender != "someone@example.com" || got.Subject != "Hi" || got.Content != "body" {
		t.Errorf("Parse() = %+v", got)
	}
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if got.Subject != NoSubject || got.Content != "" || got.ContentLength != 0 {
		t.Errorf("Parse(\"\") = %+v", got)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		raw    string
		reason Reason
	}{
		{
			name: "missing boundary",
			raw: crlf(
				"Subject: broken",
				`Content-Type: multipart/mixed; boundary="never"`,
				"",
				"there is no boundary line in this body",
			),
			reason: ReasonMultipart,
		},
		{
			name:   "too deep",
			opts:   Options{MaxDepth: 1},
			raw:    nestedMessage,
			reason: ReasonNesting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.opts, nil).Parse(tt.raw)
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", got)
			}
			if !errors.Is(err, ErrMalformedMessage) {
				t.Errorf("error %v does not match ErrMalformedMessage", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if perr.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", perr.Reason, tt.reason)
			}
			if !reflect.DeepEqual(got, model.FeatureRecord{}) {
				t.Errorf("Parse() = %+v, want zero record", got)
			}
		})
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x02\xff\xfe",
		"\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01",
		":\n:\n\n",
		"Subject: " + strings.Repeat("x", 10000) + "\n\nbody",
		"Content-Type: multipart/mixed\n\n--\n--",
		"Content-Type: multipart/mixed; boundary=\"a\"\n\n--a\nContent-Type: multipart/mixed; boundary=\"a\"\n\n--a--\n",
		"Content-Type: text/plain; charset=\"\n\n\xc3\x28",
		"Content-Transfer-Encoding: base64\n\n!!!not base64!!!",
		" leading continuation\nSubject: x\n\nbody",
		"From: <\nTo: @@@\nDate: \x00\n\n",
	}

	for _, in := range inputs {
		got, err := Parse(in)
		if err != nil && !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("Parse(%q) error = %v, want nil or ErrMalformedMessage", in, err)
		}
		if err == nil && got.Subject == "" {
			t.Errorf("Parse(%q) returned a record without subject", in)
		}
	}
}

func TestExtractForTraining(t *testing.T) {
	broken := crlf(
		"Subject: broken",
		`Content-Type: multipart/mixed; boundary="never"`,
		"",
		"no parts",
	)
	records := []model.EmailRecord{
		{ID: "4", Content: "From: spam@fake.com\nSubject: You won a prize!\n\nClaim now", FilterLabel: "spam"},
		{Content: "Subject: Hi\n\nhello"},
		{ID: "9", Content: broken, FilterLabel: "work"},
	}

	got := New(Options{}, nil).ExtractForTraining(records)
	if len(got) != len(records) {
		t.Fatalf("len = %d, want %d", len(got), len(records))
	}

	if got[0].FilterLabel != "spam" || got[0].EmailID != "4" {
		t.Errorf("record 0 labels = %q/%q", got[0].FilterLabel, got[0].EmailID)
	}
	if got[0].FeatureRecord == nil || got[0].Subject != "You won a prize!" || got[0].SenderDomain != "fake.com" {
		t.Errorf("record 0 features = %+v", got[0].FeatureRecord)
	}

	if got[1].FilterLabel != UnknownLabel || got[1].EmailID != "" {
		t.Errorf("record 1 labels = %q/%q, want %q/\"\"", got[1].FilterLabel, got[1].EmailID, UnknownLabel)
	}
	if got[1].FeatureRecord == nil || got[1].Content != "hello" {
		t.Errorf("record 1 features = %+v", got[1].FeatureRecord)
	}

	if got[2].FeatureRecord != nil {
		t.Errorf("record 2 features = %+v, want nil", got[2].FeatureRecord)
	}
	if !errors.Is(got[2].Err, ErrMalformedMessage) {
		t.Errorf("record 2 Err = %v", got[2].Err)
	}
	if got[2].FilterLabel != "work" || got[2].EmailID != "9" {
		t.Errorf("record 2 labels = %q/%q", got[2].FilterLabel, got[2].EmailID)
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantFields []string
		wantBody   string
	}{
		{name: "LF", raw: "A: 1\nB: 2\n\nbody\n", wantFields: []string{"A: 1", "B: 2"}, wantBody: "body\n"},
		{name: "CRLF", raw: "A: 1\r\n\r\nbody", wantFields: []string{"A: 1"}, wantBody: "body"},
		{name: "folded", raw: "A: 1\n  more\n\nbody", wantFields: []string{"A: 1", "  more"}, wantBody: "body"},
		{name: "no blank line", raw: "A: 1\nplain text", wantFields: []string{"A: 1"}, wantBody: "plain text"},
		{name: "headers only", raw: "A: 1\nB: 2", wantFields: []string{"A: 1", "B: 2"}, wantBody: ""},
		{name: "no headers", raw: "just text\n\nmore", wantFields: nil, wantBody: "just text\n\nmore"},
		{name: "leading blank", raw: "\nbody", wantFields: nil, wantBody: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, body := splitMessage(tt.raw)
			if !reflect.DeepEqual(fields, tt.wantFields) {
				t.Errorf("fields = %q, want %q", fields, tt.wantFields)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Parse(nestedMessage); err != nil {
			b.Fatal(err)
		}
	}
}
