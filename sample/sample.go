// Package sample provides the illustrative email dataset used to try the
// pipeline before real exports are available.
package sample

import (
	"bytes"
	"fmt"
	"io"
	"time"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/email-features/export"
	"github.com/dhcgn/email-features/model"
)

// DateLayout is the date format of the sample table.
const DateLayout = "2006-01-02 15:04:05"

// Recipient is the To address of every rendered sample message.
const Recipient = "me@example.com"

// Columns is the column order of the sample table.
var Columns = []string{"id", "subject", "sender", "content", "date", "filter_label"}

// MessageID is the Message-Id of the rendered sample with the given id,
// without angle brackets.
func MessageID(id string) string {
	return "sample-" + id + "@email-features.local"
}

// Email is one labeled sample message.
type Email struct {
	ID          string
	Subject     string
	Sender      string
	Content     string
	Date        time.Time
	FilterLabel string
}

// Emails returns the sample dataset. Dates are UTC.
func Emails() []Email {
	return []Email{
		{"1", "Meeting tomorrow at 2pm", "colleague@company.com",
			"Hi, let's meet tomorrow at 2pm to discuss the project. Please bring your notes.",
			date("2024-01-15 10:30:00"), "work"},
		{"2", "Weekly Newsletter - Tech Updates", "newsletter@tech.com",
			"This week's top tech news: AI developments, new programming languages, and industry trends.",
			date("2024-01-15 09:00:00"), "newsletter"},
		{"3", "Your invoice #12345 is ready", "billing@service.com",
			"Your invoice for $150.00 is ready for payment. Due date: January 30, 2024.",
			date("2024-01-15 08:15:00"), "billing"},
		{"4", "You won a prize!", "spam@fake.com",
			"Congratulations! You've won $1,000,000! Click here to claim your prize!",
			date("2024-01-15 07:45:00"), "spam"},
		{"5", "Project status update", "manager@company.com",
			"The Q1 project is on track. We need to review the budget next week.",
			date("2024-01-14 16:30:00"), "work"},
		{"6", "Your order has shipped", "orders@shop.com",
			"Your order #45678 has been shipped and will arrive in 3-5 business days.",
			date("2024-01-14 14:20:00"), "shopping"},
		{"7", "Security alert - new login", "security@bank.com",
			"We detected a new login to your account. If this wasn't you, please contact us immediately.",
			date("2024-01-14 12:10:00"), "security"},
		{"8", "Monthly digest - AI research", "research@ai.org",
			"Latest AI research papers and breakthroughs in machine learning and neural networks.",
			date("2024-01-14 11:00:00"), "newsletter"},
	}
}

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Rows converts emails to table rows in Columns layout.
func Rows(emails []Email) []export.Row {
	rows := make([]export.Row, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, export.Row{
			"id":           e.ID,
			"subject":      e.Subject,
			"sender":       e.Sender,
			"content":      e.Content,
			"date":         e.Date.Format(DateLayout),
			"filter_label": e.FilterLabel,
		})
	}
	return rows
}

// Save writes emails as a sample table to path (.csv or .json).
func Save(path string, emails []Email) error {
	return export.SaveTable(path, Columns, Rows(emails))
}

// Render builds an RFC 5322 message for e.
func Render(e Email) ([]byte, error) {
	var h mail.Header
	h.SetDate(e.Date)
	h.SetSubject(e.Subject)
	h.SetAddressList("From", []*mail.Address{{Address: e.Sender}})
	h.SetAddressList("To", []*mail.Address{{Address: Recipient}})
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.SetMessageID(MessageID(e.ID))

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message %s: %w", e.ID, err)
	}
	if _, err := io.WriteString(w, e.Content); err != nil {
		return nil, fmt.Errorf("write message %s: %w", e.ID, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message %s: %w", e.ID, err)
	}
	return buf.Bytes(), nil
}

// Records returns the emails as extractor input. With raw set the content is
// the rendered message, otherwise the plain body text.
func Records(emails []Email, raw bool) ([]model.EmailRecord, error) {
	recs := make([]model.EmailRecord, 0, len(emails))
	for _, e := range emails {
		content := e.Content
		if raw {
			b, err := Render(e)
			if err != nil {
				return nil, err
			}
			content = string(b)
		}
		recs = append(recs, model.EmailRecord{ID: e.ID, Content: content, FilterLabel: e.FilterLabel})
	}
	return recs, nil
}

// WriteMbox writes the rendered emails as an mbox archive.
func WriteMbox(w io.Writer, emails []Email) error {
	mw := mboxlib.NewWriter(w)
	for _, e := range emails {
		b, err := Render(e)
		if err != nil {
			return err
		}
		msg, err := mw.CreateMessage(e.Sender, e.Date)
		if err != nil {
			return fmt.Errorf("mbox message %s: %w", e.ID, err)
		}
		if _, err := msg.Write(b); err != nil {
			return fmt.Errorf("mbox message %s: %w", e.ID, err)
		}
	}
	return mw.Close()
}
