package model

import "time"

// EmailRecord is one input row: raw message text plus optional labelling.
type EmailRecord struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	FilterLabel string `json:"filter_label"`
}

// FeatureRecord is the fixed-schema feature row extracted from one message.
type FeatureRecord struct {
	Subject        string     `json:"subject"`
	Sender         string     `json:"sender"`
	Recipients     []string   `json:"recipients"`
	Date           *time.Time `json:"date"`
	Content        string     `json:"content"`
	HasAttachments bool       `json:"has_attachments"`
	ContentLength  int        `json:"content_length"`
	SubjectLength  int        `json:"subject_length"`
	SenderDomain   string     `json:"sender_domain"`
}

// TrainingRecord is a FeatureRecord labelled for ML training. FeatureRecord is nil
// when the message could not be parsed; Err then holds the reason.
type TrainingRecord struct {
	*FeatureRecord
	FilterLabel string `json:"filter_label"`
	EmailID     string `json:"email_id"`
	Err         error  `json:"-"`
}

// Columns lists the exported column order of a TrainingRecord.
var Columns = []string{
	"subject",
	"sender",
	"recipients",
	"date",
	"content",
	"has_attachments",
	"content_length",
	"subject_length",
	"sender_domain",
	"filter_label",
	"email_id",
}
