package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dhcgn/email-features/model"
)

// recipientSeparator joins recipients in one CSV cell. It cannot occur in an
// extracted address.
const recipientSeparator = ";"

// WriteCSV writes training records with one row per record in model.Columns
// order. Feature columns of failed records are left empty.
func WriteCSV(w io.Writer, recs []model.TrainingRecord) error {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toRow(rec))
	}
	return WriteTable(w, model.Columns, rows)
}

// ReadCSV reads training records written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.TrainingRecord, error) {
	_, rows, err := ReadTable(r)
	if err != nil {
		return nil, err
	}

	recs := make([]model.TrainingRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteJSON writes training records as an indented JSON array.
func WriteJSON(w io.Writer, recs []model.TrainingRecord) error {
	if recs == nil {
		recs = []model.TrainingRecord{}
	}
	return encodeJSON(w, recs)
}

// ReadJSON reads training records written by WriteJSON.
func ReadJSON(r io.Reader) ([]model.TrainingRecord, error) {
	var recs []model.TrainingRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// Save writes training records to path, choosing CSV or JSON by extension.
func Save(path string, recs []model.TrainingRecord) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		if format == FormatCSV {
			return WriteCSV(w, recs)
		}
		return WriteJSON(w, recs)
	})
}

// Load reads training records from a .csv or .json file.
func Load(path string) ([]model.TrainingRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if format == FormatCSV {
		return ReadCSV(file)
	}
	return ReadJSON(file)
}

// LoadEmailRecords reads input records (id, content, filter_label) from a
// .csv or .json file. Missing columns stay empty.
func LoadEmailRecords(path string) ([]model.EmailRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	if format == FormatJSON {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		var recs []model.EmailRecord
		if err := json.NewDecoder(file).Decode(&recs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return recs, nil
	}

	columns, rows, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(columns, "content") {
		return nil, fmt.Errorf("%s: missing content column", path)
	}

	recs := make([]model.EmailRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, model.EmailRecord{
			ID:          row["id"],
			Content:     row["content"],
			FilterLabel: row["filter_label"],
		})
	}
	return recs, nil
}

func toRow(rec model.TrainingRecord) Row {
	row := Row{
		"filter_label": rec.FilterLabel,
		"email_id":     rec.EmailID,
	}

	f := rec.FeatureRecord
	if f == nil {
		return row
	}

	row["subject"] = f.Subject
	row["sender"] = f.Sender
	row["recipients"] = strings.Join(f.Recipients, recipientSeparator)
	if f.Date != nil {
		row["date"] = f.Date.Format(time.RFC3339)
	}
	row["content"] = f.Content
	row["has_attachments"] = strconv.FormatBool(f.HasAttachments)
	row["content_length"] = strconv.Itoa(f.ContentLength)
	row["subject_length"] = strconv.Itoa(f.SubjectLength)
	row["sender_domain"] = f.SenderDomain
	return row
}

func fromRow(row Row) (model.TrainingRecord, error) {
	rec := model.TrainingRecord{
		FilterLabel: row["filter_label"],
		EmailID:     row["email_id"],
	}

	// a parsed record always has a length; failed ones have none
	if row["content_length"] == "" {
		return rec, nil
	}

	f := &model.FeatureRecord{
		Subject:      row["subject"],
		Sender:       row["sender"],
		Recipients:   []string{},
		Content:      row["content"],
		SenderDomain: row["sender_domain"],
	}
	if v := row["recipients"]; v != "" {
		f.Recipients = strings.Split(v, recipientSeparator)
	}

	var err error
	if v := row["date"]; v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return rec, fmt.Errorf("date: %w", err)
		}
		f.Date = &t
	}
	if f.HasAttachments, err = strconv.ParseBool(row["has_attachments"]); err != nil {
		return rec, fmt.Errorf("has_attachments: %w", err)
	}
	if f.ContentLength, err = strconv.Atoi(row["content_length"]); err != nil {
		return rec, fmt.Errorf("content_length: %w", err)
	}
	if f.SubjectLength, err = strconv.Atoi(row["subject_length"]); err != nil {
		return rec, fmt.Errorf("subject_length: %w", err)
	}

	rec.FeatureRecord = f
	return rec, nil
}
