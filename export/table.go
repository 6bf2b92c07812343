// Package export writes and reads the tabular dataset files (CSV and JSON).
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownFormat is returned for file extensions other than .csv and .json.
var ErrUnknownFormat = errors.New("unknown file format (want .csv or .json)")

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Row is one table row keyed by column name.
type Row map[string]string

// ReadTable reads a CSV file with a header line into rows.
func ReadTable(r io.Reader) ([]string, []Row, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line, err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}
}

// WriteTable writes rows as CSV with the given column order.
func WriteTable(w io.Writer, columns []string, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			record[i] = row[name]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTableJSON writes rows as a JSON array of objects.
func WriteTableJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	return encodeJSON(w, rows)
}

// LoadTable reads a .csv or .json table file.
func LoadTable(path string) ([]string, []Row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	if format == FormatCSV {
		return ReadTable(file)
	}

	var objects []map[string]any
	if err := json.NewDecoder(file).Decode(&objects); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var columns []string
	seen := make(map[string]bool)
	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		row := make(Row, len(obj))
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
			row[k] = jsonString(obj[k])
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// SaveTable writes rows to path as CSV or JSON, creating the directory.
func SaveTable(path string, columns []string, rows []Row) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		if format == FormatCSV {
			return WriteTable(w, columns, rows)
		}
		return WriteTableJSON(w, rows)
	})
}

func jsonString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return write(file)
}
