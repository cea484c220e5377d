package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// datasetEncodings are tried in order until one decodes cleanly. UTF-8
// first (modern exports), then the legacy encodings older registry tooling
// produced.
var datasetEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"shift_jis", japanese.ShiftJIS},
	{"euc-jp", japanese.EUCJP},
}

// Load reads a roster CSV from disk, trying each supported encoding in
// priority order.
func Load(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read roster file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and parses raw CSV bytes into a Dataset. The first row is
// the header. Row indexes are assigned in file order starting at 0.
func Parse(raw []byte) (Dataset, error) {
	decoded, encodingName, err := decode(raw)
	if err != nil {
		return Dataset{}, err
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("parse csv (%s): %w", encodingName, err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("roster file is empty")
	}

	columns := make([]string, len(records[0]))
	for i, column := range records[0] {
		columns[i] = strings.TrimSpace(column)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		fields := make(map[string]string, len(columns))
		for j, column := range columns {
			if j < len(record) {
				fields[column] = record[j]
			}
		}
		rows = append(rows, Row{Index: i, Fields: fields})
	}

	return Dataset{Columns: columns, Rows: rows}, nil
}

// decode tries each supported encoding in order and returns the first
// result that is valid UTF-8 with no replacement characters. Decoders for
// the legacy encodings substitute U+FFFD instead of failing, so the
// replacement character is treated as a decode failure.
func decode(raw []byte) (string, string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	for _, candidate := range datasetEncodings {
		decoded, _, err := transform.Bytes(candidate.enc.NewDecoder(), raw)
		if err != nil {
			continue
		}
		if !utf8.Valid(decoded) || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded), candidate.name, nil
	}
	return "", "", fmt.Errorf("roster file is not valid utf-8, shift_jis, or euc-jp")
}

// WriteCSV serializes the dataset in UTF-8.
func (d Dataset) WriteCSV(path string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(d.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range d.Rows {
		record := make([]string, len(d.Columns))
		for i, column := range d.Columns {
			record[i] = row.Fields[column]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write corrected roster: %w", err)
	}
	return nil
}
