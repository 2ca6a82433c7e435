package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MissingColumnError reports a required column absent from an input table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Table, e.Column)
}

// ErrEmptyTable is returned for a table without a header line.
var ErrEmptyTable = errors.New("table has no header")

// Table is a decoded CSV table. Header names are trimmed and lower-cased.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadTable reads and decodes a CSV file.
func ReadTable(path string, delimiter rune) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseTable(filepath.Base(path), data, delimiter)
}

// ParseTable decodes raw table bytes. UTF-8 and UTF-16 input is recognized
// by its byte-order mark; BOM-less input that is not valid UTF-8 is read as
// Windows-1252, the usual spreadsheet export encoding.
func ParseTable(name string, data []byte, delimiter rune) (*Table, error) {
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding: %w", name, err)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
		}
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}

	t := &Table{Name: name, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		t.Header = append(t.Header, h)
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func decode(data []byte) ([]byte, error) {
	if !hasBOM(data) && !utf8.Valid(data) {
		return charmap.Windows1252.NewDecoder().Bytes(data)
	}
	out, _, err := transform.Bytes(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), data)
	return out, err
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Require fails with a MissingColumnError for the first absent column.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return &MissingColumnError{Table: t.Name, Column: c}
		}
	}
	return nil
}

// Has reports whether the table has a column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Get returns a trimmed cell, or "" if the column or cell is absent.
func (t *Table) Get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Extra returns the cells of every column not in skip, keyed by header.
// When keep is non-empty only those columns are returned.
func (t *Table) Extra(row []string, skip, keep []string) map[string]string {
	var out map[string]string
	for _, h := range t.Header {
		if h == "" || contains(skip, h) || (len(keep) > 0 && !contains(keep, h)) {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[h] = t.Get(row, h)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
