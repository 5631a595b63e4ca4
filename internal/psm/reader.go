// Package psm provides reading of wide, header-indexed PSM tables such as
// Proteome Discoverer PSM exports and run/channel annotation sheets.
package psm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/xopen"
)

// Table holds a wide table: one header row and any number of data rows.
// Rows shorter than the header are padded with empty cells on read.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable creates a table from a header and rows.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, col := range t.Header {
		// First occurrence wins for duplicated column names.
		if _, ok := t.index[col]; !ok {
			t.index[col] = i
		}
	}
}

// Index returns the position of the named column, or -1 if absent.
func (t *Table) Index(name string) int {
	if t.index == nil {
		t.buildIndex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the named column is present.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at row i of the named column. Absent columns
// and short rows yield the empty string.
func (t *Table) Value(i int, name string) string {
	col := t.Index(name)
	if col < 0 || col >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][col]
}

// IsMissing reports whether a cell value denotes a missing observation.
func IsMissing(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NA", "NAN", "NULL":
		return true
	}
	return false
}

// ReadTable reads a delimited table from path. Tab is the delimiter unless
// the file name ends in .csv (optionally followed by a compression suffix).
// Compressed input (gzip, xz, zstd, bzip2) is detected transparently.
// Use "-" to read from stdin.
func ReadTable(path string) (*Table, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer r.Close()

	return ReadTableFrom(r, DelimiterFor(path))
}

// DelimiterFor returns the field delimiter implied by a file name.
func DelimiterFor(path string) rune {
	lower := strings.ToLower(path)
	for _, ext := range []string{".gz", ".xz", ".zst", ".bz2"} {
		lower = strings.TrimSuffix(lower, ext)
	}
	if strings.HasSuffix(lower, ".csv") {
		return ','
	}
	return '\t'
}

// ReadTableFrom reads a delimited table from r.
func ReadTableFrom(r io.Reader, comma rune) (*Table, error) {
	c := csv.NewReader(r)
	c.Comma = comma
	c.FieldsPerRecord = -1
	c.LazyQuotes = true

	header, err := c.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Line: 1, Message: "no header line found"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == 0 {
			// Strip a UTF-8 byte order mark left by spreadsheet exports.
			col = strings.TrimPrefix(col, "\ufeff")
		}
		header[i] = col
	}

	var rows [][]string
	for {
		rec, err := c.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Message: pe.Err.Error()}
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) > len(header) {
			line, _ := c.FieldPos(0)
			return nil, &ParseError{
				Line:    line,
				Message: fmt.Sprintf("expected at most %d columns, found %d", len(header), len(rec)),
			}
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		rows = append(rows, rec)
	}

	return NewTable(header, rows), nil
}

// ParseError represents an error during table parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table parse error at line %d: %s", e.Line, e.Message)
}
