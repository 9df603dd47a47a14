package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"survey-curator/internal/diagnostic"
)

// DelimiterFor returns the delimiter implied by a file extension.
func DelimiterFor(path string) (rune, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ',', true
	case ".tsv", ".tab", ".txt":
		return '\t', true
	default:
		return 0, false
	}
}

// ReadFile reads a delimited file, choosing the delimiter from its extension.
func ReadFile(path string) (*Table, error) {
	delim, ok := DelimiterFor(path)
	if !ok {
		return nil, diagnostic.UserInputf("unsupported input format %q (expected .csv or .tsv)", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, diagnostic.UserInputf("cannot read %s: %v", path, err)
	}
	defer f.Close()

	t, err := Read(f, delim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// Read parses delimited text with a header row. Empty cells become nil.
func Read(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, diagnostic.UserInputf("source is empty")
	}

	if err != nil {
		return nil, diagnostic.UserInputf("cannot parse header: %v", err)
	}

	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	if len(header) == 1 && strings.ContainsAny(header[0], ",;\t") {
		return nil, diagnostic.UserInputf("header %q has a single column; wrong delimiter %q?", header[0], delim)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := New(header...)

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, diagnostic.UserInputf("line %d: %v", line, err)
		}

		if len(rec) > len(header) {
			return nil, diagnostic.UserInputf("line %d has %d cells, header has %d", line, len(rec), len(header))
		}

		row := make([]any, len(header))
		for i, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				row[i] = cell
			}
		}

		t.Rows = append(t.Rows, row)
	}

	if t.Len() == 0 {
		return nil, diagnostic.UserInputf("source has a header but no rows")
	}

	return t, nil
}
