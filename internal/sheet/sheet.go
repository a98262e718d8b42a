// Package sheet loads tabular contact files into raw rows.
//
// No header row is assumed: every row of the sheet is returned in order, and
// cells keep whatever value the file format yields. Locating the phone
// column is the job of package discover.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Row is one spreadsheet row. Rows may be ragged; a missing trailing cell is
// equivalent to a blank one.
type Row []any

// Cell returns the value at column i, or nil when the row is too short.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Options tune how a file is read.
type Options struct {
	// Sheet selects a worksheet by name in workbook formats.
	// Empty selects the first sheet.
	Sheet string
}

// Load reads every row from the file at path, choosing a reader by extension.
func Load(path string, opts Options) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path, opts)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedFormat)
	}
}
