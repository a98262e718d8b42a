// Package discover locates the phone-number column in headerless tabular
// data and extracts it as a batch of canonical numbers.
//
// Locating and extracting are split: a Locator decides which row is the
// header and which column holds phone numbers, and Discover reads the cells
// below it. KeywordLocator is the only strategy today.
package discover

import (
	"errors"
	"strings"

	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sheet"
)

// ErrNoPhoneColumn is returned when no row contains a phone-column header.
var ErrNoPhoneColumn = errors.New("could not find a valid phone number column")

// Column identifies the header cell that names the phone-number column.
type Column struct {
	HeaderRow int    // index of the header row in the input
	Index     int    // column index within every row
	Header    string // text of the matching header cell
}

// Batch is an ordered list of canonical numbers in sheet order.
// It may contain duplicates; the send orchestrator dedupes.
type Batch []phone.Number

// Strings returns the batch as plain strings.
func (b Batch) Strings() []string {
	out := make([]string, len(b))
	for i, n := range b {
		out[i] = string(n)
	}
	return out
}

// Locator finds the phone-number column in raw rows.
type Locator interface {
	Locate(rows []sheet.Row) (Column, bool)
}

// Discover locates the phone column with loc and returns the normalized
// values of every non-blank cell strictly below the header row, in row order.
// found is false when loc finds no header.
func Discover(rows []sheet.Row, loc Locator, n phone.Normalizer) (Column, Batch, bool) {
	col, ok := loc.Locate(rows)
	if !ok {
		return Column{}, nil, false
	}

	batch := make(Batch, 0, len(rows)-col.HeaderRow-1)
	for _, row := range rows[col.HeaderRow+1:] {
		cell := row.Cell(col.Index)
		if isBlank(cell) {
			continue
		}
		batch = append(batch, n.Normalize(cell))
	}
	return col, batch, true
}

func isBlank(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
