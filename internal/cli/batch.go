package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/bulksend/internal/config"
	"github.com/roach88/bulksend/internal/discover"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sheet"
)

// noColumnMessage asks the operator for a usable file.
const noColumnMessage = `could not find a valid phone number column; please provide a file with a "Phone Number" or "Hand Phone" column`

// loadBatch reads the sheet at path and extracts its phone column.
func loadBatch(f *OutputFormatter, cfg *config.Config, path, sheetName string) (discover.Column, discover.Batch, error) {
	rows, err := sheet.Load(path, sheet.Options{Sheet: sheetName})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return discover.Column{}, nil, fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
	case err != nil:
		return discover.Column{}, nil, fail(f, ExitCommandError, ErrCodeSheet, fmt.Sprintf("failed to read %s", path), err)
	}
	f.VerboseLog("Read %d row(s) from %s", len(rows), path)

	loc := discover.NewKeywordLocator(cfg.Keywords...)
	col, batch, ok := discover.Discover(rows, loc, phone.NewNormalizer(cfg.CountryCode))
	if !ok {
		return discover.Column{}, nil, fail(f, ExitCommandError, ErrCodeNoPhoneColumn, noColumnMessage, discover.ErrNoPhoneColumn)
	}
	f.VerboseLog("Phone column %q at row %d, column %d: %d number(s)", col.Header, col.HeaderRow+1, col.Index+1, len(batch))

	return col, batch, nil
}
