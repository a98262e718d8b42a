package sheet

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

func loadXLSX(path string, opts Options) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("error closing workbook", "path", path, "error", closeErr)
		}
	}()

	name := opts.Sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		name = sheets[0]
	}

	cells, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	rows := make([]Row, len(cells))
	for i, line := range cells {
		rows[i] = toRow(line)
	}
	slog.Debug("workbook loaded", "path", path, "sheet", name, "rows", len(rows))
	return rows, nil
}

// toRow converts string cells to a Row, mapping empty strings to nil so
// blank cells look the same regardless of source format.
func toRow(line []string) Row {
	row := make(Row, len(line))
	for j, v := range line {
		if v == "" {
			continue
		}
		row[j] = v
	}
	return row
}
