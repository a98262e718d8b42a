package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
)

func loadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows are ragged in hand-made contact lists
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = toRow(rec)
	}
	return rows, nil
}
