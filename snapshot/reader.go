package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"

	"bannerwatch/models"
)

// Row is one CSV snapshot row keyed by column name. Get defaults absent
// columns to "N/A" so two snapshots with different column sets remain
// comparable.
type Row map[string]string

// Get returns the value of a column, defaulting to "N/A".
func (r Row) Get(column string) string {
	if v, ok := r[column]; ok {
		return v
	}
	return models.NotAvailable
}

// CRN returns the row's primary key.
func (r Row) CRN() string {
	return r.Get("CRN")
}

// LoadRows reads a CSV snapshot file into rows keyed by its own header.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
