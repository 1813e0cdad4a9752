package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/powerviz/plant-data-api/internal/domain"
)

// DecodeCSV parses comma-delimited UTF-8 text into a table. The first row is
// the header; ragged data rows are tolerated and surface as empty cells.
func DecodeCSV(data []byte) (domain.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // eGRID exports occasionally have ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return domain.Table{}, fmt.Errorf("read csv: no header row")
	}

	return domain.Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// EncodeCSV renders a table as comma-delimited UTF-8 text with a header row,
// the stored form of cleaned uploads.
func EncodeCSV(t domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
