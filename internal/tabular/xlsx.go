package tabular

import (
	"bytes"
	"fmt"

	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

// DecodeXLSX parses one sheet of an XLSX workbook into a table. An empty
// sheet name selects DefaultSheet. The sheet's first row is the header.
func DecodeXLSX(data []byte, sheet string) (domain.Table, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	rows, err := file.Rows(sheet)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.Table{}, fmt.Errorf("sheet %q is empty", sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q header: %w", sheet, err)
	}

	table := domain.Table{Columns: header}
	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			return domain.Table{}, fmt.Errorf("read sheet %q row: %w", sheet, err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return table, nil
}
