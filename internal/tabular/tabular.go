// Package tabular decodes uploaded CSV and XLSX files into domain tables
// and encodes canonical tables back to CSV for storage.
package tabular

import (
	"path/filepath"
	"strings"

	"github.com/powerviz/plant-data-api/internal/domain"
)

// DefaultSheet is the eGRID sheet holding generator-level data.
const DefaultSheet = "GEN23"

// Supported reports whether the filename carries an ingestible extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Decode reads an uploaded file into a table, dispatching on the filename
// extension. sheet selects the spreadsheet sheet for XLSX input; an empty
// sheet means DefaultSheet. CSV input ignores sheet.
func Decode(filename string, data []byte, sheet string) (domain.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(data)
	case ".xlsx":
		return DecodeXLSX(data, sheet)
	}
	return domain.Table{}, domain.ErrUnsupportedFileType
}

// CleanedObjectName derives the stored blob name for an upload:
// foo.csv or foo.xlsx becomes cleaned_foo.csv.
func CleanedObjectName(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return "cleaned_" + base + ".csv"
}
