package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFileType is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFileType = errors.New("only CSV and Excel files are supported")

// ErrNoUsableRows is returned when a file normalizes structurally but zero
// rows survive cleaning. Uploads reject it; query paths treat an empty
// dataset as a valid answer instead.
var ErrNoUsableRows = errors.New("no usable rows after cleaning")

// MissingColumnsError reports which of the five required columns could not
// be derived from the input under any recognized naming convention.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}
