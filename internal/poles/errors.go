package poles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither xlsx workbooks nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidWorkbook is returned when the file looks like a spreadsheet but cannot be read.
	ErrInvalidWorkbook = errors.New("invalid workbook")

	// ErrMissingColumns is returned when a required column is absent from the header row.
	ErrMissingColumns = errors.New("missing required column")

	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("pole index out of range")
)

// LoadError reports that an uploaded resource could not be turned into a table.
// No partial table accompanies it.
type LoadError struct {
	Source string // File name as uploaded
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// missingColumnsError lists the required columns absent from a header row.
func missingColumnsError(missing []string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}

// IndexError reports an edit requested outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("pole index out of range: %d not in [0, %d)", e.Index, e.Len)
}

// Is lets errors.Is(err, ErrIndexOutOfRange) match.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
