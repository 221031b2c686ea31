package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is matched by every MissingColumnError
	ErrMissingColumn = errors.New("missing column")

	// ErrInconsistentCounts reports a row whose total is not casual + registered,
	// or that carries a negative count
	ErrInconsistentCounts = errors.New("inconsistent ride counts")

	// ErrEmptyDataset is returned when a source has a header but no data rows
	ErrEmptyDataset = errors.New("dataset has no rows")
)

// MissingColumnError reports a column the operation needs but the source
// dataset does not carry.
type MissingColumnError struct {
	Column string
	Op     string
}

func (e *MissingColumnError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: missing column %q", e.Op, e.Column)
	}
	return fmt.Sprintf("missing column %q", e.Column)
}

// Is lets errors.Is match against ErrMissingColumn
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// RowError locates a malformed cell in the source dataset. Row is 1-based and
// counts the header, so it matches what a spreadsheet shows.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
