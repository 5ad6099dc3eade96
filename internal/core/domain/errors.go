package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Input Errors
// ============================================================================

var (
	ErrMissingFile   = errors.New("no file uploaded")
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidNumber = errors.New("value is not a number")
	ErrMalformedCSV  = errors.New("malformed csv")
	ErrUploadTooBig  = errors.New("upload exceeds size limit")
)

// ============================================================================
// Artifact Errors
// ============================================================================

var (
	ErrArtifactNotFound    = errors.New("artifact not found")
	ErrInvalidArtifactName = errors.New("invalid artifact name")
)

// ============================================================================
// Run Journal Errors
// ============================================================================

var (
	ErrRunJournalDisabled = errors.New("run journal is disabled")
	ErrInvalidLimit       = errors.New("limit must be a positive integer")
)

// SchemaError lists required columns absent from the header.
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, strings.Join(e.Columns, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrMissingColumn }

// ParseError points at the first cell that could not be read as a number.
// Row is 1-based over data rows, not counting the header.
type ParseError struct {
	Row    int
	Column string
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d column %q: %s: %q", e.Row, e.Column, ErrInvalidNumber, e.Value)
}

func (e *ParseError) Unwrap() error { return ErrInvalidNumber }
