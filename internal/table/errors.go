package table

import (
	"errors"
	"fmt"
)

// MalformedTableError reports a CrossTab whose dimensions disagree with its
// value grid, or whose dimensions cannot identify records.
type MalformedTableError struct {
	// Reason is a human-readable description of the inconsistency.
	Reason string

	// Dimension names the offending dimension, if any.
	Dimension string
}

// Error implements the error interface.
func (e *MalformedTableError) Error() string {
	if e.Dimension != "" {
		return fmt.Sprintf("malformed table: %s (dimension=%s)", e.Reason, e.Dimension)
	}
	return fmt.Sprintf("malformed table: %s", e.Reason)
}

// UnsupportedValueTypeError reports a cell that is neither numeric nor missing.
type UnsupportedValueTypeError struct {
	Row      int
	Col      int
	RowLabel string
	ColLabel string
	Value    any
}

// Error implements the error interface.
func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("unsupported cell value %v (%T) at [%d,%d] (%s, %s)",
		e.Value, e.Value, e.Row, e.Col, e.RowLabel, e.ColLabel)
}

// IsMalformed returns true if err is or wraps a MalformedTableError.
func IsMalformed(err error) bool {
	var me *MalformedTableError
	return errors.As(err, &me)
}

// IsUnsupportedValue returns true if err is or wraps an UnsupportedValueTypeError.
func IsUnsupportedValue(err error) bool {
	var ue *UnsupportedValueTypeError
	return errors.As(err, &ue)
}

func malformed(dimension, format string, args ...any) *MalformedTableError {
	return &MalformedTableError{Reason: fmt.Sprintf(format, args...), Dimension: dimension}
}
