package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataError matches any *DataError via errors.Is.
	ErrDataError = errors.New("data error")

	// ErrDivisionByZero matches any *DivisionByZeroError via errors.Is.
	ErrDivisionByZero = errors.New("division by zero")
)

// DataError reports a malformed or missing required field on one record.
type DataError struct {
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *DataError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("line %d: field %q: %s (got %q)", e.Line, e.Field, e.Reason, e.Value)
}

func (e *DataError) Is(target error) bool { return target == ErrDataError }

// DivisionByZeroError reports that a measure's grand total was zero, so its
// shares cannot be computed.
type DivisionByZeroError struct {
	Measure Measure
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("normalize %s: grand total is zero", e.Measure)
}

func (e *DivisionByZeroError) Is(target error) bool { return target == ErrDivisionByZero }
