package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the ratio pipeline. Typed errors below unwrap to them.
var (
	ErrValidation     = errors.New("invalid balance sheet input")
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("ratio is not a finite number")
)

// ValidationError reports a rejected raw input value.
type ValidationError struct {
	Index  int    // zero-based position of the period in the input
	Period string // label, when already known
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	period := e.Period
	if period == "" {
		period = fmt.Sprintf("#%d", e.Index+1)
	}
	return fmt.Sprintf("period %s: field %s: %s", period, e.Field.Key(), e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DivisionByZeroError names the ratio, its zero denominator and the period.
type DivisionByZeroError struct {
	Period      string
	Ratio       Field
	Denominator string // TotalAssets, KFK, AV or EK
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("period %q: %s: denominator %s is zero", e.Period, e.Ratio.Key(), e.Denominator)
}

func (e *DivisionByZeroError) Unwrap() error { return ErrDivisionByZero }

// OverflowError reports a ratio whose quotient left the float64 range.
type OverflowError struct {
	Period string
	Ratio  Field
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("period %q: %s overflows", e.Period, e.Ratio.Key())
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }
