// Package render holds what the table, chart and report renderers share.
package render

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrRender is the sentinel every RenderError unwraps to.
var ErrRender = errors.New("render failed")

// RenderError reports a malformed artifact or a failed rendering step.
type RenderError struct {
	Artifact string // table, chart or report
	Reason   string
	Err      error
}

// NewError builds a RenderError with a formatted reason.
func NewError(artifact, format string, args ...any) *RenderError {
	return &RenderError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a RenderError.
func Wrap(artifact string, err error, reason string) *RenderError {
	return &RenderError{Artifact: artifact, Reason: reason, Err: err}
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s: %s: %v", e.Artifact, e.Reason, e.Err)
	}
	return fmt.Sprintf("render %s: %s", e.Artifact, e.Reason)
}

// Is reports ErrRender as the error kind.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }

// FormatNumber writes v with the shortest representation that parses back
// to the same float64, never in exponent form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
