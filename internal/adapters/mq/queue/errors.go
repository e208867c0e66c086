package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrClosed = errors.New("sample queue closed")
	ErrFull   = errors.New("sample queue full")
)
