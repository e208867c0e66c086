package cli

import "errors"

// Error constants.
var (
	ErrInput  = errors.New("invalid input file")
	ErrRemote = errors.New("remote request failed")
	ErrOutput = errors.New("write output failed")
)
