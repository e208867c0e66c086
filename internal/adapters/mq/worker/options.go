package worker

import (
	"github.com/okian/bilanz/pkg/logger"
)

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithName sets the recorder name used in logs.
func WithName(name string) Option {
	return func(r *Recorder) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets a custom logger for the recorder.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}
