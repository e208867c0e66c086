package report

import "time"

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithTitle sets the document title stored in the PDF metadata.
func WithTitle(title string) Option {
	return func(a *Assembler) {
		if title != "" {
			a.title = title
		}
	}
}

// WithClock fixes the creation date source, mainly for reproducible output.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithCompression toggles content stream compression.
func WithCompression(compress bool) Option {
	return func(a *Assembler) {
		a.compress = compress
	}
}
