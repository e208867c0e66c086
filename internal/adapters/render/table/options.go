package table

// Option applies a configuration option to a new Artifact.
type Option func(*Artifact)

// WithTitle sets the table caption. Empty titles are ignored.
func WithTitle(title string) Option {
	return func(a *Artifact) {
		if title != "" {
			a.Title = title
		}
	}
}
