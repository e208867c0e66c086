package ratios

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPlaces sets the decimal places of the rounded ratio fields.
// Negative values are ignored.
func WithPlaces(places int32) Option {
	return func(e *Engine) {
		if places >= 0 {
			e.places = places
		}
	}
}
