package quote

type config struct {
	capacity int
}

// Option applies a configuration option to a new History.
type Option func(*config)

// WithCapacity sets how many samples are kept. Values below one are ignored.
func WithCapacity(capacity int) Option {
	return func(c *config) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}
