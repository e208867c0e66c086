package queue

// Option configures a new InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the number of pending samples. Values below one keep
// the default.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithDropOldest makes a full queue discard its oldest sample instead of
// rejecting the new one.
func WithDropOldest(enabled bool) Option {
	return func(q *InMemoryQueue) { q.dropOldest = enabled }
}
