package chartcache

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithMaxSize bounds the number of snapshots kept. Non-positive sizes are ignored.
func WithMaxSize(maxSize int) Option {
	return func(c *Cache) {
		if maxSize > 0 {
			c.maxSize = maxSize
		}
	}
}
