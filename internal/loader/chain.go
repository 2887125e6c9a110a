package loader

// Chain hands out candidate URLs in order, skipping duplicates.
type Chain struct {
	urls     []string
	next     int
	tried    map[string]bool
	attempts int
}

// NewChain creates a Chain over urls. The slice is not modified.
func NewChain(urls []string) *Chain {
	return &Chain{
		urls:  urls,
		tried: make(map[string]bool, len(urls)),
	}
}

// Next returns the next untried candidate. It returns false once the chain
// is exhausted, and keeps returning false afterwards.
func (c *Chain) Next() (string, bool) {
	for c.next < len(c.urls) && c.tried[c.urls[c.next]] {
		c.next++
	}
	if c.next >= len(c.urls) {
		return "", false
	}
	u := c.urls[c.next]
	c.next++
	c.tried[u] = true
	c.attempts++
	return u, true
}

// Exhausted reports whether no untried candidate remains.
func (c *Chain) Exhausted() bool {
	for i := c.next; i < len(c.urls); i++ {
		if !c.tried[c.urls[i]] {
			return false
		}
	}
	return true
}

// Attempts returns how many candidates have been handed out.
func (c *Chain) Attempts() int {
	return c.attempts
}
