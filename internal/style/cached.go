package style

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
)

// Cached memoizes another Resolver per node. Keys are node pointers, so one
// Cached must only be used with a tree that is not restyled while it lives.
// It is safe for concurrent use.
type Cached struct {
	next  Resolver
	cache *lru.Cache[*html.Node, string]
}

// NewCached wraps next with an LRU of the given size
func NewCached(next Resolver, size int) (*Cached, error) {
	c, err := lru.New[*html.Node, string](size)
	if err != nil {
		return nil, fmt.Errorf("create display cache: %w", err)
	}
	return &Cached{next: next, cache: c}, nil
}

// Display implements Resolver
func (c *Cached) Display(n *html.Node) string {
	if d, ok := c.cache.Get(n); ok {
		return d
	}
	d := c.next.Display(n)
	c.cache.Add(n, d)
	return d
}

// Len returns the number of memoized nodes
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge drops all memoized values
func (c *Cached) Purge() {
	c.cache.Purge()
}

// New returns the default resolver, memoized when size > 0
func New(size int) (Resolver, error) {
	base := NewDefaultResolver()
	if size <= 0 {
		return base, nil
	}
	return NewCached(base, size)
}
