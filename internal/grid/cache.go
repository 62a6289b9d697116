package grid

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Cache keeps recently built grids. Callers always get their own clone.
type Cache struct {
	grids *lru.Cache
}

// NewCache returns a cache holding up to size grids; size 0 disables caching.
func NewCache(size int) (*Cache, error) {
	if size < 0 {
		return nil, errors.Errorf("grid cache size must be >= 0, got %d", size)
	}
	if size == 0 {
		return &Cache{}, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create grid cache")
	}
	return &Cache{grids: c}, nil
}

// Get returns the grid for opts, building it on a miss.
func (c *Cache) Get(opts Options) (*Grid, error) {
	key, err := opts.key()
	if err != nil {
		return nil, err
	}
	if c.grids != nil {
		if v, ok := c.grids.Get(key); ok {
			log.WithField("key", key).Debug("Grid cache hit")
			return v.(*Grid).Clone(), nil
		}
	}
	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	if c.grids == nil {
		return g, nil
	}
	c.grids.Add(key, g)
	return g.Clone(), nil
}

// Len reports the number of cached grids.
func (c *Cache) Len() int {
	if c.grids == nil {
		return 0
	}
	return c.grids.Len()
}

// Purge drops every cached grid.
func (c *Cache) Purge() {
	if c.grids != nil {
		c.grids.Purge()
	}
}
