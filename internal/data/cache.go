package data

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache keeps decoded scenario files in process memory so repeated
// reads skip the disk. A nil *MemoryCache is a valid, disabled cache.
type MemoryCache struct {
	store *cache.Cache
}

// NewMemoryCache returns a cache whose entries expire after ttl. Expired
// entries are swept every 2*ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{store: cache.New(ttl, 2*ttl)}
}

// Get retrieves a cached value if available and not expired.
func (c *MemoryCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set stores a value with the default expiration.
func (c *MemoryCache) Set(key string, v any) {
	if c == nil {
		return
	}
	c.store.SetDefault(key, v)
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	if c == nil {
		return
	}
	c.store.Flush()
}

func (c *MemoryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}

// GenerateCacheKey creates a cache key from the parts identifying a file.
func GenerateCacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(hash[:])
}
