package cache

import (
	"unsafe"

	"github.com/coocood/freecache"
)

// Provider is a small byte cache for dashboard responses.
type Provider interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type freeCache struct {
	cache *freecache.Cache
	ttl   int
}

// New returns a freecache-backed provider, or a no-op one when disabled.
func New(enabled bool, sizeMB, ttlSec int) Provider {
	if !enabled || sizeMB <= 0 {
		return noopCache{}
	}
	return &freeCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   max(ttlSec, 1),
	}
}

// freecache copies keys, so the slice never outlives the call.
func keyBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *freeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(keyBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *freeCache) Set(key string, value []byte) {
	_ = c.cache.Set(keyBytes(key), value, c.ttl)
}

type noopCache struct{}

func (noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (noopCache) Set(_ string, _ []byte)      {}
