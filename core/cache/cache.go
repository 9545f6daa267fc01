package cache

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe key-value store with optional expiry and tag
// groups. It backs the catalog query cache, checkout sessions and chat
// transcripts.
type Cache struct {
	m        sync.Map
	tagIndex sync.Map // tag -> *sync.Map of keys
	now      func() time.Time
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // unix nanos; 0 means no expiration
}

func (i cacheItem) expired(now time.Time) bool {
	return i.ExpiresAt > 0 && now.UnixNano() > i.ExpiresAt
}

// Set stores value under key. A zero ttl never expires.
func (c *Cache) Set(key, value interface{}, ttl time.Duration, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get returns the value for key if present and not expired. An expired
// value that implements io.Closer is closed as it is dropped.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.expired(c.now()) {
		c.expire(key, item)
		return nil, false
	}
	return item.Value, true
}

func (c *Cache) GetOrDefault(key, defaultValue interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return defaultValue
}

// GetOrSet returns the live value for key, storing the result of create
// when absent. The returned bool reports whether the value already existed.
func (c *Cache) GetOrSet(key interface{}, ttl time.Duration, create func() interface{}) (interface{}, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	actual, loaded := c.m.LoadOrStore(key, cacheItem{Value: create(), ExpiresAt: expiresAt})
	return actual.(cacheItem).Value, loaded
}

// Touch extends the expiry of a live key.
func (c *Cache) Touch(key interface{}, ttl time.Duration) bool {
	v, ok := c.m.Load(key)
	if !ok {
		return false
	}
	item := v.(cacheItem)
	if item.expired(c.now()) {
		c.expire(key, item)
		return false
	}
	if ttl > 0 {
		item.ExpiresAt = c.now().Add(ttl).UnixNano()
	}
	c.m.Store(key, item)
	return true
}

func (c *Cache) expire(key interface{}, item cacheItem) {
	c.Delete(key)
	if cl, ok := item.Value.(io.Closer); ok {
		_ = cl.Close()
	}
}

// Delete removes a key and its tag memberships.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
	c.tagIndex.Range(func(_, val interface{}) bool {
		val.(*sync.Map).Delete(key)
		return true
	})
}

func (c *Cache) DeleteMany(keys ...interface{}) {
	for _, key := range keys {
		c.Delete(key)
	}
}

func makeCompositeKey(keys ...interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, "|")
}

// SetN stores value under a composite key.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl time.Duration, tags []string) {
	c.Set(makeCompositeKey(keys...), value, ttl, tags)
}

func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(makeCompositeKey(keys...))
}

func (c *Cache) DeleteN(keys ...interface{}) {
	c.Delete(makeCompositeKey(keys...))
}

// GetMany returns values for keys in order, nil for missing ones.
func (c *Cache) GetMany(keys ...interface{}) []interface{} {
	results := make([]interface{}, len(keys))
	for i, key := range keys {
		if v, ok := c.Get(key); ok {
			results[i] = v
		}
	}
	return results
}

// IterateFilter returns the live values for which filter returns true.
func (c *Cache) IterateFilter(filter func(key, value interface{}) bool) []interface{} {
	now := c.now()
	var results []interface{}
	c.m.Range(func(key, value interface{}) bool {
		item := value.(cacheItem)
		if item.expired(now) {
			return true
		}
		if filter(key, item.Value) {
			results = append(results, item.Value)
		}
		return true
	})
	return results
}

// DeleteExpired sweeps expired entries and calls onEvict for each.
func (c *Cache) DeleteExpired(onEvict func(key, value interface{})) int {
	now := c.now()
	n := 0
	c.m.Range(func(key, value interface{}) bool {
		item := value.(cacheItem)
		if item.expired(now) {
			c.Delete(key)
			if onEvict != nil {
				onEvict(key, item.Value)
			}
			n++
		}
		return true
	})
	return n
}

func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		val.(*sync.Map).Store(key, struct{}{})
	}
}

func (c *Cache) UntagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		if val, ok := c.tagIndex.Load(tag); ok {
			val.(*sync.Map).Delete(key)
		}
	}
}

func (c *Cache) GetKeysByTag(tag string) []interface{} {
	var keys []interface{}
	if val, ok := c.tagIndex.Load(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

// DeleteByTag deletes all entries assigned to tag.
func (c *Cache) DeleteByTag(tag string) {
	val, ok := c.tagIndex.LoadAndDelete(tag)
	if !ok {
		return
	}
	val.(*sync.Map).Range(func(key, _ interface{}) bool {
		c.Delete(key)
		return true
	})
}
