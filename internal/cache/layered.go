package cache

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// LayeredCache checks memory first and falls back to disk
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory, then disk; disk hits are promoted to memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	var result *multierror.Error
	if err := c.memory.Delete(key); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.disk.Delete(key); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	var result *multierror.Error
	if err := c.memory.Clear(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.disk.Clear(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
