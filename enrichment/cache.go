package enrichment

import (
	"sync"
	"sync/atomic"
	"time"
)

// ResolutionCache кэш разрешенных кодов на время одного запуска
type ResolutionCache struct {
	config *CacheConfig
	data   map[string]cacheEntry
	mutex  sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	code      ResolvedCode
	timestamp time.Time
}

// CacheStats статистика кэша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewResolutionCache создает кэш. Если задан CleanupInterval, запускается фоновая очистка до Close.
func NewResolutionCache(config *CacheConfig) *ResolutionCache {
	cache := &ResolutionCache{
		config: config,
		data:   make(map[string]cacheEntry),
		stop:   make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go cache.startCleanup()
	}

	return cache
}

// Get возвращает код из кэша
func (c *ResolutionCache) Get(key string) (ResolvedCode, bool) {
	if !c.config.Enabled {
		c.misses.Add(1)
		return Unresolved, false
	}

	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || c.expired(entry, time.Now()) {
		c.misses.Add(1)
		return Unresolved, false
	}

	c.hits.Add(1)
	return entry.code, true
}

// peek возвращает код без учета в статистике
func (c *ResolutionCache) peek(key string) (ResolvedCode, bool) {
	if !c.config.Enabled {
		return Unresolved, false
	}

	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || c.expired(entry, time.Now()) {
		return Unresolved, false
	}
	return entry.code, true
}

// Set сохраняет код (в том числе Unresolved) в кэш
func (c *ResolutionCache) Set(key string, code ResolvedCode) {
	if !c.config.Enabled {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheEntry{
		code:      code,
		timestamp: time.Now(),
	}
}

// Remove удаляет запись из кэша
func (c *ResolutionCache) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

// Clear очищает весь кэш и статистику
func (c *ResolutionCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheEntry)
	c.hits.Store(0)
	c.misses.Store(0)
}

// GetStats возвращает статистику кэша
func (c *ResolutionCache) GetStats() CacheStats {
	c.mutex.RLock()
	size := len(c.data)
	c.mutex.RUnlock()

	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// Close останавливает фоновую очистку. Повторный вызов безопасен.
func (c *ResolutionCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *ResolutionCache) expired(entry cacheEntry, now time.Time) bool {
	return c.config.TTL > 0 && now.Sub(entry.timestamp) > c.config.TTL
}

// startCleanup периодически удаляет устаревшие записи
func (c *ResolutionCache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup удаляет устаревшие записи
func (c *ResolutionCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if c.expired(entry, now) {
			delete(c.data, key)
		}
	}
}
