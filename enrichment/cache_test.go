package enrichment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionCache_GetSet(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{
		Enabled:         true,
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
	})
	defer cache.Close()

	_, found := cache.Get("12 Rue X, Marseille")
	assert.False(t, found)

	cache.Set("12 Rue X, Marseille", ResolvedCode{Code: "13055", Source: CommuneName})
	cache.Set("Place Y, Nowhere", Unresolved)

	code, found := cache.Get("12 Rue X, Marseille")
	require.True(t, found)
	assert.Equal(t, "13055", code.Code)
	assert.Equal(t, CommuneName, code.Source)

	code, found = cache.Get("Place Y, Nowhere")
	require.True(t, found)
	assert.False(t, code.IsResolved())

	stats := cache.GetStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 2, stats.Size)
}

func TestResolutionCache_Disabled(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{Enabled: false, TTL: time.Minute})
	defer cache.Close()

	cache.Set("a", ResolvedCode{Code: "1", Source: GeocoderName})
	_, found := cache.Get("a")

	assert.False(t, found)
	assert.Equal(t, 0, cache.GetStats().Size)
	assert.Equal(t, int64(1), cache.GetStats().Misses)
}

func TestResolutionCache_TTL(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{Enabled: true, TTL: 20 * time.Millisecond})
	defer cache.Close()

	cache.Set("a", ResolvedCode{Code: "1", Source: GeocoderName})
	time.Sleep(50 * time.Millisecond)

	_, found := cache.Get("a")
	assert.False(t, found)

	cache.cleanup()
	assert.Equal(t, 0, cache.GetStats().Size)
}

func TestResolutionCache_BackgroundCleanup(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{
		Enabled:         true,
		TTL:             10 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer cache.Close()

	cache.Set("a", ResolvedCode{Code: "1", Source: GeocoderName})

	assert.Eventually(t, func() bool {
		return cache.GetStats().Size == 0
	}, time.Second, 10*time.Millisecond)
}

func TestResolutionCache_RemoveClear(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{Enabled: true, TTL: time.Minute})
	defer cache.Close()

	cache.Set("a", ResolvedCode{Code: "1"})
	cache.Set("b", ResolvedCode{Code: "2"})
	cache.Remove("a")
	assert.Equal(t, 1, cache.GetStats().Size)

	cache.Get("b")
	cache.Clear()

	stats := cache.GetStats()
	assert.Equal(t, CacheStats{}, stats)
}

func TestResolutionCache_CloseTwice(t *testing.T) {
	cache := NewResolutionCache(&CacheConfig{Enabled: true, TTL: time.Minute, CleanupInterval: time.Millisecond})
	assert.NotPanics(t, func() {
		cache.Close()
		cache.Close()
	})
}
