package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testEntry(content string, style Style) CacheEntry {
	return CacheEntry{
		Fingerprint: NewFingerprint(content, style),
		SummaryText: "summary of " + content,
		Style:       style,
		ContentHash: ContentHash(content),
	}
}

func TestMemoryCachePutGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 10)

	entry := testEntry("note one", StyleConcise)
	require.NoError(t, cache.Put(ctx, entry))

	got, err := cache.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, entry.SummaryText, got.SummaryText)
	require.Equal(t, StyleConcise, got.Style)
	require.False(t, got.CreatedAt.IsZero())
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Hour, 10)
	got, err := cache.Get(context.Background(), NewFingerprint("absent", StyleConcise))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 10)

	now := time.Now()
	cache.now = func() time.Time { return now }

	entry := testEntry("note one", StyleConcise)
	require.NoError(t, cache.Put(ctx, entry))

	now = now.Add(59 * time.Minute)
	got, err := cache.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = cache.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	require.Nil(t, got, "expired entry must behave as a miss")
}

func TestMemoryCacheFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 10)

	entry := testEntry("note one", StyleConcise)
	require.NoError(t, cache.Put(ctx, entry))

	// Identical concurrent write is idempotent.
	dup := entry
	dup.SummaryText = "summary of note one"
	require.NoError(t, cache.Put(ctx, dup))

	got, err := cache.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	require.Equal(t, entry.SummaryText, got.SummaryText)
}

func TestMemoryCacheCollisionGuard(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 10)

	entry := testEntry("note one", StyleConcise)
	require.NoError(t, cache.Put(ctx, entry))

	// Same fingerprint, different source content: must be rejected.
	bad := entry
	bad.ContentHash = ContentHash("different content")
	err := cache.Put(ctx, bad)
	require.Error(t, err)
	require.Equal(t, KindInternal, AsError(err).Kind)
}

func TestMemoryCacheOrderBookkeepingBounded(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute, 50)

	now := time.Now()
	cache.now = func() time.Time { return now }

	// Churn entries through TTL expiry, never through capacity eviction.
	for i := 0; i < 2000; i++ {
		entry := testEntry(fmt.Sprintf("note %d", i), StyleConcise)
		require.NoError(t, cache.Put(ctx, entry))

		now = now.Add(2 * time.Minute)
		got, err := cache.Get(ctx, entry.Fingerprint)
		require.NoError(t, err)
		require.Nil(t, got)
	}

	require.Zero(t, cache.Len())
	cache.mu.Lock()
	orderLen := len(cache.order)
	cache.mu.Unlock()
	require.LessOrEqual(t, orderLen, 2*cache.capacity,
		"expiry churn must not grow the insertion-order bookkeeping without bound")
}

func TestMemoryCacheCapacityEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 3)

	now := time.Now()
	cache.now = func() time.Time { return now }

	var first CacheEntry
	for i := 0; i < 4; i++ {
		entry := testEntry(fmt.Sprintf("note %d", i), StyleConcise)
		if i == 0 {
			first = entry
		}
		require.NoError(t, cache.Put(ctx, entry))
		now = now.Add(time.Second)
	}

	require.Equal(t, 3, cache.Len())

	// The oldest-created entry is the one evicted.
	got, err := cache.Get(ctx, first.Fingerprint)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = cache.Get(ctx, NewFingerprint("note 3", StyleConcise))
	require.NoError(t, err)
	require.NotNil(t, got)
}
