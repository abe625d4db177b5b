package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errIconMissing = errors.New("icon missing")

type countingSource struct {
	calls  int
	markup map[string]string
}

func (s *countingSource) load(_ context.Context, ref string) (string, error) {
	s.calls++
	if m, ok := s.markup[ref]; ok {
		return m, nil
	}
	return "", errIconMissing
}

func newSource() *countingSource {
	return &countingSource{markup: map[string]string{"ion:home": "<svg>home</svg>"}}
}

func TestReadThroughCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	backing := NewInMemoryCacheManager[string, string]("icons", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache[string, string, string](backing, src.load)
	require.True(t, rtc.Enabled())

	got, err := rtc.Get(ctx, "ion:home", "ion:home", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<svg>home</svg>", got)
	require.Equal(t, 1, src.calls)

	got, err = rtc.Get(ctx, "ion:home", "ion:home", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<svg>home</svg>", got)
	require.Equal(t, 1, src.calls, "second read is served by the cache")
	require.Equal(t, TierStats{Hits: 1, Misses: 1}, rtc.Stats())
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	backing := NewInMemoryCacheManager[string, string]("icons", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache[string, string, string](backing, src.load)

	for i := 0; i < 2; i++ {
		_, err := rtc.Get(ctx, "ion:missing", "ion:missing", time.Minute)
		require.ErrorIs(t, err, errIconMissing)
	}
	require.Equal(t, 2, src.calls)
	requireCount(t, backing, 0)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	backing := NewInMemoryCacheManager[string, string]("icons", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache[string, string, string](backing, src.load, SkipCache())
	require.False(t, rtc.Enabled())

	for i := 0; i < 3; i++ {
		_, err := rtc.Get(ctx, "ion:home", "ion:home", time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, src.calls)
	requireCount(t, backing, 0)
	require.Zero(t, rtc.Stats().Misses, "skipped lookups are not counted")
	require.NoError(t, rtc.Delete(ctx, "ion:home"))
}

func TestReadThroughCache_NilBackingSkips(t *testing.T) {
	src := newSource()
	rtc := NewReadThroughCache[string, string, string](nil, src.load)
	require.False(t, rtc.Enabled())

	got, err := rtc.Get(context.Background(), "ion:home", "ion:home", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<svg>home</svg>", got)
	require.NoError(t, rtc.Flush(context.Background()))
}

func TestReadThroughCache_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	src.markup["ion:add"] = "<svg>add</svg>"
	backing := NewInMemoryCacheManager[string, string]("icons", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache[string, string, string](backing, src.load)

	for _, ref := range []string{"ion:home", "ion:add", "ion:home"} {
		_, err := rtc.Get(ctx, ref, ref, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 2, src.calls)

	require.NoError(t, rtc.Delete(ctx, "ion:home"))
	require.NoError(t, rtc.Delete(ctx))
	_, err := rtc.Get(ctx, "ion:home", "ion:home", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, src.calls)

	require.NoError(t, rtc.Flush(ctx))
	requireCount(t, backing, 0)
}

func TestReadThroughCache_Sliding(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	backing := NewInMemoryCacheManager[string, string]("icons", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache[string, string, string](backing, src.load, Sliding())

	_, err := rtc.Get(ctx, "ion:home", "ion:home", 100*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = rtc.Get(ctx, "ion:home", "ion:home", 100*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)

	_, ok := backing.Get(ctx, "ion:home")
	require.True(t, ok, "the hit restarted the lifetime")
	require.Equal(t, 1, src.calls)
}

func requireCount(t *testing.T, m Maintainer, want int) {
	t.Helper()
	n, err := m.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, n)
}
