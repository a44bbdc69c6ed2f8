package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("connection reset")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("read only replica")
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type countingSource struct {
	calls int
	snap  *Snapshot
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) FetchPosts(context.Context, bool) (*Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Posts: []*models.Post{
			{Slug: "a", Title: "A", PublishedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Slug: "undated", Title: "Undated"},
		},
		Issues: []*RecordError{
			{Index: 1, Slug: "undated", Err: ErrInvalidDate},
			{Index: 2, Origin: "c.md", Err: malformed("missing front matter")},
		},
		FetchedAt: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	next := &countingSource{snap: testSnapshot()}
	cache := newMemoryCache()
	src := NewCachedSource(next, cache, time.Minute, nil)
	assert.Equal(t, "counting+cache", src.Name())

	first, err := src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, time.Minute, cache.ttls[CacheKey(false)])

	second, err := src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls, "second fetch is served from cache")
	require.Len(t, second.Posts, len(first.Posts))
	assert.True(t, first.Posts[0].PublishedAt.Equal(second.Posts[0].PublishedAt))
	assert.False(t, second.Posts[1].HasDate())
	require.Len(t, second.Issues, 2)
	assert.ErrorIs(t, second.Issues[0], ErrInvalidDate)
	assert.ErrorIs(t, second.Issues[1], ErrMalformedRecord)
	assert.Equal(t, 1, second.Skipped())

	_, err = src.FetchPosts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "preview uses its own key")

	require.NoError(t, src.Purge(ctx))
	_, err = src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestCachedSourceDegradesOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	next := &countingSource{snap: testSnapshot()}
	cache := newMemoryCache()
	cache.failGet = true
	cache.failSet = true
	src := NewCachedSource(next, cache, 0, nil)

	snap, err := src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 2)

	_, err = src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSourceDiscardsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	next := &countingSource{snap: testSnapshot()}
	cache := newMemoryCache()
	cache.data[CacheKey(false)] = []byte("garbage")
	src := NewCachedSource(next, cache, time.Minute, nil)

	snap, err := src.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 2)
	assert.Equal(t, 1, next.calls)
}

func TestCachedSourcePropagatesErrors(t *testing.T) {
	next := &countingSource{err: unavailable("counting", errors.New("down"))}
	src := NewCachedSource(next, newMemoryCache(), time.Minute, nil)

	_, err := src.FetchPosts(context.Background(), false)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
