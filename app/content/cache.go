package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/app/models"
)

const (
	// CacheKeyPrefix namespaces every snapshot key in redis.
	CacheKeyPrefix  = "portfolio:posts:"
	defaultCacheTTL = 60 * time.Second
)

var errCacheMiss = errors.New("cache miss")

// SnapshotCache is the storage used by CachedSource.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache stores snapshots in redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an existing redis client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// ConnectRedis creates a redis client from url and verifies connectivity.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// CachedSource serves snapshots from a cache and falls back to the wrapped
// source on a miss or any cache failure.
type CachedSource struct {
	next   Source
	cache  SnapshotCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource decorates next with cache.
func NewCachedSource(next Source, cache SnapshotCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedSource) Name() string { return s.next.Name() + "+cache" }

// cachedIssue is the serialized form of a RecordError.
type cachedIssue struct {
	Index       int    `json:"index"`
	Origin      string `json:"origin,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Message     string `json:"message"`
	InvalidDate bool   `json:"invalidDate,omitempty"`
}

type cachedSnapshot struct {
	Posts     []*models.Post `json:"posts"`
	Issues    []cachedIssue  `json:"issues,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

func (s *CachedSource) FetchPosts(ctx context.Context, preview bool) (*Snapshot, error) {
	key := CacheKey(preview)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		snap, decodeErr := decodeSnapshot(raw)
		if decodeErr == nil {
			return snap, nil
		}
		s.logger.Warn("discarding undecodable cached snapshot", zap.String("key", key), zap.Error(decodeErr))
	case !errors.Is(err, errCacheMiss):
		s.logger.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
	}

	snap, err := s.next.FetchPosts(ctx, preview)
	if err != nil {
		return nil, err
	}

	payload, err := encodeSnapshot(snap)
	if err != nil {
		s.logger.Warn("snapshot encode failed", zap.Error(err))
		return snap, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
	}
	return snap, nil
}

// Purge drops both cached snapshots.
func (s *CachedSource) Purge(ctx context.Context) error {
	return PurgeSnapshots(ctx, s.cache)
}

// PurgeSnapshots drops both cached snapshots from cache.
func PurgeSnapshots(ctx context.Context, cache SnapshotCache) error {
	return cache.Del(ctx, CacheKey(false), CacheKey(true))
}

// CacheKey returns the cache key for a preview mode.
func CacheKey(preview bool) string {
	if preview {
		return CacheKeyPrefix + "preview"
	}
	return CacheKeyPrefix + "published"
}

func encodeSnapshot(snap *Snapshot) ([]byte, error) {
	payload := cachedSnapshot{Posts: snap.Posts, FetchedAt: snap.FetchedAt}
	for _, issue := range snap.Issues {
		payload.Issues = append(payload.Issues, cachedIssue{
			Index:       issue.Index,
			Origin:      issue.Origin,
			Slug:        issue.Slug,
			Message:     issue.Err.Error(),
			InvalidDate: errors.Is(issue.Err, ErrInvalidDate),
		})
	}
	return json.Marshal(payload)
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	var payload cachedSnapshot
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	snap := &Snapshot{Posts: payload.Posts, FetchedAt: payload.FetchedAt}
	if snap.Posts == nil {
		snap.Posts = []*models.Post{}
	}
	for _, issue := range payload.Issues {
		kind := ErrMalformedRecord
		if issue.InvalidDate {
			kind = ErrInvalidDate
		}
		snap.Issues = append(snap.Issues, &RecordError{
			Index:  issue.Index,
			Origin: issue.Origin,
			Slug:   issue.Slug,
			Err:    fmt.Errorf("%w (cached): %s", kind, issue.Message),
		})
	}
	return snap, nil
}
