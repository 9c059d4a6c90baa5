package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"audiochan/logger"
	"audiochan/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const (
	genreKeyPrefix   = "audiochan:genre:"
	genreListKey     = genreKeyPrefix + "all"
	defaultGenreSize = 128
	defaultGenreTTL  = time.Hour
)

// GenreCache caches genre lookups by their normalized input (id or slug)
// and the full list. Misses and backend errors both read as a miss.
type GenreCache interface {
	Get(ctx context.Context, key string) (*model.Genre, bool)
	Set(ctx context.Context, key string, genre *model.Genre)
	GetAll(ctx context.Context) ([]model.Genre, bool)
	SetAll(ctx context.Context, genres []model.Genre)
	// Flush drops every cached genre and reports how many entries went.
	Flush(ctx context.Context) (int, error)
}

type lruEntry struct {
	genre    *model.Genre
	all      []model.Genre
	storedAt time.Time
}

// LRUGenreCache is an in-process cache with a TTL per entry.
type LRUGenreCache struct {
	cache *lru.Cache[string, lruEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewLRUGenreCache builds a cache holding up to size entries.
func NewLRUGenreCache(size int, ttl time.Duration) *LRUGenreCache {
	if size <= 0 {
		size = defaultGenreSize
	}
	if ttl <= 0 {
		ttl = defaultGenreTTL
	}
	c, err := lru.New[string, lruEntry](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &LRUGenreCache{cache: c, ttl: ttl, now: time.Now}
}

func (c *LRUGenreCache) lookup(key string) (lruEntry, bool) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return lruEntry{}, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.cache.Remove(key)
		return lruEntry{}, false
	}
	return entry, true
}

func (c *LRUGenreCache) Get(_ context.Context, key string) (*model.Genre, bool) {
	entry, ok := c.lookup(genreKeyPrefix + key)
	if !ok || entry.genre == nil {
		return nil, false
	}
	g := *entry.genre
	return &g, true
}

func (c *LRUGenreCache) Set(_ context.Context, key string, genre *model.Genre) {
	if genre == nil {
		return
	}
	g := *genre
	c.cache.Add(genreKeyPrefix+key, lruEntry{genre: &g, storedAt: c.now()})
}

func (c *LRUGenreCache) GetAll(_ context.Context) ([]model.Genre, bool) {
	entry, ok := c.lookup(genreListKey)
	if !ok {
		return nil, false
	}
	return append([]model.Genre(nil), entry.all...), true
}

func (c *LRUGenreCache) SetAll(_ context.Context, genres []model.Genre) {
	c.cache.Add(genreListKey, lruEntry{all: append([]model.Genre(nil), genres...), storedAt: c.now()})
}

func (c *LRUGenreCache) Flush(_ context.Context) (int, error) {
	n := c.cache.Len()
	c.cache.Purge()
	return n, nil
}

// RedisGenreCache shares genre lookups between instances.
type RedisGenreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGenreCache(client *redis.Client, ttl time.Duration) *RedisGenreCache {
	if ttl <= 0 {
		ttl = defaultGenreTTL
	}
	return &RedisGenreCache{client: client, ttl: ttl}
}

func (c *RedisGenreCache) Get(ctx context.Context, key string) (*model.Genre, bool) {
	var genre model.Genre
	if !c.load(ctx, genreKeyPrefix+key, &genre) {
		return nil, false
	}
	return &genre, true
}

func (c *RedisGenreCache) Set(ctx context.Context, key string, genre *model.Genre) {
	if genre != nil {
		c.store(ctx, genreKeyPrefix+key, genre)
	}
}

func (c *RedisGenreCache) GetAll(ctx context.Context) ([]model.Genre, bool) {
	var genres []model.Genre
	if !c.load(ctx, genreListKey, &genres) {
		return nil, false
	}
	return genres, true
}

func (c *RedisGenreCache) SetAll(ctx context.Context, genres []model.Genre) {
	c.store(ctx, genreListKey, genres)
}

// Flush deletes every genre key using SCAN so the server is never blocked.
func (c *RedisGenreCache) Flush(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, genreKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func (c *RedisGenreCache) load(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Genre cache read failed", logger.String("key", key), logger.ErrorField(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Genre cache entry is corrupt", logger.String("key", key), logger.ErrorField(err))
		return false
	}
	return true
}

func (c *RedisGenreCache) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("Genre cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
}

// TieredGenreCache reads through an ordered list of caches and back-fills
// the faster tiers on a hit in a slower one.
type TieredGenreCache struct {
	tiers []GenreCache
}

func NewTieredGenreCache(tiers ...GenreCache) *TieredGenreCache {
	return &TieredGenreCache{tiers: tiers}
}

func (c *TieredGenreCache) Get(ctx context.Context, key string) (*model.Genre, bool) {
	for i, tier := range c.tiers {
		if genre, ok := tier.Get(ctx, key); ok {
			for _, faster := range c.tiers[:i] {
				faster.Set(ctx, key, genre)
			}
			return genre, true
		}
	}
	return nil, false
}

func (c *TieredGenreCache) Set(ctx context.Context, key string, genre *model.Genre) {
	for _, tier := range c.tiers {
		tier.Set(ctx, key, genre)
	}
}

func (c *TieredGenreCache) GetAll(ctx context.Context) ([]model.Genre, bool) {
	for i, tier := range c.tiers {
		if genres, ok := tier.GetAll(ctx); ok {
			for _, faster := range c.tiers[:i] {
				faster.SetAll(ctx, genres)
			}
			return genres, true
		}
	}
	return nil, false
}

func (c *TieredGenreCache) SetAll(ctx context.Context, genres []model.Genre) {
	for _, tier := range c.tiers {
		tier.SetAll(ctx, genres)
	}
}

// Flush empties every tier. The first error is returned after all tiers
// were attempted.
func (c *TieredGenreCache) Flush(ctx context.Context) (int, error) {
	var (
		total    int
		firstErr error
	)
	for _, tier := range c.tiers {
		n, err := tier.Flush(ctx)
		total += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return total, firstErr
}

var (
	_ GenreCache = (*LRUGenreCache)(nil)
	_ GenreCache = (*RedisGenreCache)(nil)
	_ GenreCache = (*TieredGenreCache)(nil)
)
