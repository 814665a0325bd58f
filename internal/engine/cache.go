package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Resolution cache: 2-tier, L1 in-memory + L2 Redis. Resolution is
// deterministic per item and Douyin rate-limits aggressively, so resolved
// links are worth keeping. L1 is lost on restart; L2 survives it.
var resolveCache *tieredCache

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the 2-tier cache. Call after Init().
// redisURL can be empty to disable L2.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	resolveCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("dy:%x", hash[:12]) // 24-char hex prefix
}

// CacheGetItem tries L1, then L2. On L2 hit, populates L1.
func CacheGetItem(ctx context.Context, key string) (ResolvedItem, bool) {
	if resolveCache == nil {
		cacheMisses.Add(1)
		return ResolvedItem{}, false
	}

	if val, ok := resolveCache.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			var item ResolvedItem
			if json.Unmarshal(entry.data, &item) == nil {
				cacheHits.Add(1)
				return item, true
			}
		}
		resolveCache.l1.Delete(key)
	}

	if resolveCache.rdb != nil {
		data, err := resolveCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var item ResolvedItem
			if json.Unmarshal(data, &item) == nil {
				resolveCache.l1.Store(key, &cacheEntry{
					data:      data,
					expiresAt: time.Now().Add(resolveCache.ttl),
				})
				cacheHits.Add(1)
				return item, true
			}
		}
	}

	cacheMisses.Add(1)
	return ResolvedItem{}, false
}

// CacheSetItem stores a resolved item in L1 and, when available, L2.
func CacheSetItem(ctx context.Context, key string, item ResolvedItem) {
	if resolveCache == nil {
		return
	}
	data, err := json.Marshal(item)
	if err != nil {
		return
	}

	resolveCache.evictIfNeeded()

	resolveCache.l1.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(resolveCache.ttl),
	})

	if resolveCache.rdb != nil {
		resolveCache.rdb.Set(ctx, key, data, resolveCache.ttl)
	}
}

// CacheStats returns cumulative hit/miss counts.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded drops expired entries when L1 is at capacity, then oldest-first
// if still over.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	count := 0
	c.l1.Range(func(any, any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}
	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
		}
		return true
	})
}

// cleanupLoop periodically removes expired L1 entries.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}
