package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

// Expiry policies per kind of upstream data.
const (
	TTLShort = time.Hour          // profile, friends, games, recent games, level
	TTLDay   = 24 * time.Hour     // badges, badge pages, achievements
	TTLWeek  = 7 * 24 * time.Hour // store metadata
)

// Cache stores opaque values with a per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key derives a cache key from a function identity and its arguments.
func Key(prefix, function string, args ...any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte(fmt.Sprint(args...))
	}
	sum := blake2b.Sum256(raw)
	key := function + ":" + hex.EncodeToString(sum[:16])
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// Memoize returns the cached value for key or calls load and stores its
// result. Failed loads are not cached, and a broken cache only costs the
// extra load.
func Memoize[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	log := logger.New().With("key", key)

	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("cache read failed")
		} else if ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			log.Warn("discarding undecodable cache entry")
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if c != nil {
		raw, err := json.Marshal(value)
		if err == nil {
			err = c.Set(ctx, key, raw, ttl)
		}
		if err != nil {
			log.WithError(err).Warn("cache write failed")
		}
	}

	return value, nil
}
