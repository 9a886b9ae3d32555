package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

// loader fetches a value from the authoritative store. cacheable false
// returns the value to the caller without writing it back.
type loader[T any] func(ctx context.Context) (v T, cacheable bool, err error)

// readThrough returns the value cached under key, or runs load and writes
// its result back for ttl. Cache read, decode and write failures degrade
// to load; only load errors reach the caller.
func readThrough[T any](ctx context.Context, cache port.Cache, key string, ttl time.Duration, load loader[T]) (T, error) {
	if raw, ok, err := cache.Get(ctx, key); err != nil {
		logger.Warn.Printf("cache read %s failed, falling back to store: %v", logger.SanitizeForLog(key), err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		logger.Warn.Printf("cache entry %s is corrupt, reloading", logger.SanitizeForLog(key))
	}

	v, cacheable, err := load(ctx)
	if err != nil || !cacheable {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn.Printf("encode cache entry %s: %v", logger.SanitizeForLog(key), err)
		return v, nil
	}
	if err := cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn.Printf("cache write %s failed: %v", logger.SanitizeForLog(key), err)
	}
	return v, nil
}
