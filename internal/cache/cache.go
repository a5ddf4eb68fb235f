// Package cache provides a Redis-backed payload cache so repeated runs
// skip downloads that already succeeded.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	img2pdf "github.com/alnah/go-img2pdf"
)

// DefaultTTL is how long payloads stay cached when no TTL is given.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "img2pdf:payload:"

var _ img2pdf.PayloadCache = (*Redis)(nil)

// Redis caches downloaded payloads in a Redis instance. Expiry is
// delegated to Redis TTLs, and every cache failure degrades to a miss
// so a broken cache never fails a download.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis creates a payload cache on top of client. A non-positive ttl
// selects DefaultTTL. Panics if client is nil.
func NewRedis(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Redis {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, log: log}
}

// Key derives the deterministic Redis key for a URL.
// Format: img2pdf:payload:<sha256 hex of the URL>
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves the cached payload for url. The second return is false
// on a miss, an expired entry, or any Redis or decoding failure.
func (r *Redis) Get(ctx context.Context, url string) (*img2pdf.CachedPayload, bool) {
	key := Key(url)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.Inc()
			return nil, false
		}
		cacheErrors.WithLabelValues("get").Inc()
		r.log.Warn().Str("key", key).Err(err).Msg("cache get failed")
		return nil, false
	}

	var p img2pdf.CachedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		r.log.Warn().Str("key", key).Err(err).Msg("corrupt cache entry, dropping")
		_ = r.client.Del(ctx, key).Err()
		cacheMisses.Inc()
		return nil, false
	}

	cacheHits.Inc()
	r.log.Debug().Str("key", key).Int("bytes", len(p.Body)).Msg("cache hit")
	return &p, true
}

// Set stores the payload for url under the configured TTL. Failures are
// logged and swallowed.
func (r *Redis) Set(ctx context.Context, url string, p *img2pdf.CachedPayload) {
	if p == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		r.log.Warn().Str("url", url).Err(err).Msg("cache marshal failed")
		return
	}

	key := Key(url)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		r.log.Warn().Str("key", key).Err(err).Msg("cache set failed")
		return
	}
	r.log.Debug().Str("key", key).Dur("ttl", r.ttl).Int("bytes", len(p.Body)).Msg("cached payload")
}
