// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// preview.go provides a Valkey-backed cache for rendered card previews.
// Preview renders use sample data and depend only on the template layout,
// so a preview stays valid for a given template version. The version is
// part of the key, which makes invalidation on save automatic.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// previewKeyPrefix is the Valkey key prefix for cached preview PNGs.
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL is how long a rendered preview stays cached.
	DefaultPreviewTTL = 10 * time.Minute
)

// PreviewCache stores rendered preview PNGs in Valkey.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache backed by the given Valkey client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// Key builds the cache key for a template side at a specific version.
func Key(templateID uuid.UUID, version int, side string) string {
	return fmt.Sprintf("%s:%d:%s", templateID, version, side)
}

// Get retrieves a cached preview PNG. Returns (nil, false) on miss.
func (pc *PreviewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, previewKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("preview cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("preview cache hit", "key", key)
	return val, true
}

// Set stores a rendered preview PNG with the configured TTL.
func (pc *PreviewCache) Set(ctx context.Context, key string, png []byte) {
	if err := pc.client.Set(ctx, previewKeyPrefix+key, png, pc.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "key", key, "error", err)
	}
}

// InvalidateTemplate removes all cached previews for a template, covering
// every version and side. Used when a template is deleted.
func (pc *PreviewCache) InvalidateTemplate(ctx context.Context, templateID uuid.UUID) {
	pattern := fmt.Sprintf("%s%s:*", previewKeyPrefix, templateID)
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("preview cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("preview cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("preview cache invalidated", "template_id", templateID, "deleted", deleted)
	}
}
