// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// categories.go provides a Valkey-backed cache for the category listing.
// The list is read on nearly every page of the client and changes only
// through admin writes, so it is cached with a short TTL and invalidated
// on every category mutation.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"smartblog/internal/models"
)

const (
	// categoriesKey is the Valkey key holding the serialized category list.
	categoriesKey = "categories:all"

	// DefaultCategoryTTL is how long the category list stays cached.
	DefaultCategoryTTL = 5 * time.Minute
)

// CategoryCache caches the full category listing in Valkey.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache creates a category cache backed by the given Valkey client.
func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

// Get retrieves the cached category list. Returns (nil, false) on miss
// or any cache error; the caller falls back to the store.
func (cc *CategoryCache) Get(ctx context.Context) ([]models.Category, bool) {
	payload, err := cc.client.Get(ctx, categoriesKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("category cache get error", "error", err)
		return nil, false
	}

	var categories []models.Category
	if err := json.Unmarshal(payload, &categories); err != nil {
		slog.Warn("category cache unmarshal error", "error", err)
		return nil, false
	}
	return categories, true
}

// Set stores the category list with the configured TTL.
func (cc *CategoryCache) Set(ctx context.Context, categories []models.Category) {
	payload, err := json.Marshal(categories)
	if err != nil {
		slog.Warn("category cache marshal error", "error", err)
		return
	}
	if err := cc.client.Set(ctx, categoriesKey, payload, cc.ttl).Err(); err != nil {
		slog.Warn("category cache set error", "error", err)
	}
}

// Invalidate drops the cached list. Called after every category write
// and after post create/delete, since post counts are part of the listing.
func (cc *CategoryCache) Invalidate(ctx context.Context) {
	if err := cc.client.Del(ctx, categoriesKey).Err(); err != nil {
		slog.Warn("category cache invalidate error", "error", err)
	}
	slog.Debug("category cache invalidated")
}
