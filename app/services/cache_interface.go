package services

import (
	"context"

	"github.com/geo-reconciler/app/models"
)

// CacheStats summarizes a result cache.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService caches single-label resolutions. Implementations must be
// read-through only: a cache hit returns the stored resolution unchanged, so
// caching can never alter outcomes.
type ICacheService interface {
	// Get returns the cached resolution for a key.
	Get(ctx context.Context, key string) (*models.Resolution, bool, error)

	// Set stores a resolution under a key.
	Set(ctx context.Context, key string, result *models.Resolution) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes everything.
	Clear(ctx context.Context) error

	// GetStats returns cache statistics.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Close releases the backing connection, if any.
	Close() error
}
