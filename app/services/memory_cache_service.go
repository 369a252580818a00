package services

import (
	"context"
	"sync"
	"time"

	"github.com/geo-reconciler/app/models"
)

// MemoryCacheService is the in-process ICacheService used when no Redis is
// configured.
type MemoryCacheService struct {
	cache      map[string]*models.Resolution
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration

	hits   int64
	misses int64
}

// NewMemoryCacheService creates an in-memory cache with the given TTL.
func NewMemoryCacheService(ttl time.Duration) *MemoryCacheService {
	return &MemoryCacheService{
		cache:      make(map[string]*models.Resolution),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// Get returns the cached resolution for a key.
func (cs *MemoryCacheService) Get(ctx context.Context, key string) (*models.Resolution, bool, error) {
	cs.mu.RLock()
	result, exists := cs.cache[key]
	expired := exists && cs.isExpired(key)
	cs.mu.RUnlock()

	if !exists || expired {
		cs.mu.Lock()
		if expired {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
		cs.misses++
		cs.mu.Unlock()
		return nil, false, nil
	}

	cs.mu.Lock()
	cs.hits++
	cs.mu.Unlock()
	return result, true, nil
}

// Set stores a resolution under a key.
func (cs *MemoryCacheService) Set(ctx context.Context, key string, result *models.Resolution) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = result
	cs.timestamps[key] = time.Now()
	return nil
}

// Delete removes a key.
func (cs *MemoryCacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)
	return nil
}

// Clear removes everything.
func (cs *MemoryCacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.Resolution)
	cs.timestamps = make(map[string]time.Time)
	return nil
}

// GetStats returns cache statistics.
func (cs *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	total := cs.hits + cs.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(cs.hits) / float64(total)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  cs.hits,
		TotalMiss:  cs.misses,
		TotalItems: int64(len(cs.cache)),
	}, nil
}

// Close is a no-op for the in-memory cache.
func (cs *MemoryCacheService) Close() error {
	return nil
}

func (cs *MemoryCacheService) isExpired(key string) bool {
	ts, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(ts) > cs.ttl
}
