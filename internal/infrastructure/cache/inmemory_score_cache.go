package cache

import (
	"context"
	"sync"
	"time"

	"github.com/resumescore/backend/internal/domain/scoring"
	"github.com/resumescore/backend/internal/domain/shared"
)

// scoreEntry represents a cached score with expiration
type scoreEntry struct {
	score     scoring.Score
	expiresAt time.Time
}

// InMemoryScoreCache implements scoring.ScoreCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryScoreCache struct {
	mu        sync.RWMutex
	entries   map[string]scoreEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryScoreCache creates a new in-memory score cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryScoreCache(ttl time.Duration) *InMemoryScoreCache {
	if ttl <= 0 {
		ttl = defaultScoreTTL
	}
	cache := &InMemoryScoreCache{
		entries:  make(map[string]scoreEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached score for a digest, or shared.ErrNotFound on a miss
func (c *InMemoryScoreCache) Get(ctx context.Context, digest string) (*scoring.Score, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[digest]
	if !exists {
		return nil, shared.ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		return nil, shared.ErrNotFound
	}

	score := e.score
	return &score, nil
}

// Set stores a score under the digest with the configured TTL
func (c *InMemoryScoreCache) Set(ctx context.Context, digest string, score scoring.Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[digest] = scoreEntry{
		score:     score,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryScoreCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryScoreCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryScoreCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for digest, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, digest)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryScoreCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryScoreCache implements ScoreCache
var _ scoring.ScoreCache = (*InMemoryScoreCache)(nil)
