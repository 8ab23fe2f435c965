// Package cache memoizes collect-and-score results for the lifetime of the process.
package cache

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/metrics"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// Key identifies a cached result. Keywords are compared exactly. The result limit is
// not part of the key, so the first request for a keyword and lookback decides how
// many videos later requests see.
type Key struct {
	Keyword        string
	LookbackMonths int
}

func (k Key) String() string {
	return strconv.Itoa(k.LookbackMonths) + ":" + k.Keyword
}

// ComputeFunc produces the value for a missing key.
type ComputeFunc func(ctx context.Context) ([]models.ScoredVideoRecord, error)

// CollectionCache is an unbounded, never-evicting result cache. Concurrent misses on
// one key share a single computation.
type CollectionCache struct {
	mu      sync.RWMutex
	entries map[Key][]models.ScoredVideoRecord
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates an empty cache.
func New(logger *zap.Logger, m *metrics.Metrics) *CollectionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionCache{
		entries: make(map[Key][]models.ScoredVideoRecord),
		logger:  logger,
		metrics: m,
	}
}

// Get returns the stored value for key.
func (c *CollectionCache) Get(key Key) ([]models.ScoredVideoRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.entries[key]
	return records, ok
}

// GetOrCompute returns the stored value for key, or runs compute and stores its result
// when it succeeds. Failed computations leave the cache untouched. Returned slices are
// shared between callers and must not be modified.
//
// The shared computation runs detached from any single caller's cancellation. Each
// caller waits on its own ctx and returns ctx.Err() if it is done first, while the
// computation continues for the remaining callers and the cache.
func (c *CollectionCache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) ([]models.ScoredVideoRecord, error) {
	if records, ok := c.Get(key); ok {
		c.metrics.CacheHit()
		c.logger.Debug("Cache hit",
			zap.String("keyword", key.Keyword),
			zap.Int("lookbackMonths", key.LookbackMonths),
		)
		return records, nil
	}

	computeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		// A concurrent caller may have stored the value between Get and DoChan.
		if records, ok := c.Get(key); ok {
			return records, nil
		}

		c.metrics.CacheMiss()
		records, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []models.ScoredVideoRecord{}
		}

		c.mu.Lock()
		c.entries[key] = records
		c.mu.Unlock()

		c.logger.Info("Cached collection result",
			zap.String("keyword", key.Keyword),
			zap.Int("lookbackMonths", key.LookbackMonths),
			zap.Int("videos", len(records)),
		)
		return records, nil
	})

	select {
	case <-ctx.Done():
		c.logger.Debug("Caller left in-flight computation",
			zap.String("keyword", key.Keyword),
			zap.Error(ctx.Err()),
		)
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("Joined in-flight computation", zap.String("keyword", key.Keyword))
		}
		return res.Val.([]models.ScoredVideoRecord), nil
	}
}

// Len returns the number of stored keys.
func (c *CollectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
