// Package admins keeps an in-memory set of the users holding an
// administrative role.
package admins

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source lists the ids of users that currently hold an admin role.
type Source interface {
	ListPrivilegedIDs(ctx context.Context) ([]int64, error)
}

// Cache holds the privileged user ids loaded from a Source.
type Cache struct {
	source Source
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time

	mu        sync.RWMutex
	ids       map[int64]struct{}
	refreshed time.Time
}

// NewCache builds an empty Cache. Call Refresh or Run to populate it.
func NewCache(source Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{source: source, logger: logger, now: time.Now, ids: make(map[int64]struct{})}
}

// Refresh reloads the id set. Concurrent callers share a single load.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		ids, err := c.source.ListPrivilegedIDs(ctx)
		if err != nil {
			return nil, err
		}
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		c.mu.Lock()
		c.ids = set
		c.refreshed = c.now()
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Run refreshes immediately and then every interval until ctx is done.
// Failed refreshes are logged and keep the previous set.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
		c.logger.Warn("privileged cache refresh", slog.Any("error", err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("privileged cache refresh", slog.Any("error", err))
			}
		}
	}
}

// IDs returns the cached ids in ascending order.
func (c *Cache) IDs() []int64 {
	c.mu.RLock()
	out := make([]int64, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether id is cached as privileged.
func (c *Cache) Contains(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// Stale reports whether the last successful refresh is older than maxAge.
// A cache that never loaded is stale.
func (c *Cache) Stale(maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.refreshed.IsZero() {
		return true
	}
	return c.now().Sub(c.refreshed) > maxAge
}
