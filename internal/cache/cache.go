// Package cache provides the three-tier read path over the pattern
// store: in-process memory, a file-backed snapshot that survives process
// restarts, and the store itself.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/service"
)

// PatternCache caches per-tenant pattern sets. All state is held by the
// constructed instance; backends are injected so each tier can be tested
// in isolation.
type PatternCache struct {
	store    service.PatternSource
	snapshot *Snapshot
	memory   map[string][]model.Pattern
	mu       sync.RWMutex
}

// New creates a pattern cache over the given store. snapshotDir may be
// empty to disable the file tier.
func New(store service.PatternSource, snapshotDir string) *PatternCache {
	var snap *Snapshot
	if snapshotDir != "" {
		snap = NewSnapshot(snapshotDir)
	}
	return &PatternCache{
		store:    store,
		snapshot: snap,
		memory:   make(map[string][]model.Pattern),
	}
}

// Get returns the tenant's patterns, reading through memory, the file
// snapshot, and finally the store. Lower tiers are repopulated on the
// way back up.
func (c *PatternCache) Get(ctx context.Context, tenant string) ([]model.Pattern, error) {
	c.mu.RLock()
	patterns, ok := c.memory[tenant]
	c.mu.RUnlock()
	if ok {
		return patterns, nil
	}

	if c.snapshot != nil {
		patterns, err := c.snapshot.Load(tenant)
		if err != nil {
			// A corrupt or unreadable snapshot is just a miss.
			slog.Debug("Snapshot tier miss",
				"tenant", tenant,
				"error", err)
		} else if patterns != nil {
			c.put(tenant, patterns)
			return patterns, nil
		}
	}

	patterns, err := c.store.ListPatterns(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns for tenant %s: %w", tenant, err)
	}

	c.put(tenant, patterns)
	if c.snapshot != nil {
		if err := c.snapshot.Store(tenant, patterns); err != nil {
			slog.Warn("Failed to write pattern snapshot",
				"tenant", tenant,
				"error", err)
		}
	}

	return patterns, nil
}

// Invalidate clears the memory and snapshot tiers for a tenant. Callers
// that commit new or edited transactions must invoke this so the next
// read observes fresh patterns. Invalidation does not trigger
// re-discovery; the next Get simply reads through to the store.
func (c *PatternCache) Invalidate(_ context.Context, tenant string) error {
	c.mu.Lock()
	delete(c.memory, tenant)
	c.mu.Unlock()

	if c.snapshot != nil {
		if err := c.snapshot.Remove(tenant); err != nil {
			return fmt.Errorf("failed to remove pattern snapshot for tenant %s: %w", tenant, err)
		}
	}

	return nil
}

// Warm proactively populates the memory tier from the store for the
// given tenants, avoiding a first-request latency spike after process
// start.
func (c *PatternCache) Warm(ctx context.Context, tenants []string) error {
	for _, tenant := range tenants {
		patterns, err := c.store.ListPatterns(ctx, tenant)
		if err != nil {
			return fmt.Errorf("failed to warm cache for tenant %s: %w", tenant, err)
		}
		c.put(tenant, patterns)
		if c.snapshot != nil {
			if err := c.snapshot.Store(tenant, patterns); err != nil {
				slog.Warn("Failed to write pattern snapshot",
					"tenant", tenant,
					"error", err)
			}
		}
		slog.Info("Warmed pattern cache",
			"tenant", tenant,
			"patterns", len(patterns))
	}
	return nil
}

func (c *PatternCache) put(tenant string, patterns []model.Pattern) {
	c.mu.Lock()
	c.memory[tenant] = patterns
	c.mu.Unlock()
}
