// Package accounts classifies ledger account codes against the per-tenant
// bank account reference table.
package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const cacheTTL = 5 * time.Minute

// ReferenceSource supplies the per-tenant bank account reference table.
type ReferenceSource interface {
	ListBankAccounts(ctx context.Context, tenant string) ([]string, error)
}

type tenantSet struct {
	codes   map[string]bool
	expires time.Time
}

// Classifier answers bank-account membership questions, caching the
// reference table per tenant to keep the hot path off the database.
type Classifier struct {
	store ReferenceSource
	cache map[string]tenantSet
	mu    sync.RWMutex
}

// NewClassifier creates a classifier backed by the given store.
func NewClassifier(store ReferenceSource) *Classifier {
	return &Classifier{
		store: store,
		cache: make(map[string]tenantSet),
	}
}

// IsBankAccount reports whether accountCode is flagged as a bank/cash
// account for the tenant. An empty code is never a bank account.
func (c *Classifier) IsBankAccount(ctx context.Context, tenant, accountCode string) (bool, error) {
	if accountCode == "" {
		return false, nil
	}

	c.mu.RLock()
	set, ok := c.cache[tenant]
	c.mu.RUnlock()

	if ok && time.Now().Before(set.expires) {
		return set.codes[accountCode], nil
	}

	codes, err := c.store.ListBankAccounts(ctx, tenant)
	if err != nil {
		return false, fmt.Errorf("failed to load bank accounts for tenant %s: %w", tenant, err)
	}

	lookup := make(map[string]bool, len(codes))
	for _, code := range codes {
		lookup[code] = true
	}

	c.mu.Lock()
	c.cache[tenant] = tenantSet{codes: lookup, expires: time.Now().Add(cacheTTL)}
	c.mu.Unlock()

	return lookup[accountCode], nil
}

// Invalidate drops the cached reference table for a tenant.
func (c *Classifier) Invalidate(tenant string) {
	c.mu.Lock()
	delete(c.cache, tenant)
	c.mu.Unlock()
}
