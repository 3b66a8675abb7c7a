package repository

import (
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceCache memoizes derived account balances. Balances are never
// persisted (they would drift); this cache only spares the recomputation
// between writes. Invalidate is a first-class operation: every transaction
// create/update/delete must call it for the accounts it touched, nothing
// else may mutate entries.
type BalanceCache struct {
	mu       sync.RWMutex
	balances map[uint]decimal.Decimal
}

func NewBalanceCache() *BalanceCache {
	return &BalanceCache{balances: make(map[uint]decimal.Decimal)}
}

// Get returns the cached balance for an account and whether one is present.
func (c *BalanceCache) Get(accountID uint) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.balances[accountID]
	return b, ok
}

// Put stores a freshly derived balance.
func (c *BalanceCache) Put(accountID uint, balance decimal.Decimal) {
	c.mu.Lock()
	c.balances[accountID] = balance
	c.mu.Unlock()
}

// Invalidate drops the entries for the given accounts. Unknown IDs are fine.
func (c *BalanceCache) Invalidate(accountIDs ...uint) {
	c.mu.Lock()
	for _, id := range accountIDs {
		delete(c.balances, id)
	}
	c.mu.Unlock()
}
