package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetup/models"
)

// TransactionFilter narrows a transaction listing. Nil/empty fields are
// ignored. Search matches description and notes case-insensitively.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	AccountID  *uint
	CategoryID *uint
	Type       *models.TransactionType
	Search     string
}

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	Create(a *models.Account) error
	Update(a *models.Account) error
	// Delete removes an account, or returns a referential_delete_blocked
	// validation error while transactions still reference it.
	Delete(id, orgID uint) error
	GetByID(id, orgID uint) (models.Account, error)
	ListByOrganization(orgID uint) ([]models.Account, error)
	// CurrentBalance derives the balance (initial + signed history), served
	// from the balance cache when fresh.
	CurrentBalance(a models.Account) (decimal.Decimal, error)
}

// CategoryRepository defines the interface for category-related database operations.
type CategoryRepository interface {
	Create(c *models.Category) error
	Update(c *models.Category) error
	Delete(id, orgID uint) error
	GetByID(id, orgID uint) (models.Category, error)
	ListByOrganization(orgID uint) ([]models.Category, error)
}

// TransactionRepository defines the interface for transaction-related database
// operations. Every mutation invalidates the balance cache entries of the
// accounts it touches.
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	Update(tx *models.Transaction) error
	Delete(id, orgID uint) error
	GetByID(id, orgID uint) (models.Transaction, error)
	List(orgID uint, f TransactionFilter) ([]models.Transaction, error)
	// ListForAccount returns every row referencing the account as source or
	// transfer destination, the exact input set ledger.AccountBalance wants.
	ListForAccount(accountID uint) ([]models.Transaction, error)
}

// Repositories bundles the per-model repositories sharing one gorm handle and
// one balance cache.
type Repositories struct {
	Accounts     AccountRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
	Balances     *BalanceCache
}

// New wires the gorm-backed repositories around a shared balance cache.
func New(db *gorm.DB) *Repositories {
	cache := NewBalanceCache()
	return &Repositories{
		Accounts:     &accountRepo{db: db, cache: cache},
		Categories:   &categoryRepo{db: db},
		Transactions: &transactionRepo{db: db, cache: cache},
		Balances:     cache,
	}
}
