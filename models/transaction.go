package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags the three movement kinds. The type decides which
// fields are required: income/expense carry a category, transfers carry a
// destination account instead.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is a single ledger movement inside one organization.
// Invariant (enforced by pkg/ledger before persistence): exactly one of
// CategoryID / TransferToAccountID is set, determined by Type, and for
// transfers AccountID != TransferToAccountID.
type Transaction struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OrganizationID uint            `gorm:"index;not null"`
	Type           TransactionType `gorm:"size:16;not null;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency       string          `gorm:"size:3;not null"`
	Description    string          `gorm:"size:512;not null"`
	OccurredAt     time.Time       `gorm:"not null;index"`
	AccountID      uint            `gorm:"index;not null"`
	CategoryID     *uint           `gorm:"index"`
	// TransferToAccountID is the credited account on a transfer.
	TransferToAccountID *uint `gorm:"index"`
	// ITBISPct records the Dominican VAT percentage informationally on
	// expenses. It never changes the amount.
	ITBISPct        *decimal.Decimal `gorm:"type:numeric(5,2)"`
	Notes           string           `gorm:"size:1024"`
	CreatedByUserID uint             `gorm:"index"`

	Account           Account   `gorm:"foreignKey:AccountID"`
	TransferToAccount *Account  `gorm:"foreignKey:TransferToAccountID"`
	Category          *Category `gorm:"foreignKey:CategoryID"`
}

// ValidTransactionType reports whether t is income, expense or transfer.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}
