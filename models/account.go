package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where the money sits.
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
)

// Account belongs to one organization. The current balance is never stored:
// it is always derived from InitialBalance plus the signed transaction
// history (see pkg/ledger).
type Account struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OrganizationID uint            `gorm:"index;not null;uniqueIndex:idx_org_account_name"`
	Name           string          `gorm:"size:255;not null;uniqueIndex:idx_org_account_name"`
	Type           AccountType     `gorm:"size:32;not null"`
	Currency       string          `gorm:"size:3;not null"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
}

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCreditCard:
		return true
	}
	return false
}
