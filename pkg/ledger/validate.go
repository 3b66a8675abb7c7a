package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetup/models"
)

// Draft is a transaction as submitted by a form or a CSV row, before it is
// allowed anywhere near persistence. Fields that make no sense for the
// draft's type must be absent; a stale cross-type field (say a transfer
// target left over after switching the type to income) is rejected, never
// silently dropped.
type Draft struct {
	Type                models.TransactionType
	Amount              decimal.Decimal
	Currency            string
	Description         string
	OccurredAt          time.Time
	AccountID           uint
	CategoryID          *uint
	TransferToAccountID *uint
	ITBISPct            *decimal.Decimal
	Notes               string
}

// Normalize trims free-text fields and applies the fallback currency.
// It does not touch typed fields; anything wrong with those is ValidateDraft's
// job to reject.
func (d Draft) Normalize(defaultCurrency string) Draft {
	d.Description = strings.TrimSpace(d.Description)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = defaultCurrency
	}
	return d
}

// ValidateDraft checks a draft against the type-dependent rules and returns
// every violation found (empty slice means the draft is acceptable).
//
// category is the resolved category record for d.CategoryID, or nil when the
// draft has none; the caller resolves it so this stays a pure function.
func ValidateDraft(d Draft, category *models.Category) []*ValidationError {
	var errs []*ValidationError

	if !models.ValidTransactionType(d.Type) {
		return append(errs, missing("type"))
	}
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, &ValidationError{Kind: KindInvalidAmount, Field: "amount"})
	}
	if d.AccountID == 0 {
		errs = append(errs, missing("account_id"))
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, missing("description"))
	}
	if d.OccurredAt.IsZero() {
		errs = append(errs, missing("occurred_at"))
	}

	switch d.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if d.CategoryID == nil {
			errs = append(errs, missing("category_id"))
		} else if category != nil && string(category.Type) != string(d.Type) {
			errs = append(errs, &ValidationError{Kind: KindCategoryTypeMismatch, Field: "category_id"})
		}
		if d.TransferToAccountID != nil {
			errs = append(errs, notAllowed("transfer_to_account_id"))
		}
		if d.Type == models.TransactionTypeIncome && d.ITBISPct != nil {
			// ITBIS is only recorded on expenses.
			errs = append(errs, notAllowed("itbis_pct"))
		}
	case models.TransactionTypeTransfer:
		if d.TransferToAccountID == nil {
			errs = append(errs, missing("transfer_to_account_id"))
		} else if d.AccountID != 0 && *d.TransferToAccountID == d.AccountID {
			errs = append(errs, &ValidationError{Kind: KindSameAccountTransfer, Field: "transfer_to_account_id"})
		}
		if d.CategoryID != nil {
			errs = append(errs, notAllowed("category_id"))
		}
		if d.ITBISPct != nil {
			errs = append(errs, notAllowed("itbis_pct"))
		}
	}

	return errs
}

// ApplyDraft copies a validated draft onto a transaction record. Calling it
// with an unvalidated draft is a logic error.
func ApplyDraft(tx *models.Transaction, d Draft) {
	tx.Type = d.Type
	tx.Amount = d.Amount
	tx.Currency = d.Currency
	tx.Description = d.Description
	tx.OccurredAt = d.OccurredAt
	tx.AccountID = d.AccountID
	tx.CategoryID = d.CategoryID
	tx.TransferToAccountID = d.TransferToAccountID
	tx.ITBISPct = d.ITBISPct
	tx.Notes = d.Notes
}
