package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func hasError(errs []*ValidationError, kind ErrorKind, field string) bool {
	for _, e := range errs {
		if e.Kind == kind && e.Field == field {
			return true
		}
	}
	return false
}

func validExpenseDraft() Draft {
	return Draft{
		Type:        models.TransactionTypeExpense,
		Amount:      decimal.NewFromInt(100),
		Currency:    "DOP",
		Description: "Rent",
		OccurredAt:  day("2024-01-15"),
		AccountID:   1,
		CategoryID:  uintPtr(3),
	}
}

func TestValidateDraft_AcceptsExpense(t *testing.T) {
	cat := &models.Category{ID: 3, Type: models.CategoryTypeExpense}

	errs := ValidateDraft(validExpenseDraft(), cat)

	assert.Empty(t, errs)
}

func TestValidateDraft_IncomeMissingCategory(t *testing.T) {
	d := Draft{
		Type:        models.TransactionTypeIncome,
		Amount:      decimal.NewFromInt(50),
		Description: "Sale",
		OccurredAt:  day("2024-02-01"),
		AccountID:   1,
	}

	errs := ValidateDraft(d, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, KindMissingRequiredField, errs[0].Kind)
	assert.Equal(t, "category_id", errs[0].Field)
}

func TestValidateDraft_SameAccountTransfer(t *testing.T) {
	d := Draft{
		Type:                models.TransactionTypeTransfer,
		Amount:              decimal.NewFromInt(10),
		Description:         "Move",
		OccurredAt:          day("2024-03-01"),
		AccountID:           7,
		TransferToAccountID: uintPtr(7),
	}

	errs := ValidateDraft(d, nil)

	// dedicated kind, distinguishable from a missing-field error
	assert.True(t, hasError(errs, KindSameAccountTransfer, "transfer_to_account_id"))
	assert.False(t, hasError(errs, KindMissingRequiredField, "transfer_to_account_id"))
}

func TestValidateDraft_TransferForbidsCategory(t *testing.T) {
	d := Draft{
		Type:                models.TransactionTypeTransfer,
		Amount:              decimal.NewFromInt(10),
		Description:         "Move",
		OccurredAt:          day("2024-03-01"),
		AccountID:           1,
		TransferToAccountID: uintPtr(2),
		CategoryID:          uintPtr(5), // stale after a type switch
	}

	errs := ValidateDraft(d, nil)

	assert.True(t, hasError(errs, KindFieldNotAllowed, "category_id"))
}

func TestValidateDraft_IncomeForbidsTransferTarget(t *testing.T) {
	d := Draft{
		Type:                models.TransactionTypeIncome,
		Amount:              decimal.NewFromInt(10),
		Description:         "Sale",
		OccurredAt:          day("2024-03-01"),
		AccountID:           1,
		CategoryID:          uintPtr(5),
		TransferToAccountID: uintPtr(2),
	}
	cat := &models.Category{ID: 5, Type: models.CategoryTypeIncome}

	errs := ValidateDraft(d, cat)

	assert.True(t, hasError(errs, KindFieldNotAllowed, "transfer_to_account_id"))
}

func TestValidateDraft_CategoryTypeMismatch(t *testing.T) {
	d := validExpenseDraft()
	cat := &models.Category{ID: 3, Type: models.CategoryTypeIncome}

	errs := ValidateDraft(d, cat)

	assert.True(t, hasError(errs, KindCategoryTypeMismatch, "category_id"))
}

func TestValidateDraft_InvalidAmount(t *testing.T) {
	d := validExpenseDraft()
	d.Amount = decimal.Zero

	errs := ValidateDraft(d, &models.Category{ID: 3, Type: models.CategoryTypeExpense})
	assert.True(t, hasError(errs, KindInvalidAmount, "amount"))

	d.Amount = decimal.NewFromInt(-5)
	errs = ValidateDraft(d, &models.Category{ID: 3, Type: models.CategoryTypeExpense})
	assert.True(t, hasError(errs, KindInvalidAmount, "amount"))
}

func TestValidateDraft_ITBISRejectedOffExpense(t *testing.T) {
	pct := decimal.NewFromInt(18)

	income := Draft{
		Type:        models.TransactionTypeIncome,
		Amount:      decimal.NewFromInt(10),
		Description: "Sale",
		OccurredAt:  day("2024-03-01"),
		AccountID:   1,
		CategoryID:  uintPtr(5),
		ITBISPct:    &pct,
	}
	errs := ValidateDraft(income, &models.Category{ID: 5, Type: models.CategoryTypeIncome})
	assert.True(t, hasError(errs, KindFieldNotAllowed, "itbis_pct"))

	transfer := Draft{
		Type:                models.TransactionTypeTransfer,
		Amount:              decimal.NewFromInt(10),
		Description:         "Move",
		OccurredAt:          day("2024-03-01"),
		AccountID:           1,
		TransferToAccountID: uintPtr(2),
		ITBISPct:            &pct,
	}
	errs = ValidateDraft(transfer, nil)
	assert.True(t, hasError(errs, KindFieldNotAllowed, "itbis_pct"))

	expense := validExpenseDraft()
	expense.ITBISPct = &pct
	errs = ValidateDraft(expense, &models.Category{ID: 3, Type: models.CategoryTypeExpense})
	assert.Empty(t, errs)
}

func TestValidateDraft_MissingEverything(t *testing.T) {
	errs := ValidateDraft(Draft{Type: models.TransactionTypeExpense}, nil)

	assert.True(t, hasError(errs, KindInvalidAmount, "amount"))
	assert.True(t, hasError(errs, KindMissingRequiredField, "account_id"))
	assert.True(t, hasError(errs, KindMissingRequiredField, "description"))
	assert.True(t, hasError(errs, KindMissingRequiredField, "occurred_at"))
	assert.True(t, hasError(errs, KindMissingRequiredField, "category_id"))
}

func TestValidateDraft_UnknownType(t *testing.T) {
	errs := ValidateDraft(Draft{Type: "loan"}, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, KindMissingRequiredField, errs[0].Kind)
	assert.Equal(t, "type", errs[0].Field)
}

func TestNormalize(t *testing.T) {
	d := Draft{Description: "  Rent  ", Notes: " jan ", Currency: " dop "}

	n := d.Normalize("USD")
	assert.Equal(t, "Rent", n.Description)
	assert.Equal(t, "jan", n.Notes)
	assert.Equal(t, "DOP", n.Currency)

	n = Draft{}.Normalize("USD")
	assert.Equal(t, "USD", n.Currency)
}
