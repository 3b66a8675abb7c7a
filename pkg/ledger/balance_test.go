package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"budgetup/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func uintPtr(v uint) *uint { return &v }

func TestAccountBalance_NoTransactions(t *testing.T) {
	acct := models.Account{ID: 1, InitialBalance: dec("1234.56")}

	got := AccountBalance(acct, nil)

	assert.True(t, got.Equal(dec("1234.56")), "expected initial balance, got %s", got)
}

func TestAccountBalance_SignedHistory(t *testing.T) {
	// initial 1000, income 500, expense 200, transfer-out 100 => 1200
	acct := models.Account{ID: 1, InitialBalance: dec("1000")}
	txs := []models.Transaction{
		{AccountID: 1, Type: models.TransactionTypeIncome, Amount: dec("500")},
		{AccountID: 1, Type: models.TransactionTypeExpense, Amount: dec("200")},
		{AccountID: 1, Type: models.TransactionTypeTransfer, Amount: dec("100"), TransferToAccountID: uintPtr(2)},
	}

	got := AccountBalance(acct, txs)

	assert.True(t, got.Equal(dec("1200")), "expected 1200, got %s", got)
}

func TestAccountBalance_TransferIn(t *testing.T) {
	acct := models.Account{ID: 2, InitialBalance: dec("50")}
	txs := []models.Transaction{
		{AccountID: 1, Type: models.TransactionTypeTransfer, Amount: dec("25.50"), TransferToAccountID: uintPtr(2)},
	}

	got := AccountBalance(acct, txs)

	assert.True(t, got.Equal(dec("75.50")), "expected 75.50, got %s", got)
}

func TestAccountBalance_TransferConservation(t *testing.T) {
	// A transfer of A from X to Y leaves Bx+By unchanged.
	x := models.Account{ID: 1, InitialBalance: dec("800")}
	y := models.Account{ID: 2, InitialBalance: dec("300")}
	txs := []models.Transaction{
		{AccountID: 1, Type: models.TransactionTypeTransfer, Amount: dec("150"), TransferToAccountID: uintPtr(2)},
	}

	bx := AccountBalance(x, txs)
	by := AccountBalance(y, txs)

	assert.True(t, bx.Equal(dec("650")), "expected X=650, got %s", bx)
	assert.True(t, by.Equal(dec("450")), "expected Y=450, got %s", by)
	assert.True(t, bx.Add(by).Equal(dec("1100")), "sum must be conserved, got %s", bx.Add(by))
}

func TestAccountBalance_IgnoresOtherAccounts(t *testing.T) {
	acct := models.Account{ID: 1, InitialBalance: dec("100")}
	txs := []models.Transaction{
		{AccountID: 9, Type: models.TransactionTypeExpense, Amount: dec("40")},
		{AccountID: 9, Type: models.TransactionTypeTransfer, Amount: dec("10"), TransferToAccountID: uintPtr(8)},
	}

	got := AccountBalance(acct, txs)

	assert.True(t, got.Equal(dec("100")), "unrelated rows must not move the balance, got %s", got)
}

func TestAccountBalance_MinorUnitPrecision(t *testing.T) {
	acct := models.Account{ID: 1, InitialBalance: dec("0.10")}
	txs := []models.Transaction{
		{AccountID: 1, Type: models.TransactionTypeIncome, Amount: dec("0.20")},
		{AccountID: 1, Type: models.TransactionTypeExpense, Amount: dec("0.05")},
	}

	got := AccountBalance(acct, txs)

	// decimal arithmetic: no float drift at cent precision
	assert.Equal(t, "0.25", got.String())
}
