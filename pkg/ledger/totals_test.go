package ledger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetup/models"
)

func sampleSet() []models.Transaction {
	return []models.Transaction{
		{Type: models.TransactionTypeIncome, Amount: dec("100")},
		{Type: models.TransactionTypeExpense, Amount: dec("40")},
		{Type: models.TransactionTypeTransfer, Amount: dec("30")},
	}
}

func TestComputeTotals_Basic(t *testing.T) {
	got := ComputeTotals(sampleSet())

	assert.True(t, got.Income.Equal(dec("100")))
	assert.True(t, got.Expense.Equal(dec("40")))
	assert.True(t, got.Transfer.Equal(dec("30")))
	assert.True(t, got.Net.Equal(dec("60")))
	assert.True(t, got.Total.Equal(dec("170")))
	assert.Equal(t, 3, got.Count)
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil)

	assert.True(t, got.Income.IsZero())
	assert.True(t, got.Expense.IsZero())
	assert.True(t, got.Transfer.IsZero())
	assert.True(t, got.Net.IsZero())
	assert.True(t, got.Total.IsZero())
	assert.Equal(t, 0, got.Count)
}

func TestComputeTotals_PermutationInvariant(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.TransactionTypeIncome, Amount: dec("12.34")},
		{Type: models.TransactionTypeIncome, Amount: dec("0.66")},
		{Type: models.TransactionTypeExpense, Amount: dec("7.25")},
		{Type: models.TransactionTypeTransfer, Amount: dec("100")},
		{Type: models.TransactionTypeExpense, Amount: dec("2.75")},
	}
	want := ComputeTotals(txs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.Transaction, len(txs))
		copy(shuffled, txs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputeTotals(shuffled)
		assert.True(t, got.Income.Equal(want.Income))
		assert.True(t, got.Expense.Equal(want.Expense))
		assert.True(t, got.Transfer.Equal(want.Transfer))
		assert.True(t, got.Net.Equal(want.Net))
		assert.True(t, got.Total.Equal(want.Total))
		assert.Equal(t, want.Count, got.Count)
	}
}

func TestComputeTotals_Identities(t *testing.T) {
	// net == income - expense and total == income + expense + transfer,
	// whatever the mix of rows.
	sets := [][]models.Transaction{
		sampleSet(),
		{
			{Type: models.TransactionTypeExpense, Amount: dec("999.99")},
		},
		{
			{Type: models.TransactionTypeTransfer, Amount: dec("10")},
			{Type: models.TransactionTypeTransfer, Amount: dec("20")},
		},
	}
	for _, txs := range sets {
		got := ComputeTotals(txs)
		assert.True(t, got.Net.Equal(got.Income.Sub(got.Expense)))
		assert.True(t, got.Total.Equal(got.Income.Add(got.Expense).Add(got.Transfer)))
	}
}

func TestComputeTotals_TypesReportedUnsigned(t *testing.T) {
	// expense and transfer are subtractive only inside AccountBalance;
	// ComputeTotals reports each type's own sum as-is.
	got := ComputeTotals([]models.Transaction{
		{Type: models.TransactionTypeExpense, Amount: dec("55")},
	})

	assert.True(t, got.Expense.Equal(dec("55")))
	assert.True(t, got.Net.Equal(dec("-55")))
}
