package ledger

import (
	"github.com/shopspring/decimal"

	"budgetup/models"
)

// Totals summarizes a filtered transaction set. Each type's total is the
// unsigned sum of its own amounts; only Net combines types (income minus
// expense). Transfers move money between accounts, so they appear in
// Transfer and Total but never in Net.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Transfer decimal.Decimal `json:"transfer"`
	Net      decimal.Decimal `json:"net"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ComputeTotals sums a transaction list the caller has already filtered
// (date range, account, category, type, search). Pure summation: the result
// is independent of input order.
func ComputeTotals(transactions []models.Transaction) Totals {
	t := Totals{
		Income:   decimal.Zero,
		Expense:  decimal.Zero,
		Transfer: decimal.Zero,
	}
	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionTypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		case models.TransactionTypeTransfer:
			t.Transfer = t.Transfer.Add(tx.Amount)
		}
		t.Count++
	}
	t.Net = t.Income.Sub(t.Expense)
	t.Total = t.Income.Add(t.Expense).Add(t.Transfer)
	return t
}
