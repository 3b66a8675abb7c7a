package ledger

import (
	"github.com/shopspring/decimal"

	"budgetup/models"
)

// AccountBalance derives the current balance of an account from its initial
// balance and the transactions touching it. The caller supplies every
// transaction referencing the account either as source (AccountID) or as
// transfer destination (TransferToAccountID); rows for other accounts are
// ignored, so passing a broader set is harmless.
//
// Income credits, expense debits, transfer-out debits, transfer-in credits.
// The function is total over validated input: a malformed transaction here
// means the validator was bypassed upstream.
func AccountBalance(account models.Account, transactions []models.Transaction) decimal.Decimal {
	balance := account.InitialBalance
	for _, tx := range transactions {
		if tx.AccountID == account.ID {
			switch tx.Type {
			case models.TransactionTypeIncome:
				balance = balance.Add(tx.Amount)
			case models.TransactionTypeExpense, models.TransactionTypeTransfer:
				balance = balance.Sub(tx.Amount)
			}
		}
		if tx.TransferToAccountID != nil && *tx.TransferToAccountID == account.ID {
			balance = balance.Add(tx.Amount)
		}
	}
	return balance
}
