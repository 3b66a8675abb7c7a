package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/models"
)

func TestParseTransactions_Valid(t *testing.T) {
	content := `type,amount,description,occurred_at,account_name,category_name,transfer_to_account_name,itbis_pct,notes,currency
expense,1500.00,Rent January,2024-01-15,Banco Popular,Rent,,18,office,DOP
income,2000,Consulting,2024-01-20,Banco Popular,Sales,,,invoice 42,DOP
transfer,500,Float top-up,2024-01-21,Banco Popular,,Caja Chica,,,DOP`

	rows, errs := ParseTransactions(content)

	require.Empty(t, errs)
	require.Len(t, rows, 3)

	r := rows[0]
	assert.Equal(t, models.TransactionTypeExpense, r.Type)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "Rent January", r.Description)
	assert.Equal(t, "2024-01-15", r.OccurredAt.Format("2006-01-02"))
	assert.Equal(t, "Banco Popular", r.AccountName)
	assert.Equal(t, "Rent", r.CategoryName)
	require.NotNil(t, r.ITBISPct)
	assert.True(t, r.ITBISPct.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, "DOP", r.Currency)

	assert.Nil(t, rows[1].ITBISPct)
	assert.Equal(t, "Caja Chica", rows[2].TransferToAccountName)
}

func TestParseTransactions_RowErrorsReported(t *testing.T) {
	content := `type,amount,description,occurred_at,account_name,category_name,transfer_to_account_name,itbis_pct,notes,currency
loan,10,Bad type,2024-01-15,Cash,Misc,,,,DOP
expense,abc,Bad amount,2024-01-15,Cash,Misc,,,,DOP
expense,10,Bad date,15/01/2024,Cash,Misc,,,,DOP
expense,10,Good,2024-01-15,Cash,Misc,,,,DOP`

	rows, errs := ParseTransactions(content)

	require.Len(t, rows, 1)
	assert.Equal(t, "Good", rows[0].Description)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "row 2")
	assert.Contains(t, errs[0], "unknown type")
	assert.Contains(t, errs[1], "invalid amount")
	assert.Contains(t, errs[2], "invalid occurred_at")
}

func TestParseTransactions_LineNumbersSurviveRejectedRows(t *testing.T) {
	// The row on file line 2 is rejected; the surviving rows must still carry
	// their original file line so importer reports don't collide with the
	// parse error.
	content := `type,amount,description,occurred_at,account_name,category_name,transfer_to_account_name,itbis_pct,notes,currency
loan,10,Bad type,2024-01-15,Cash,Misc,,,,DOP
expense,10,After bad row,2024-01-15,Cash,Misc,,,,DOP
income,20,Last row,2024-01-16,Cash,Sales,,,,DOP`

	rows, errs := ParseTransactions(content)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "row 2")
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, "After bad row", rows[0].Description)
	assert.Equal(t, 4, rows[1].Line)
}

func TestParseTransactions_HeaderOnly(t *testing.T) {
	rows, errs := ParseTransactions(strings.Join(Columns, ",") + "\n")

	assert.Empty(t, rows)
	assert.Empty(t, errs)
}

func TestParseTransactions_Whitespace(t *testing.T) {
	content := ` type , amount , description , occurred_at , account_name , category_name , transfer_to_account_name , itbis_pct , notes , currency
 income , 42.50 , Sale , 2024-02-01 , Cash , Sales , , , , dop `

	rows, errs := ParseTransactions(content)

	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionTypeIncome, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromFloat(42.5)))
	assert.Equal(t, "DOP", rows[0].Currency)
}

func TestWriteTransactions_RoundTrip(t *testing.T) {
	itbis := decimal.NewFromInt(18)
	toID := uint(2)
	txs := []models.Transaction{
		{
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.NewFromFloat(1500),
			Currency:    "DOP",
			Description: "Rent January",
			OccurredAt:  mustDay("2024-01-15"),
			Account:     models.Account{Name: "Banco Popular"},
			Category:    &models.Category{Name: "Rent"},
			ITBISPct:    &itbis,
			Notes:       "office",
		},
		{
			Type:                models.TransactionTypeTransfer,
			Amount:              decimal.NewFromInt(500),
			Currency:            "DOP",
			Description:         "Float top-up",
			OccurredAt:          mustDay("2024-01-21"),
			Account:             models.Account{Name: "Banco Popular"},
			TransferToAccountID: &toID,
			TransferToAccount:   &models.Account{Name: "Caja Chica"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs))

	rows, errs := ParseTransactions(buf.String())
	require.Empty(t, errs)
	require.Len(t, rows, 2)
	assert.Equal(t, "Banco Popular", rows[0].AccountName)
	assert.Equal(t, "Rent", rows[0].CategoryName)
	require.NotNil(t, rows[0].ITBISPct)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "Caja Chica", rows[1].TransferToAccountName)
}

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
