// Package csvio reads and writes the BudgetUp transaction CSV template:
//
//	type,amount,description,occurred_at,account_name,category_name,transfer_to_account_name,itbis_pct,notes,currency
//
// Parsing only gets rows into shape; every parsed row must still pass the
// ledger validator before insertion.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetup/models"
)

// Columns is the canonical header, in order.
var Columns = []string{
	"type", "amount", "description", "occurred_at",
	"account_name", "category_name", "transfer_to_account_name",
	"itbis_pct", "notes", "currency",
}

const dateLayout = "2006-01-02"

// Row is one parsed CSV line. Account and category references are by name;
// the importer resolves them within the organization. Line is the 1-based
// file line the row came from, so importers can report outcomes against the
// source file even when earlier lines were rejected during parsing.
type Row struct {
	Line                  int
	Type                  models.TransactionType
	Amount                decimal.Decimal
	Description           string
	OccurredAt            time.Time
	AccountName           string
	CategoryName          string
	TransferToAccountName string
	ITBISPct              *decimal.Decimal
	Notes                 string
	Currency              string
}

// ParseTransactions parses rows from CSV content.
// It returns the well-formed rows and a list of error messages for invalid ones.
func ParseTransactions(content string) ([]Row, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("failed to read CSV: %v", err)}
	}
	if len(records) < 2 {
		return []Row{}, nil // empty or header-only
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []Row
	var errors []string
	for i, record := range records[1:] {
		rowNum := i + 2
		rowMap := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(record) {
				rowMap[header] = strings.TrimSpace(record[j])
			}
		}
		r, err := mapToRow(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		r.Line = rowNum
		rows = append(rows, *r)
	}
	return rows, errors
}

func mapToRow(row map[string]string) (*Row, error) {
	typ := models.TransactionType(strings.ToLower(row["type"]))
	if row["type"] == "" {
		return nil, fmt.Errorf("missing type")
	}
	if !models.ValidTransactionType(typ) {
		return nil, fmt.Errorf("unknown type %q", row["type"])
	}

	amountStr := row["amount"]
	if amountStr == "" {
		return nil, fmt.Errorf("missing amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amountStr)
	}

	dateStr := row["occurred_at"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing occurred_at")
	}
	occurredAt, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at %q (want YYYY-MM-DD)", dateStr)
	}

	var itbis *decimal.Decimal
	if s := row["itbis_pct"]; s != "" {
		pct, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid itbis_pct %q", s)
		}
		itbis = &pct
	}

	return &Row{
		Type:                  typ,
		Amount:                amount,
		Description:           row["description"],
		OccurredAt:            occurredAt,
		AccountName:           row["account_name"],
		CategoryName:          row["category_name"],
		TransferToAccountName: row["transfer_to_account_name"],
		ITBISPct:              itbis,
		Notes:                 row["notes"],
		Currency:              strings.ToUpper(row["currency"]),
	}, nil
}

// WriteTransactions writes transactions in the template format. Account,
// Category and TransferToAccount relations must be preloaded so names can be
// emitted.
func WriteTransactions(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, tx := range txs {
		categoryName := ""
		if tx.Category != nil {
			categoryName = tx.Category.Name
		}
		transferTo := ""
		if tx.TransferToAccount != nil {
			transferTo = tx.TransferToAccount.Name
		}
		itbis := ""
		if tx.ITBISPct != nil {
			itbis = tx.ITBISPct.String()
		}
		record := []string{
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.Description,
			tx.OccurredAt.Format(dateLayout),
			tx.Account.Name,
			categoryName,
			transferTo,
			itbis,
			tx.Notes,
			tx.Currency,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
