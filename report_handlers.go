package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"budgetup/models"
	"budgetup/pkg/csvio"
	"budgetup/pkg/ledger"
	"budgetup/repository"
)

// filterFromQuery reads the optional listing filters from the query string:
// from/to (YYYY-MM-DD), account_id, category_id, type, q.
func filterFromQuery(c *gin.Context) (repository.TransactionFilter, error) {
	var f repository.TransactionFilter
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, fmt.Errorf("invalid from %q (want YYYY-MM-DD)", s)
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, fmt.Errorf("invalid to %q (want YYYY-MM-DD)", s)
		}
		// Inclusive end date.
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.To = &t
	}
	if s := c.Query("account_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid account_id %q", s)
		}
		id := uint(v)
		f.AccountID = &id
	}
	if s := c.Query("category_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid category_id %q", s)
		}
		id := uint(v)
		f.CategoryID = &id
	}
	if s := c.Query("type"); s != "" {
		t := models.TransactionType(strings.ToLower(s))
		if !models.ValidTransactionType(t) {
			return f, fmt.Errorf("invalid type %q", s)
		}
		f.Type = &t
	}
	f.Search = strings.TrimSpace(c.Query("q"))
	return f, nil
}

// summaryHandler returns the org-wide totals plus the derived balance of every
// account, optionally narrowed by the standard listing filters.
func summaryHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txs, err := repos.Transactions.List(m.OrganizationID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	accounts, err := repos.Accounts.ListByOrganization(m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	balances := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		b, err := repos.Accounts.CurrentBalance(a)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "balance query failed"})
			return
		}
		balances = append(balances, gin.H{"account_id": a.ID, "name": a.Name, "balance": b})
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":   ledger.ComputeTotals(txs),
		"accounts": balances,
	})
}

type monthlyRow struct {
	Month string          `json:"month"`
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// monthlySummaryHandler groups the org's transactions per calendar month and
// type, newest month first.
func monthlySummaryHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var rows []monthlyRow
	err := db.Raw(`
		SELECT to_char(occurred_at, 'YYYY-MM') AS month,
		       type,
		       COALESCE(SUM(amount), 0) AS total,
		       COUNT(*) AS count
		FROM transactions
		WHERE organization_id = ?
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2`, m.OrganizationID).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": rows})
}

// exportTransactionsHandler streams the filtered transaction list as CSV in
// the import template format.
func exportTransactionsHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txs, err := repos.Transactions.List(m.OrganizationID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := csvio.WriteTransactions(c.Writer, txs); err != nil {
		log.Error().Err(err).Msg("csv export write failed")
	}
}

// summaryReportHandler renders the totals as a small standalone HTML page,
// meant for printing or pasting into an email.
func summaryReportHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var org models.Organization
	if err := db.First(&org, m.OrganizationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txs, err := repos.Transactions.List(m.OrganizationID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	totals := ledger.ComputeTotals(txs)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, renderSummaryReport(org, totals, time.Now()))
}

func renderSummaryReport(org models.Organization, t ledger.Totals, now time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s summary</title></head>
<body style="font-family: sans-serif; max-width: 540px; margin: 2em auto;">
  <h2 style="margin-bottom: 0;">%s</h2>
  <p style="color: #666; margin-top: 4px;">Generated %s</p>
  <table style="width: 100%%; border-collapse: collapse;">
    <tr><td style="padding: 6px 0;">Income</td><td style="text-align: right;">%s %s</td></tr>
    <tr><td style="padding: 6px 0;">Expenses</td><td style="text-align: right;">%s %s</td></tr>
    <tr><td style="padding: 6px 0;">Transfers</td><td style="text-align: right;">%s %s</td></tr>
    <tr style="border-top: 1px solid #ccc; font-weight: bold;">
      <td style="padding: 6px 0;">Net</td><td style="text-align: right;">%s %s</td></tr>
  </table>
  <p style="color: #666;">%d transactions</p>
</body>
</html>
`,
		org.Name, org.Name, now.Format("2006-01-02 15:04"),
		org.Currency, t.Income.StringFixed(2),
		org.Currency, t.Expense.StringFixed(2),
		org.Currency, t.Transfer.StringFixed(2),
		org.Currency, t.Net.StringFixed(2),
		t.Count)
}

// importTransactionsHandler accepts a multipart CSV upload in the template
// format, resolves account and category names within the organization, runs
// every row through the draft validator and inserts only the clean ones.
// The response reports per-row outcomes so a partial import is auditable.
func importTransactionsHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer f.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	rows, parseErrs := csvio.ParseTransactions(buf.String())

	accounts, err := repos.Accounts.ListByOrganization(m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	categories, err := repos.Categories.ListByOrganization(m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	accountsByName := make(map[string]uint, len(accounts))
	for _, a := range accounts {
		accountsByName[strings.ToLower(a.Name)] = a.ID
	}
	categoriesByName := make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		categoriesByName[strings.ToLower(cat.Name)] = cat
	}

	var org models.Organization
	if err := db.First(&org, m.OrganizationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	rowErrs := append([]string{}, parseErrs...)
	imported := 0
	for _, row := range rows {
		rowNum := row.Line
		draft := ledger.Draft{
			Type:        row.Type,
			Amount:      row.Amount,
			Currency:    row.Currency,
			Description: row.Description,
			OccurredAt:  row.OccurredAt,
			ITBISPct:    row.ITBISPct,
			Notes:       row.Notes,
		}
		var category *models.Category
		if row.AccountName != "" {
			id, ok := accountsByName[strings.ToLower(row.AccountName)]
			if !ok {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: unknown account %q", rowNum, row.AccountName))
				continue
			}
			draft.AccountID = id
		}
		if row.CategoryName != "" {
			cat, ok := categoriesByName[strings.ToLower(row.CategoryName)]
			if !ok {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: unknown category %q", rowNum, row.CategoryName))
				continue
			}
			draft.CategoryID = &cat.ID
			category = &cat
		}
		if row.TransferToAccountName != "" {
			id, ok := accountsByName[strings.ToLower(row.TransferToAccountName)]
			if !ok {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: unknown account %q", rowNum, row.TransferToAccountName))
				continue
			}
			draft.TransferToAccountID = &id
		}
		draft = draft.Normalize(org.Currency)
		if verrs := ledger.ValidateDraft(draft, category); len(verrs) > 0 {
			for _, ve := range verrs {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", rowNum, ve))
			}
			continue
		}
		tx := models.Transaction{OrganizationID: m.OrganizationID, CreatedByUserID: m.UserID}
		ledger.ApplyDraft(&tx, draft)
		if err := repos.Transactions.Create(&tx); err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: insert failed", rowNum))
			continue
		}
		imported++
	}

	log.Info().
		Uint("org_id", m.OrganizationID).
		Int("imported", imported).
		Int("errors", len(rowErrs)).
		Msg("csv import finished")

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"errors":   rowErrs,
	})
}
