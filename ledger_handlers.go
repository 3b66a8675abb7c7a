package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetup/models"
	"budgetup/pkg/ledger"
)

// --- accounts ---

type accountRequest struct {
	Name           string           `json:"name" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	Currency       string           `json:"currency"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

func createAccountHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidAccountType(models.AccountType(req.Type)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be cash, bank or credit_card"})
		return
	}
	var org models.Organization
	if err := db.First(&org, m.OrganizationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = org.Currency
	}
	initial := decimal.Zero
	if req.InitialBalance != nil {
		initial = *req.InitialBalance
	}
	a := models.Account{
		OrganizationID: m.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Type:           models.AccountType(req.Type),
		Currency:       currency,
		InitialBalance: initial,
	}
	if err := repos.Accounts.Create(&a); err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "account name already used"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID})
}

func listAccountsHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	accounts, err := repos.Accounts.ListByOrganization(m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		balance, err := repos.Accounts.CurrentBalance(a)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "balance query failed"})
			return
		}
		out = append(out, gin.H{
			"id":              a.ID,
			"name":            a.Name,
			"type":            a.Type,
			"currency":        a.Currency,
			"initial_balance": a.InitialBalance,
			"current_balance": balance,
		})
	}
	c.JSON(http.StatusOK, out)
}

func updateAccountHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	a, err := repos.Accounts.GetByID(paramUint(c, "account_id"), m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidAccountType(models.AccountType(req.Type)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be cash, bank or credit_card"})
		return
	}
	a.Name = strings.TrimSpace(req.Name)
	a.Type = models.AccountType(req.Type)
	if req.Currency != "" {
		a.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	}
	if req.InitialBalance != nil {
		a.InitialBalance = *req.InitialBalance
	}
	if err := repos.Accounts.Update(&a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID})
}

func deleteAccountHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	err := repos.Accounts.Delete(paramUint(c, "account_id"), m.OrganizationID)
	if err != nil {
		if respondLedgerError(c, err) {
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// --- categories ---

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Color string `json:"color"`
}

func createCategoryHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidCategoryType(models.CategoryType(req.Type)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}
	cat := models.Category{
		OrganizationID: m.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Type:           models.CategoryType(req.Type),
		Color:          req.Color,
	}
	if err := repos.Categories.Create(&cat); err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "category name already used"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cat.ID})
}

func listCategoriesHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	categories, err := repos.Categories.ListByOrganization(m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func updateCategoryHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	cat, err := repos.Categories.GetByID(paramUint(c, "category_id"), m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidCategoryType(models.CategoryType(req.Type)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}
	if models.CategoryType(req.Type) != cat.Type {
		// Changing a category's side would silently flip the meaning of every
		// transaction attached to it; require a reference check first.
		var cnt int64
		db.Model(&models.Transaction{}).Where("category_id = ?", cat.ID).Count(&cnt)
		if cnt > 0 {
			c.JSON(http.StatusConflict, gin.H{"errors": []*ledger.ValidationError{
				{Kind: ledger.KindCategoryTypeMismatch, Field: "type"},
			}})
			return
		}
		cat.Type = models.CategoryType(req.Type)
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.Color = req.Color
	if err := repos.Categories.Update(&cat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cat.ID})
}

func deleteCategoryHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	err := repos.Categories.Delete(paramUint(c, "category_id"), m.OrganizationID)
	if err != nil {
		if respondLedgerError(c, err) {
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// --- transactions ---

type transactionRequest struct {
	Type                string           `json:"type" binding:"required"`
	Amount              decimal.Decimal  `json:"amount"`
	Currency            string           `json:"currency"`
	Description         string           `json:"description"`
	OccurredAt          string           `json:"occurred_at"` // YYYY-MM-DD
	AccountID           uint             `json:"account_id"`
	CategoryID          *uint            `json:"category_id"`
	TransferToAccountID *uint            `json:"transfer_to_account_id"`
	ITBISPct            *decimal.Decimal `json:"itbis_pct"`
	Notes               string           `json:"notes"`
}

// draftFromRequest builds and validates a ledger draft: org-scoped reference
// checks first (account, transfer target, category must exist in this org),
// then the pure type-dependent rules. Returns the validation errors to send,
// or the ready draft.
func draftFromRequest(orgID uint, req transactionRequest) (ledger.Draft, []*ledger.ValidationError, error) {
	var occurredAt time.Time
	if req.OccurredAt != "" {
		t, err := time.Parse("2006-01-02", req.OccurredAt)
		if err != nil {
			if t2, err2 := time.Parse(time.RFC3339, req.OccurredAt); err2 == nil {
				t = t2
			} else {
				return ledger.Draft{}, []*ledger.ValidationError{
					{Kind: ledger.KindMissingRequiredField, Field: "occurred_at"},
				}, nil
			}
		}
		occurredAt = t
	}

	var org models.Organization
	if err := db.First(&org, orgID).Error; err != nil {
		return ledger.Draft{}, nil, err
	}

	draft := ledger.Draft{
		Type:                models.TransactionType(req.Type),
		Amount:              req.Amount,
		Currency:            req.Currency,
		Description:         req.Description,
		OccurredAt:          occurredAt,
		AccountID:           req.AccountID,
		CategoryID:          req.CategoryID,
		TransferToAccountID: req.TransferToAccountID,
		ITBISPct:            req.ITBISPct,
		Notes:               req.Notes,
	}.Normalize(org.Currency)

	// Resolve references within the organization. A reference to another
	// org's row is indistinguishable from a missing one on purpose.
	if draft.AccountID != 0 {
		if _, err := repos.Accounts.GetByID(draft.AccountID, orgID); err != nil {
			return draft, []*ledger.ValidationError{
				{Kind: ledger.KindMissingRequiredField, Field: "account_id"},
			}, nil
		}
	}
	if draft.TransferToAccountID != nil {
		if _, err := repos.Accounts.GetByID(*draft.TransferToAccountID, orgID); err != nil {
			return draft, []*ledger.ValidationError{
				{Kind: ledger.KindMissingRequiredField, Field: "transfer_to_account_id"},
			}, nil
		}
	}
	var category *models.Category
	if draft.CategoryID != nil {
		cat, err := repos.Categories.GetByID(*draft.CategoryID, orgID)
		if err != nil {
			return draft, []*ledger.ValidationError{
				{Kind: ledger.KindMissingRequiredField, Field: "category_id"},
			}, nil
		}
		category = &cat
	}

	if errs := ledger.ValidateDraft(draft, category); len(errs) > 0 {
		return draft, errs, nil
	}
	return draft, nil, nil
}

func createTransactionHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, verrs, err := draftFromRequest(m.OrganizationID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}
	tx := models.Transaction{OrganizationID: m.OrganizationID, CreatedByUserID: m.UserID}
	ledger.ApplyDraft(&tx, draft)
	if err := repos.Transactions.Create(&tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tx.ID})
}

func updateTransactionHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	tx, err := repos.Transactions.GetByID(paramUint(c, "tx_id"), m.OrganizationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Same rules on update as on create: a type switch must arrive with its
	// cross-type fields already cleared.
	draft, verrs, err := draftFromRequest(m.OrganizationID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}
	ledger.ApplyDraft(&tx, draft)
	tx.Account = models.Account{}
	tx.Category = nil
	tx.TransferToAccount = nil
	if err := repos.Transactions.Update(&tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tx.ID})
}

func deleteTransactionHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	if err := repos.Transactions.Delete(paramUint(c, "tx_id"), m.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}

func listTransactionsHandler(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"totals":       ledger.ComputeTotals(txs),
	})
}
