package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetup/models"
	"budgetup/pkg/ledger"
)

type accountRepo struct {
	db    *gorm.DB
	cache *BalanceCache
}

func (r *accountRepo) Create(a *models.Account) error {
	return r.db.Create(a).Error
}

func (r *accountRepo) Update(a *models.Account) error {
	if err := r.db.Save(a).Error; err != nil {
		return err
	}
	// InitialBalance may have changed; the derived balance must follow.
	r.cache.Invalidate(a.ID)
	return nil
}

func (r *accountRepo) Delete(id, orgID uint) error {
	var count int64
	if err := r.db.Model(&models.Transaction{}).
		Where("account_id = ? OR transfer_to_account_id = ?", id, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ledger.ValidationError{Kind: ledger.KindReferentialDeleteBlocked, Field: "account_id"}
	}
	res := r.db.Where("organization_id = ?", orgID).Delete(&models.Account{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.Invalidate(id)
	return nil
}

func (r *accountRepo) GetByID(id, orgID uint) (models.Account, error) {
	var a models.Account
	err := r.db.Where("organization_id = ?", orgID).First(&a, id).Error
	return a, err
}

func (r *accountRepo) ListByOrganization(orgID uint) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("organization_id = ?", orgID).Order("name").Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) CurrentBalance(a models.Account) (decimal.Decimal, error) {
	if b, ok := r.cache.Get(a.ID); ok {
		return b, nil
	}
	var txs []models.Transaction
	if err := r.db.
		Where("account_id = ? OR transfer_to_account_id = ?", a.ID, a.ID).
		Find(&txs).Error; err != nil {
		return decimal.Zero, err
	}
	b := ledger.AccountBalance(a, txs)
	r.cache.Put(a.ID, b)
	return b, nil
}
