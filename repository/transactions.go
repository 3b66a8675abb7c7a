package repository

import (
	"gorm.io/gorm"

	"budgetup/models"
)

type transactionRepo struct {
	db    *gorm.DB
	cache *BalanceCache
}

// touched collects the account IDs a row moves money through.
func touched(txs ...models.Transaction) []uint {
	var ids []uint
	for _, tx := range txs {
		if tx.AccountID != 0 {
			ids = append(ids, tx.AccountID)
		}
		if tx.TransferToAccountID != nil {
			ids = append(ids, *tx.TransferToAccountID)
		}
	}
	return ids
}

func (r *transactionRepo) Create(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return err
	}
	r.cache.Invalidate(touched(*tx)...)
	return nil
}

func (r *transactionRepo) Update(tx *models.Transaction) error {
	// The previous version may have touched different accounts; both the old
	// and the new ones need a fresh derivation.
	var old models.Transaction
	if err := r.db.First(&old, tx.ID).Error; err != nil {
		return err
	}
	if err := r.db.Save(tx).Error; err != nil {
		return err
	}
	r.cache.Invalidate(touched(old, *tx)...)
	return nil
}

func (r *transactionRepo) Delete(id, orgID uint) error {
	var old models.Transaction
	if err := r.db.Where("organization_id = ?", orgID).First(&old, id).Error; err != nil {
		return err
	}
	if err := r.db.Delete(&models.Transaction{}, id).Error; err != nil {
		return err
	}
	r.cache.Invalidate(touched(old)...)
	return nil
}

func (r *transactionRepo) GetByID(id, orgID uint) (models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("organization_id = ?", orgID).
		Preload("Account").Preload("Category").Preload("TransferToAccount").
		First(&tx, id).Error
	return tx, err
}

func (r *transactionRepo) List(orgID uint, f TransactionFilter) ([]models.Transaction, error) {
	q := r.db.Where("organization_id = ?", orgID)
	if f.From != nil {
		q = q.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("occurred_at <= ?", *f.To)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ? OR transfer_to_account_id = ?", *f.AccountID, *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("description ILIKE ? OR notes ILIKE ?", like, like)
	}
	var txs []models.Transaction
	err := q.Preload("Account").Preload("Category").Preload("TransferToAccount").
		Order("occurred_at desc, id desc").Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) ListForAccount(accountID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.
		Where("account_id = ? OR transfer_to_account_id = ?", accountID, accountID).
		Find(&txs).Error
	return txs, err
}
