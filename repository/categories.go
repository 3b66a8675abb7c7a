package repository

import (
	"gorm.io/gorm"

	"budgetup/models"
	"budgetup/pkg/ledger"
)

type categoryRepo struct {
	db *gorm.DB
}

func (r *categoryRepo) Create(c *models.Category) error {
	return r.db.Create(c).Error
}

func (r *categoryRepo) Update(c *models.Category) error {
	return r.db.Save(c).Error
}

func (r *categoryRepo) Delete(id, orgID uint) error {
	var count int64
	if err := r.db.Model(&models.Transaction{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ledger.ValidationError{Kind: ledger.KindReferentialDeleteBlocked, Field: "category_id"}
	}
	res := r.db.Where("organization_id = ?", orgID).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepo) GetByID(id, orgID uint) (models.Category, error) {
	var c models.Category
	err := r.db.Where("organization_id = ?", orgID).First(&c, id).Error
	return c, err
}

func (r *categoryRepo) ListByOrganization(orgID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("organization_id = ?", orgID).Order("type, name").Find(&categories).Error
	return categories, err
}
