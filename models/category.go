package models

import "time"

// CategoryType restricts a category to income or expense transactions.
// Categories are never shared between the two sides.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category belongs to one organization. Deletion is blocked while any
// transaction still references it.
type Category struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OrganizationID uint         `gorm:"index;not null;uniqueIndex:idx_org_category_name"`
	Name           string       `gorm:"size:255;not null;uniqueIndex:idx_org_category_name"`
	Type           CategoryType `gorm:"size:16;not null"`
	Color          string       `gorm:"size:16"`
}

// ValidCategoryType reports whether t is income or expense.
func ValidCategoryType(t CategoryType) bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}
