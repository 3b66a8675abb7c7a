package models

import "time"

// Organization is the tenant boundary: every account, category and
// transaction belongs to exactly one organization.
type Organization struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:255;not null"`
	// Currency is the organization default (ISO 4217), applied to new
	// accounts and CSV rows that omit one.
	Currency string `gorm:"size:3;not null;default:DOP"`
}
