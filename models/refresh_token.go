package models

import "time"

// RefreshToken backs the /refresh and /revoke_refresh endpoints. Only the
// sha256 of the raw token is stored; each successful refresh revokes the row
// and issues a new one.
type RefreshToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint      `gorm:"index;not null"`
	TokenHash string    `gorm:"size:128;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"default:false"`
}
