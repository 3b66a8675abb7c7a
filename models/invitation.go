package models

import "time"

// Invitation is a pending offer to join an organization. The token is a
// random UUID handed to the invitee; accepting it creates a Membership.
type Invitation struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OrganizationID  uint   `gorm:"index;not null"`
	Email           string `gorm:"size:255;not null"`
	Role            string `gorm:"size:32;not null;default:member"`
	Token           string `gorm:"size:64;not null;uniqueIndex"`
	InvitedByUserID uint   `gorm:"not null"`
	ExpiresAt       time.Time
	AcceptedAt      *time.Time
	Organization    Organization `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
