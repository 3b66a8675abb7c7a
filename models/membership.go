package models

import "time"

// Role names for organization memberships. Owners and admins manage
// accounts/categories/members; any member records transactions.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership links a user to an organization with a role.
type Membership struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint         `gorm:"index;not null;uniqueIndex:idx_user_org"`
	OrganizationID uint         `gorm:"index;not null;uniqueIndex:idx_user_org"`
	Role           string       `gorm:"size:32;not null;default:member"`
	User           User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Organization   Organization `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
