package models

import (
	"time"
)

// Attachment is a receipt file stored for an organization, optionally linked
// to a transaction once the upload is booked.
type Attachment struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OrganizationID uint   `gorm:"index;not null"`
	FileName       string `gorm:"size:255;not null"`
	StorePath      string `gorm:"column:store_path;size:512"` // path under the upload base dir
	ContentType    string `gorm:"size:128"`
	TransactionID  *uint  `gorm:"index"` // FK to transactions.id (nullable until linked)
	UploadedBy     uint   `gorm:"column:uploaded_by_user_id;index"`
	// Mark attachment as failed for OCR processing (do not delete record so front-end/admin can review)
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
