package main

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"budgetup/models"
	"budgetup/pkg/receipt"
)

const maxAttachmentSize = 5 << 20 // 5MB

// minimum OCR confidence before a suggested amount is worth showing
const suggestionThreshold = 0.15

var allowedAttachmentExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// uploadAttachmentHandler stores a receipt file under the org's upload
// directory and, for images, tries to read the total amount off it. The OCR
// result is only a suggestion in the response; nothing is booked
// automatically.
func uploadAttachmentHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedAttachmentExt[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	var txID *uint
	if s := c.PostForm("transaction_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_id"})
			return
		}
		id := uint(v)
		if _, err := repos.Transactions.GetByID(id, m.OrganizationID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		txID = &id
	}

	orgDir := filepath.Join(uploadBaseDir(), fmt.Sprintf("org_%d", m.OrganizationID))
	if err := os.MkdirAll(orgDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}
	storeName := uuid.NewString() + ext
	storePath := filepath.Join(orgDir, storeName)
	if err := c.SaveUploadedFile(fileHeader, storePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	if contentType != "application/pdf" {
		shrinkStoredImage(storePath)
	}

	att := models.Attachment{
		OrganizationID: m.OrganizationID,
		FileName:       fileHeader.Filename,
		StorePath:      storePath,
		ContentType:    contentType,
		TransactionID:  txID,
		UploadedBy:     m.UserID,
	}

	resp := gin.H{}
	if contentType != "application/pdf" {
		amount, conf, snippet, err := receipt.ExtractAmountFromImage(storePath)
		switch {
		case err != nil:
			att.Failed = true
			att.FailedReason = err.Error()
			log.Warn().Err(err).Str("file", fileHeader.Filename).Msg("receipt OCR failed")
		case conf >= suggestionThreshold:
			resp["suggested_amount"] = amount
			resp["ocr_confidence"] = conf
			resp["ocr_snippet"] = snippet
		default:
			log.Debug().Float64("confidence", conf).Str("file", fileHeader.Filename).
				Msg("receipt OCR below suggestion threshold")
		}
	}

	if err := db.Create(&att).Error; err != nil {
		os.Remove(storePath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	resp["id"] = att.ID
	resp["file_name"] = att.FileName
	c.JSON(http.StatusOK, resp)
}

// shrinkStoredImage rewrites an oversized stored image scaled down toward a
// 1MB budget. Size scales roughly with pixel area, so the scale factor is
// the square root of the byte ratio. Failures leave the original in place.
func shrinkStoredImage(path string) {
	const maxBytes = 1 << 20
	fi, err := os.Stat(path)
	if err != nil || fi.Size() <= maxBytes {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		return
	}
	scale := math.Sqrt(float64(maxBytes) / float64(fi.Size()))
	if scale > 0.95 {
		scale = 0.95
	}
	if scale < 0.1 {
		scale = 0.1
	}
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(img.Bounds().Dy())*scale)))
	img = imaging.Resize(img, w, h, imaging.Lanczos)
	if err := imaging.Save(img, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to shrink stored image")
	}
}

func listAttachmentsHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var atts []models.Attachment
	q := db.Where("organization_id = ?", m.OrganizationID).Order("created_at desc")
	if s := c.Query("transaction_id"); s != "" {
		q = q.Where("transaction_id = ?", s)
	}
	if err := q.Find(&atts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, atts)
}

// getAttachmentHandler serves the stored file itself, org-scoped.
func getAttachmentHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var att models.Attachment
	err := db.Where("id = ? AND organization_id = ?", paramUint(c, "attachment_id"), m.OrganizationID).
		First(&att).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Header("Content-Type", att.ContentType)
	c.File(att.StorePath)
}
