package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"budgetup/models"
)

// requireMembership loads the caller's membership in the :id organization.
// Writes the HTTP error itself; callers just bail on !ok.
func requireMembership(c *gin.Context, roles ...string) (*models.Membership, bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	orgID := paramUint(c, "id")
	if orgID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return nil, false
	}
	var m models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", user.ID, orgID).First(&m).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this organization"})
		return nil, false
	}
	if len(roles) > 0 {
		allowed := false
		for _, r := range roles {
			if m.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return nil, false
		}
	}
	return &m, true
}

func createOrgHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name     string `json:"name" binding:"required"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "DOP"
	}
	org := models.Organization{Name: strings.TrimSpace(req.Name), Currency: currency}
	if err := db.Create(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	membership := models.Membership{UserID: user.ID, OrganizationID: org.ID, Role: models.RoleOwner}
	if err := db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership create failed"})
		return
	}
	seedDefaults(org)
	c.JSON(http.StatusOK, gin.H{"id": org.ID, "name": org.Name, "currency": org.Currency})
}

func listOrgsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var memberships []models.Membership
	if err := db.Preload("Organization").Where("user_id = ?", user.ID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, gin.H{
			"id":       m.OrganizationID,
			"name":     m.Organization.Name,
			"currency": m.Organization.Currency,
			"role":     m.Role,
		})
	}
	c.JSON(http.StatusOK, out)
}

func getOrgHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var org models.Organization
	if err := db.First(&org, m.OrganizationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": org.ID, "name": org.Name, "currency": org.Currency, "role": m.Role})
}

func listMembersHandler(c *gin.Context) {
	m, ok := requireMembership(c)
	if !ok {
		return
	}
	var memberships []models.Membership
	if err := db.Preload("User").Where("organization_id = ?", m.OrganizationID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(memberships))
	for _, mm := range memberships {
		out = append(out, gin.H{"user_id": mm.UserID, "email": mm.User.Email, "name": mm.User.Name, "role": mm.Role})
	}
	c.JSON(http.StatusOK, out)
}

func createInvitationHandler(c *gin.Context) {
	m, ok := requireMembership(c, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or member"})
		return
	}
	inv := models.Invitation{
		OrganizationID:  m.OrganizationID,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Role:            role,
		Token:           uuid.NewString(),
		InvitedByUserID: m.UserID,
		ExpiresAt:       time.Now().Add(7 * 24 * time.Hour),
	}
	if err := db.Create(&inv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	var org models.Organization
	if err := db.First(&org, m.OrganizationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	body := renderInvitationEmail(org.Name, inv.Token)
	// Mail delivery is an operator concern; the rendered body is returned so
	// the front-end (or an SMTP relay script) can send it.
	log.Info().Str("email", inv.Email).Uint("org", org.ID).Msg("invitation created")
	c.JSON(http.StatusOK, gin.H{"id": inv.ID, "token": inv.Token, "expires_at": inv.ExpiresAt, "email_body": body})
}

func acceptInvitationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var inv models.Invitation
	if err := db.Where("token = ?", req.Token).First(&inv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}
	if inv.AcceptedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "invitation already accepted"})
		return
	}
	if time.Now().After(inv.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "invitation expired"})
		return
	}
	var existing models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", user.ID, inv.OrganizationID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already a member"})
		return
	}
	membership := models.Membership{UserID: user.ID, OrganizationID: inv.OrganizationID, Role: inv.Role}
	if err := db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership create failed"})
		return
	}
	now := time.Now()
	inv.AcceptedAt = &now
	db.Save(&inv)
	c.JSON(http.StatusOK, gin.H{"organization_id": inv.OrganizationID, "role": inv.Role})
}

// renderInvitationEmail renders the invitation email body HTML.
func renderInvitationEmail(orgName, token string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden;">
				<div style="background-color: #1565c0; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">You are invited to %s</h2>
				</div>
				<div style="padding: 20px;">
					<p>You have been invited to join <strong>%s</strong> on BudgetUp.</p>
					<p>Use this invitation code after signing in:</p>
					<p style="font-size: 18px; font-family: monospace; background: #f0f0f0; padding: 10px; text-align: center;">%s</p>
					<p>The invitation expires in 7 days.</p>
				</div>
			</div>
		</body>
		</html>
	`, orgName, orgName, token)
}
