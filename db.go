package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"budgetup/models"
	"budgetup/repository"
)

var db *gorm.DB
var repos *repository.Repositories

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres database")
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		// Order matters only for FKs: tenancy first, then ledger tables.
		for _, m := range []interface{}{
			&models.User{},
			&models.Organization{},
			&models.Membership{},
			&models.RefreshToken{},
			&models.Invitation{},
			&models.Account{},
			&models.Category{},
			&models.Transaction{},
			&models.Attachment{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Warn().Err(err).Msgf("migration warning (%T)", m)
			}
		}
	}
	repos = repository.New(db)
	seedDB()
}

func seedDB() {
	// Seed an owner with a demo organization so a fresh instance is usable.
	var count int64
	db.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&count)
	if count == 0 {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin := models.User{Email: "admin@example.com", Name: "Administrator", HashedPassword: hashedPassword}
		if err := db.Create(&admin).Error; err != nil {
			log.Warn().Err(err).Msg("failed to seed admin user")
			return
		}
		org := models.Organization{Name: "Demo SRL", Currency: "DOP"}
		if err := db.Create(&org).Error; err != nil {
			log.Warn().Err(err).Msg("failed to seed demo organization")
			return
		}
		db.Create(&models.Membership{UserID: admin.ID, OrganizationID: org.ID, Role: models.RoleOwner})
		seedDefaults(org)
		log.Info().Msg("Seeded admin user: email=admin@example.com, password=admin123")
	}
	ensureUploadBase()
}

// seedDefaults creates the starter accounts and categories every new
// organization gets.
func seedDefaults(org models.Organization) {
	accounts := []models.Account{
		{OrganizationID: org.ID, Name: "Caja", Type: models.AccountTypeCash, Currency: org.Currency, InitialBalance: decimal.Zero},
		{OrganizationID: org.ID, Name: "Banco", Type: models.AccountTypeBank, Currency: org.Currency, InitialBalance: decimal.Zero},
	}
	for _, a := range accounts {
		var cnt int64
		db.Model(&models.Account{}).Where("organization_id = ? AND name = ?", org.ID, a.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&a)
		}
	}
	categories := []models.Category{
		{OrganizationID: org.ID, Name: "Ventas", Type: models.CategoryTypeIncome, Color: "#2e7d32"},
		{OrganizationID: org.ID, Name: "Servicios", Type: models.CategoryTypeIncome, Color: "#1565c0"},
		{OrganizationID: org.ID, Name: "Alquiler", Type: models.CategoryTypeExpense, Color: "#c62828"},
		{OrganizationID: org.ID, Name: "Suministros", Type: models.CategoryTypeExpense, Color: "#ef6c00"},
	}
	for _, c := range categories {
		var cnt int64
		db.Model(&models.Category{}).Where("organization_id = ? AND name = ?", org.ID, c.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&c)
		}
	}
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Warn().Err(err).Msgf("failed to create upload base dir %s", base)
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
