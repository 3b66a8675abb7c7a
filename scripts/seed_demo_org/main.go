// Seeds a demo organization with a month of sample bookkeeping so the UI has
// something to show. Safe to rerun; it skips when the demo org already exists.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"budgetup/models"
)

const demoOrgName = "Colmado La Esquina"

func main() {
	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var existing models.Organization
	if err := db.Where("name = ?", demoOrgName).First(&existing).Error; err == nil {
		fmt.Printf("demo org already exists (id=%d), nothing to do\n", existing.ID)
		return
	}

	hpw, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	user := models.User{Email: "demo@example.com", Name: "Demo Owner", HashedPassword: hpw}
	if err := db.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
		log.Fatalf("create demo user: %v", err)
	}

	org := models.Organization{Name: demoOrgName, Currency: "DOP"}
	if err := db.Create(&org).Error; err != nil {
		log.Fatalf("create demo org: %v", err)
	}
	if err := db.Create(&models.Membership{UserID: user.ID, OrganizationID: org.ID, Role: models.RoleOwner}).Error; err != nil {
		log.Fatalf("create membership: %v", err)
	}

	caja := models.Account{OrganizationID: org.ID, Name: "Caja", Type: models.AccountTypeCash, Currency: "DOP", InitialBalance: dec("5000")}
	banco := models.Account{OrganizationID: org.ID, Name: "Banco Popular", Type: models.AccountTypeBank, Currency: "DOP", InitialBalance: dec("25000")}
	for _, a := range []*models.Account{&caja, &banco} {
		if err := db.Create(a).Error; err != nil {
			log.Fatalf("create account %s: %v", a.Name, err)
		}
	}

	ventas := models.Category{OrganizationID: org.ID, Name: "Ventas", Type: models.CategoryTypeIncome, Color: "#2e7d32"}
	alquiler := models.Category{OrganizationID: org.ID, Name: "Alquiler", Type: models.CategoryTypeExpense, Color: "#c62828"}
	suministros := models.Category{OrganizationID: org.ID, Name: "Suministros", Type: models.CategoryTypeExpense, Color: "#ef6c00"}
	for _, c := range []*models.Category{&ventas, &alquiler, &suministros} {
		if err := db.Create(c).Error; err != nil {
			log.Fatalf("create category %s: %v", c.Name, err)
		}
	}

	start := time.Now().AddDate(0, -1, 0)
	itbis := dec("18")
	txs := []models.Transaction{
		{Type: models.TransactionTypeIncome, Amount: dec("12500.00"), Description: "Ventas semana 1", OccurredAt: start, AccountID: caja.ID, CategoryID: &ventas.ID},
		{Type: models.TransactionTypeIncome, Amount: dec("9800.00"), Description: "Ventas semana 2", OccurredAt: start.AddDate(0, 0, 7), AccountID: caja.ID, CategoryID: &ventas.ID},
		{Type: models.TransactionTypeExpense, Amount: dec("8000.00"), Description: "Alquiler del local", OccurredAt: start.AddDate(0, 0, 2), AccountID: banco.ID, CategoryID: &alquiler.ID},
		{Type: models.TransactionTypeExpense, Amount: dec("3540.00"), Description: "Mercancía distribuidora", OccurredAt: start.AddDate(0, 0, 9), AccountID: caja.ID, CategoryID: &suministros.ID, ITBISPct: &itbis},
		{Type: models.TransactionTypeTransfer, Amount: dec("10000.00"), Description: "Depósito de efectivo", OccurredAt: start.AddDate(0, 0, 10), AccountID: caja.ID, TransferToAccountID: &banco.ID},
	}
	for i := range txs {
		txs[i].OrganizationID = org.ID
		txs[i].Currency = "DOP"
		txs[i].CreatedByUserID = user.ID
		if err := db.Create(&txs[i]).Error; err != nil {
			log.Fatalf("create transaction %d: %v", i, err)
		}
	}

	fmt.Printf("seeded %q id=%d with %d transactions (login demo@example.com / demo1234)\n", org.Name, org.ID, len(txs))
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
