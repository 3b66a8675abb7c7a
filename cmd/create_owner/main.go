package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"budgetup/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_owner <email> <password> <org-name> [currency]")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))
	password := os.Args[2]
	orgName := os.Args[3]
	currency := "DOP"
	if len(os.Args) > 4 {
		currency = strings.ToUpper(os.Args[4])
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// reuse an existing user with this email
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("bcrypt failed: %v", err)
		}
		user = models.User{Email: email, Name: email, HashedPassword: hpw}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
		fmt.Printf("created user %s id=%d\n", email, user.ID)
	} else {
		fmt.Printf("user %s already exists (id=%d)\n", email, user.ID)
	}

	org := models.Organization{Name: orgName, Currency: currency}
	if err := db.Create(&org).Error; err != nil {
		log.Fatalf("failed to create organization: %v", err)
	}
	membership := models.Membership{UserID: user.ID, OrganizationID: org.ID, Role: models.RoleOwner}
	if err := db.Create(&membership).Error; err != nil {
		log.Fatalf("failed to create membership: %v", err)
	}
	fmt.Printf("created organization %q id=%d owned by %s\n", org.Name, org.ID, email)
}
