package main

import (
	"log"
	"os"

	"vendora/internal/config"
	"vendora/internal/models"
	"vendora/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err != nil {
				log.Printf("Failed to get SQL DB instance: %v", err)
			} else if err := sqlDB.Close(); err != nil {
				log.Printf("Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close Redis connection: %v", err)
			}
		}
	}()

	if err := repositories.NewSettingsRepository(repositories.DB).Seed(); err != nil {
		log.Fatal("Failed to seed platform settings:", err)
	}

	var existingAdmin models.User
	result := repositories.DB.Where("email = ?", adminEmail).First(&existingAdmin)
	if result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := models.User{
		Email:      adminEmail,
		Password:   string(hashedPassword),
		Name:       "Platform Admin",
		Role:       "admin",
		UserType:   "customer",
		InviteCode: uuid.NewString()[:8],
	}

	if err := repositories.DB.Create(&adminUser).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}
	account := models.Account{UserID: adminUser.ID}
	if err := repositories.DB.Create(&account).Error; err != nil {
		log.Fatal("Failed to create admin account:", err)
	}

	log.Printf("Admin user created with ID %d", adminUser.ID)
}
