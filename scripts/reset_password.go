package main

import (
	"fmt"
	"log"
	"os"

	"surveillance-center/backend/config"
	"surveillance-center/backend/database"
	"surveillance-center/backend/models"
	"surveillance-center/backend/utils"

	"github.com/joho/godotenv"
)

// Resets a user's password from the command line:
//
//	go run scripts/reset_password.go <email> <new-password>
func main() {
	if len(os.Args) != 3 {
		log.Fatalf("usage: %s <email> <new-password>", os.Args[0])
	}
	email, password := os.Args[1], os.Args[2]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found: %v", email, err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user.Password = hashedPassword
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}

	fmt.Printf("Password updated for %s\n", user.Email)
}
