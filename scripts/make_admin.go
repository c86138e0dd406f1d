//go:build ignore

// make_admin.go — one-off script to promote a user to admin.
// Run: go run scripts/make_admin.go user@example.com
package main

import (
	"fmt"
	"log"
	"os"

	"points-market/internal/config"
	"points-market/internal/database"
	"points-market/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/make_admin.go <email>")
		os.Exit(1)
	}
	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("User with email %s not found", email)
	}

	if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
		log.Fatalf("Failed to promote user: %v", err)
	}

	fmt.Printf("%s is now an admin!\n", email)
}
