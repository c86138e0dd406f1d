package database

import (
	"fmt"
	"log"

	"points-market/internal/config"
	"points-market/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a database connection. The sqlite driver is the
// embedded default; postgres is selected via DB_DRIVER for server deploys.
func Connect(cfg *config.Config) error {
	var (
		dialector gorm.Dialector
		err       error
	)

	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	default:
		dialector = sqlite.Open(cfg.Database.Path)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	coreModels := []interface{}{
		&models.User{},
		&models.Market{},
		&models.Purchase{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
