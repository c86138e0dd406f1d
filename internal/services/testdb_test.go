package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"points-market/internal/models"
)

// Shared in-memory database. _txlock=immediate makes concurrent write
// transactions queue on the sqlite write lock instead of deadlocking, which
// the concurrent-buy test relies on.
const testDSN = "file:servicetest?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(testDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.Purchase{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// Clean all tables
	db.Exec("DELETE FROM purchases")
	db.Exec("DELETE FROM markets")
	db.Exec("DELETE FROM users")

	return db
}
