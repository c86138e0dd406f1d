package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Creates the schema on a postgres deployment ahead of first start. The
// sqlite default does not need this; gorm's AutoMigrate covers it.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT UNIQUE,
	password_hash VARCHAR(128),
	points INTEGER NOT NULL DEFAULT 100,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS markets (
	id SERIAL PRIMARY KEY,
	question VARCHAR(200) NOT NULL,
	category VARCHAR(100),
	yes_price DOUBLE PRECISION NOT NULL DEFAULT 50,
	no_price DOUBLE PRECISION NOT NULL DEFAULT 50,
	created_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS purchases (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	market_id INTEGER NOT NULL REFERENCES markets(id),
	outcome VARCHAR(3) NOT NULL,
	amount INTEGER NOT NULL,
	created_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_purchases_user_id ON purchases(user_id);
CREATE INDEX IF NOT EXISTS idx_purchases_market_id ON purchases(market_id);
`

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("Failed to run migration: %v", err)
	}

	log.Println("Migration completed successfully")
}
