//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/d-g-Szabo/Club-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "club_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	testDB.Exec("DROP TABLE IF EXISTS processed_events")
	testDB.Exec("DROP TABLE IF EXISTS payments")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS sessions")

	if err := testDB.AutoMigrate(
		&models.Session{},
		&models.Booking{},
		&models.Payment{},
		&models.ProcessedEvent{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		ALTER TABLE sessions ADD CONSTRAINT chk_sessions_booked_slots
		CHECK (booked_slots >= 0 AND booked_slots <= capacity)
	`)

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS processed_events")
	testDB.Exec("DROP TABLE IF EXISTS payments")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS sessions")

	os.Exit(code)
}

func cleanTables() {
	testDB.Exec("DELETE FROM processed_events")
	testDB.Exec("DELETE FROM payments")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM sessions")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
