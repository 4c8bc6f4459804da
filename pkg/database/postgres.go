package database

import (
	"log"

	"github.com/d-g-Szabo/Club-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Session{},
		&models.Booking{},
		&models.Payment{},
		&models.ProcessedEvent{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// The capacity invariant is enforced by the database, not just by the
	// conditional update: booked_slots can never leave [0, capacity].
	db.Exec(`ALTER TABLE sessions DROP CONSTRAINT IF EXISTS chk_sessions_booked_slots`)
	db.Exec(`
		ALTER TABLE sessions ADD CONSTRAINT chk_sessions_booked_slots
		CHECK (booked_slots >= 0 AND booked_slots <= capacity)
	`)

	return db
}
