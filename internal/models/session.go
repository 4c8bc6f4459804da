package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionAvailable SessionStatus = "available"
	SessionBooked    SessionStatus = "booked"
)

type Session struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	PlaceID     string        `gorm:"type:uuid" json:"place_id"`
	Capacity    int           `gorm:"not null" json:"capacity"`
	BookedSlots int           `gorm:"not null;default:0" json:"booked_slots"`
	Price       float64       `gorm:"not null;default:0" json:"price"`
	Currency    string        `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status      SessionStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Currency == "" {
		s.Currency = "USD"
	}
	if s.Status == "" {
		s.Status = SessionAvailable
	}
	return nil
}
