package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusCompleted BookingStatus = "completed"
	StatusFailed    BookingStatus = "failed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID        string        `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string        `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID    string        `gorm:"type:uuid;not null;index" json:"user_id"`
	PlaceID   string        `gorm:"type:uuid;not null" json:"place_id"`
	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	// PaymentID holds the provider-side order id once a payment intent exists.
	PaymentID      *string   `gorm:"type:varchar(64);index" json:"payment_id,omitempty"`
	Amount         float64   `gorm:"not null;default:0" json:"amount"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	RefundRequired bool      `gorm:"not null;default:false" json:"refund_required"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}
	return nil
}
