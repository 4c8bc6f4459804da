package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
)

type Payment struct {
	ID              string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID       string `gorm:"type:uuid;not null;index" json:"booking_id"`
	ExternalOrderID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"external_order_id"`
	// ExternalTransactionID is set once the provider confirms capture.
	ExternalTransactionID *string       `gorm:"type:varchar(64)" json:"external_transaction_id,omitempty"`
	Amount                float64       `gorm:"not null" json:"amount"`
	Currency              string        `gorm:"type:varchar(3);not null" json:"currency"`
	Status                PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProcessedEvent is the idempotency ledger for provider webhooks. Rows are
// appended once per captured transaction and never updated, so redelivered
// events can be detected and skipped.
type ProcessedEvent struct {
	ExternalTransactionID string    `gorm:"type:varchar(64);primaryKey" json:"external_transaction_id"`
	ProcessedAt           time.Time `gorm:"not null" json:"processed_at"`
}
