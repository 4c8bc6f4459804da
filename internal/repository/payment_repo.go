package repository

import (
	"context"
	"time"

	"github.com/d-g-Szabo/Club-backend/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByExternalOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Payment, error)
	MarkCaptured(ctx context.Context, tx *gorm.DB, orderID, transactionID string) error
	IsEventProcessed(ctx context.Context, tx *gorm.DB, transactionID string) (bool, error)
	RecordEvent(ctx context.Context, tx *gorm.DB, transactionID string) error
	GetDB() *gorm.DB
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByExternalOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := tx.WithContext(ctx).First(&payment, "external_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) MarkCaptured(ctx context.Context, tx *gorm.DB, orderID, transactionID string) error {
	res := tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("external_order_id = ?", orderID).
		Updates(map[string]any{
			"status":                  models.PaymentCaptured,
			"external_transaction_id": transactionID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) IsEventProcessed(ctx context.Context, tx *gorm.DB, transactionID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.ProcessedEvent{}).
		Where("external_transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordEvent appends to the idempotency ledger. The primary key on the
// transaction id makes a concurrent duplicate delivery fail with
// gorm.ErrDuplicatedKey, rolling that delivery's transaction back whole.
func (r *paymentRepository) RecordEvent(ctx context.Context, tx *gorm.DB, transactionID string) error {
	return tx.WithContext(ctx).Create(&models.ProcessedEvent{
		ExternalTransactionID: transactionID,
		ProcessedAt:           time.Now().UTC(),
	}).Error
}
