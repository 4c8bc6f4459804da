package repository

import (
	"context"

	"github.com/d-g-Szabo/Club-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingFilter struct {
	UserID    string
	SessionID string
	PlaceID   string
	Page      int
	Limit     int
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error)
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error
	AttachPaymentID(ctx context.Context, tx *gorm.DB, id, paymentID string) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, id, paymentID string, amount float64, currency string) error
	MarkFailedRefund(ctx context.Context, tx *gorm.DB, id string) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Session").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate acquires a row-level lock on the booking within the given
// transaction, so a webhook apply and a delete cannot interleave.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.PlaceID != "" {
		q = q.Where("place_id = ?", filter.PlaceID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []models.Booking
	err := q.Preload("Session").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *bookingRepository) AttachPaymentID(ctx context.Context, tx *gorm.DB, id, paymentID string) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

func (r *bookingRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, id, paymentID string, amount float64, currency string) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.StatusCompleted,
			"payment_id": paymentID,
			"amount":     amount,
			"currency":   currency,
		}).Error
}

func (r *bookingRepository) MarkFailedRefund(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          models.StatusFailed,
			"refund_required": true,
		}).Error
}

func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	res := tx.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
