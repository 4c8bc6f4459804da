package repository

import (
	"context"

	"github.com/d-g-Szabo/Club-backend/internal/models"
	"gorm.io/gorm"
)

// ReserveResult is the outcome of a slot reservation attempt.
type ReserveResult int

const (
	Reserved ReserveResult = iota
	ReserveFull
	ReserveNotFound
)

type SessionFilter struct {
	Status string
	Page   int
	Limit  int
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindAll(ctx context.Context, filter SessionFilter) ([]models.Session, int64, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	Reserve(ctx context.Context, tx *gorm.DB, id string) (ReserveResult, error)
	Release(ctx context.Context, tx *gorm.DB, id string) error
	GetDB() *gorm.DB
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindAll(ctx context.Context, filter SessionFilter) ([]models.Session, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Session{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.Session
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Session, error) {
	res := r.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reserve takes one slot with a single conditional UPDATE. Concurrent callers
// racing for the last slot are serialized by the database: exactly one update
// matches, the rest see zero affected rows. Never read-then-write.
func (r *sessionRepository) Reserve(ctx context.Context, tx *gorm.DB, id string) (ReserveResult, error) {
	res := tx.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND booked_slots < capacity", id).
		Updates(map[string]any{
			"booked_slots": gorm.Expr("booked_slots + 1"),
			"status": gorm.Expr(
				"CASE WHEN booked_slots + 1 >= capacity THEN ? ELSE status END",
				models.SessionBooked,
			),
		})
	if res.Error != nil {
		return ReserveNotFound, res.Error
	}
	if res.RowsAffected == 1 {
		return Reserved, nil
	}

	// No row matched: either the session is full or it does not exist.
	var count int64
	if err := tx.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return ReserveNotFound, err
	}
	if count == 0 {
		return ReserveNotFound, nil
	}
	return ReserveFull, nil
}

// Release gives a slot back (floor 0) and reopens the session.
func (r *sessionRepository) Release(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND booked_slots > 0", id).
		Updates(map[string]any{
			"booked_slots": gorm.Expr("booked_slots - 1"),
			"status":       models.SessionAvailable,
		}).Error
}
