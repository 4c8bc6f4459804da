package service

import (
	"context"
	"errors"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/models"
	"github.com/d-g-Szabo/Club-backend/internal/repository"
	"gorm.io/gorm"
)

type SessionService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]models.Session, int64, error)
	Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error)
	Remove(ctx context.Context, id string) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
}

func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

func (s *sessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	session := &models.Session{
		Title:    req.Title,
		PlaceID:  req.PlaceID,
		Capacity: req.Capacity,
		Price:    req.Price,
		Currency: req.Currency,
		Status:   models.SessionAvailable,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter repository.SessionFilter) ([]models.Session, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	return s.sessionRepo.FindAll(ctx, filter)
}

// Update only touches descriptive fields. Capacity counters move exclusively
// through Reserve/Release.
func (s *sessionService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if len(fields) == 0 {
		return nil, ErrInvalidUpdate
	}

	session, err := s.sessionRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Remove(ctx context.Context, id string) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}
