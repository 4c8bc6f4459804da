package service

import (
	"context"
	"errors"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/models"
	"github.com/d-g-Szabo/Club-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSessionFull       = errors.New("session capacity exceeded")
	ErrInvalidTransition = errors.New("booking status does not allow this transition")
	ErrInvalidUpdate     = errors.New("only cancellation or payment attachment is allowed")
)

type BookingService interface {
	Create(ctx context.Context, sessionID, userID, placeID string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, int64, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (*models.Booking, error)
	Remove(ctx context.Context, id string) error
	// MarkPaid runs inside the caller's transaction; the webhook reconciler is
	// the only caller.
	MarkPaid(ctx context.Context, tx *gorm.DB, bookingID, paymentID string, amount float64, currency string) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	sessionRepo repository.SessionRepository
}

func NewBookingService(bookingRepo repository.BookingRepository, sessionRepo repository.SessionRepository) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
	}
}

// Create books a session. Free sessions reserve a slot immediately and come
// back completed. Paid sessions come back pending and hold no slot: the slot
// is taken only once the provider confirms capture, so an abandoned payment
// never blocks capacity.
func (s *bookingService) Create(ctx context.Context, sessionID, userID, placeID string) (*models.Booking, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	booking := &models.Booking{
		SessionID: session.ID,
		UserID:    userID,
		PlaceID:   placeID,
		Amount:    session.Price,
		Currency:  session.Currency,
	}

	if session.Price == 0 {
		booking.Status = models.StatusCompleted
		booking.Amount = 0
		err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result, err := s.sessionRepo.Reserve(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			switch result {
			case repository.ReserveFull:
				return ErrSessionFull
			case repository.ReserveNotFound:
				return ErrSessionNotFound
			}
			return s.bookingRepo.Create(ctx, tx, booking)
		})
	} else {
		booking.Status = models.StatusPending
		err = s.bookingRepo.Create(ctx, s.bookingRepo.GetDB(), booking)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// MarkPaid moves a pending booking to completed and reserves its slot, in
// that order, so booked_slots can never exceed capacity even under provider
// replay. A booking already completed is a no-op (redelivered event). If the
// session filled up since intent creation the booking fails and is flagged
// for refund instead; that is not an error, the caller commits it.
func (s *bookingService) MarkPaid(ctx context.Context, tx *gorm.DB, bookingID, paymentID string, amount float64, currency string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.StatusCompleted {
		return booking, nil
	}
	if booking.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	result, err := s.sessionRepo.Reserve(ctx, tx, booking.SessionID)
	if err != nil {
		return nil, err
	}
	switch result {
	case repository.ReserveNotFound:
		return nil, ErrSessionNotFound
	case repository.ReserveFull:
		if err := s.bookingRepo.MarkFailedRefund(ctx, tx, booking.ID); err != nil {
			return nil, err
		}
		booking.Status = models.StatusFailed
		booking.RefundRequired = true
		return booking, nil
	}

	if err := s.bookingRepo.MarkCompleted(ctx, tx, booking.ID, paymentID, amount, currency); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCompleted
	booking.PaymentID = &paymentID
	booking.Amount = amount
	booking.Currency = currency
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	return s.bookingRepo.FindAll(ctx, filter)
}

func (s *bookingService) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		switch {
		case req.Status != nil:
			if models.BookingStatus(*req.Status) != models.StatusCancelled {
				return ErrInvalidUpdate
			}
			if booking.Status == models.StatusCancelled {
				return ErrInvalidTransition
			}
			// A completed booking held a slot; give it back.
			if booking.Status == models.StatusCompleted {
				if err := s.sessionRepo.Release(ctx, tx, booking.SessionID); err != nil {
					return err
				}
			}
			if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.StatusCancelled); err != nil {
				return err
			}
			booking.Status = models.StatusCancelled

		case req.PaymentID != nil:
			if booking.Status != models.StatusPending || booking.PaymentID != nil {
				return ErrInvalidTransition
			}
			if err := s.bookingRepo.AttachPaymentID(ctx, tx, booking.ID, *req.PaymentID); err != nil {
				return err
			}
			booking.PaymentID = req.PaymentID

		default:
			return ErrInvalidUpdate
		}

		result = booking
		return nil
	})

	return result, err
}

func (s *bookingService) Remove(ctx context.Context, id string) error {
	return s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.Status == models.StatusCompleted {
			if err := s.sessionRepo.Release(ctx, tx, booking.SessionID); err != nil {
				return err
			}
		}
		return s.bookingRepo.Delete(ctx, tx, booking.ID)
	})
}
