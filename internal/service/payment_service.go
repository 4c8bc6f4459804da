package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/gateway"
	"github.com/d-g-Szabo/Club-backend/internal/models"
	"github.com/d-g-Szabo/Club-backend/internal/repository"
	"github.com/d-g-Szabo/Club-backend/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"

var (
	ErrPaymentProvider        = errors.New("payment provider request failed")
	ErrWebhookUnauthenticated = errors.New("webhook signature could not be verified")
	ErrInvalidWebhookPayload  = errors.New("malformed webhook payload")
	ErrBookingNotPayable      = errors.New("booking is not awaiting payment")
)

type WebhookOutcome string

const (
	WebhookApplied   WebhookOutcome = "applied"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookDuplicate WebhookOutcome = "duplicate"
)

type WebhookResult struct {
	Outcome   WebhookOutcome
	EventType string
	Booking   *models.Booking
}

type PaymentService interface {
	CreatePaypalPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error)
	HandlePaypalWebhook(ctx context.Context, httpReq *http.Request, body []byte) (*WebhookResult, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	bookingSvc  BookingService
	gw          gateway.Gateway
	publisher   *rabbitmq.Publisher
	log         *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	bookingSvc BookingService,
	gw gateway.Gateway,
	publisher *rabbitmq.Publisher,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		gw:          gw,
		publisher:   publisher,
		log:         log,
	}
}

// CreatePaypalPayment creates a CAPTURE order with the provider, then records
// the pending payment and links the order id to the booking in one
// transaction. The provider round trip happens first and holds no lock; a
// provider failure leaves no trace in the database.
func (s *paymentService) CreatePaypalPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error) {
	booking, err := s.bookingRepo.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, ErrBookingNotPayable
	}

	order, err := s.gw.CreateOrder(ctx, req.Amount, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	payment := &models.Payment{
		UserID:          req.UserID,
		BookingID:       booking.ID,
		ExternalOrderID: order.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Status:          models.PaymentPending,
	}

	err = s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}
		return s.bookingRepo.AttachPaymentID(ctx, tx, booking.ID, order.ID)
	})
	if err != nil {
		return nil, err
	}

	return &dto.PaymentIntentResponse{
		ApprovalURL:   order.ApprovalURL,
		PaypalOrderID: order.ID,
	}, nil
}

// HandlePaypalWebhook runs the reconciliation state machine: verify, filter,
// deduplicate, resolve, apply. The apply step is one transaction covering the
// booking transition, the slot reservation, the payment capture and the
// ledger append, so they commit or roll back together.
func (s *paymentService) HandlePaypalWebhook(ctx context.Context, httpReq *http.Request, body []byte) (*WebhookResult, error) {
	if err := s.gw.VerifyWebhook(ctx, httpReq); err != nil {
		s.log.Warn("rejected unverifiable webhook", zap.Error(err))
		return nil, ErrWebhookUnauthenticated
	}

	var event dto.PaypalWebhookRequest
	if err := json.Unmarshal(body, &event); err != nil || event.EventType == "" {
		return nil, ErrInvalidWebhookPayload
	}

	if event.EventType != EventCaptureCompleted {
		return &WebhookResult{Outcome: WebhookIgnored, EventType: event.EventType}, nil
	}

	var resource dto.PaypalCaptureResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return nil, ErrInvalidWebhookPayload
	}
	transactionID := resource.ID
	orderID := resource.SupplementaryData.RelatedIDs.OrderID
	if transactionID == "" || orderID == "" {
		return nil, ErrInvalidWebhookPayload
	}
	amount, err := strconv.ParseFloat(resource.Amount.Value, 64)
	if err != nil {
		return nil, ErrInvalidWebhookPayload
	}
	currency := resource.Amount.CurrencyCode

	var result *WebhookResult
	err = s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		processed, err := s.paymentRepo.IsEventProcessed(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if processed {
			result = &WebhookResult{Outcome: WebhookDuplicate, EventType: event.EventType}
			return nil
		}

		booking, err := s.bookingRepo.FindByPaymentID(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		applied, err := s.bookingSvc.MarkPaid(ctx, tx, booking.ID, orderID, amount, currency)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.MarkCaptured(ctx, tx, orderID, transactionID); err != nil {
			return err
		}

		// Ledger append is the last mutation: a crash before this point leaves
		// no trace and the provider's redelivery applies cleanly.
		if err := s.paymentRepo.RecordEvent(ctx, tx, transactionID); err != nil {
			return err
		}

		result = &WebhookResult{Outcome: WebhookApplied, EventType: event.EventType, Booking: applied}
		return nil
	})
	if err != nil {
		// A concurrent delivery of the same event won the ledger insert; ours
		// rolled back whole, which is exactly the duplicate no-op.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &WebhookResult{Outcome: WebhookDuplicate, EventType: event.EventType}, nil
		}
		if errors.Is(err, ErrBookingNotFound) {
			s.log.Warn("webhook references unknown booking",
				zap.String("order_id", orderID),
				zap.String("transaction_id", transactionID),
			)
		}
		return nil, err
	}

	if result.Outcome == WebhookApplied {
		s.notify(result.Booking)
	}
	return result, nil
}

func (s *paymentService) notify(booking *models.Booking) {
	if s.publisher == nil {
		return
	}
	key := rabbitmq.KeyBookingCompleted
	if booking.Status == models.StatusFailed {
		key = rabbitmq.KeyRefundRequired
	}
	if err := s.publisher.Publish(key, booking); err != nil {
		s.log.Error("failed to publish booking event",
			zap.String("routing_key", key),
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}
