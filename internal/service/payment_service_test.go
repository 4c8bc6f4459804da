package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/gateway"
	"github.com/d-g-Szabo/Club-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Mock Gateway ---

type mockGateway struct {
	createOrderFn   func(ctx context.Context, amount float64, currency string) (*gateway.Order, error)
	verifyWebhookFn func(ctx context.Context, req *http.Request) error
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount float64, currency string) (*gateway.Order, error) {
	return m.createOrderFn(ctx, amount, currency)
}
func (m *mockGateway) VerifyWebhook(ctx context.Context, req *http.Request) error {
	if m.verifyWebhookFn != nil {
		return m.verifyWebhookFn(ctx, req)
	}
	return nil
}

// --- Mock PaymentRepository ---

type mockPaymentRepo struct {
	createFn func(ctx context.Context, tx *gorm.DB, p *models.Payment) error
}

func (m *mockPaymentRepo) Create(ctx context.Context, tx *gorm.DB, p *models.Payment) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, p)
	}
	return nil
}
func (m *mockPaymentRepo) FindByExternalOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Payment, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockPaymentRepo) MarkCaptured(ctx context.Context, tx *gorm.DB, orderID, transactionID string) error {
	return nil
}
func (m *mockPaymentRepo) IsEventProcessed(ctx context.Context, tx *gorm.DB, transactionID string) (bool, error) {
	return false, nil
}
func (m *mockPaymentRepo) RecordEvent(ctx context.Context, tx *gorm.DB, transactionID string) error {
	return nil
}
func (m *mockPaymentRepo) GetDB() *gorm.DB { return nil }

func newWebhookRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/paypal/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Tests ---

func TestCreatePaypalPayment_ProviderFailure_NoStateChange(t *testing.T) {
	created := false
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: models.StatusPending}, nil
		},
	}
	payments := &mockPaymentRepo{
		createFn: func(ctx context.Context, tx *gorm.DB, p *models.Payment) error {
			created = true
			return nil
		},
	}
	gw := &mockGateway{
		createOrderFn: func(ctx context.Context, amount float64, currency string) (*gateway.Order, error) {
			return nil, errors.New("paypal unavailable")
		},
	}

	svc := NewPaymentService(payments, bookings, nil, gw, nil, zap.NewNop())
	_, err := svc.CreatePaypalPayment(context.Background(), dto.CreatePaymentRequest{
		Amount: 15, Currency: "USD", UserID: "u-1", BookingID: "b-1",
	})

	assert.ErrorIs(t, err, ErrPaymentProvider)
	assert.False(t, created, "no payment row may persist when the provider call fails")
}

func TestCreatePaypalPayment_BookingNotFound(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewPaymentService(&mockPaymentRepo{}, bookings, nil, &mockGateway{}, nil, zap.NewNop())
	_, err := svc.CreatePaypalPayment(context.Background(), dto.CreatePaymentRequest{
		Amount: 15, Currency: "USD", UserID: "u-1", BookingID: "missing",
	})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreatePaypalPayment_CompletedBooking_Rejected(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: models.StatusCompleted}, nil
		},
	}

	svc := NewPaymentService(&mockPaymentRepo{}, bookings, nil, &mockGateway{}, nil, zap.NewNop())
	_, err := svc.CreatePaypalPayment(context.Background(), dto.CreatePaymentRequest{
		Amount: 15, Currency: "USD", UserID: "u-1", BookingID: "b-1",
	})

	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestHandleWebhook_BadSignature_Rejected(t *testing.T) {
	gw := &mockGateway{
		verifyWebhookFn: func(ctx context.Context, req *http.Request) error {
			return errors.New("verification_status: FAILURE")
		},
	}

	svc := NewPaymentService(&mockPaymentRepo{}, &mockBookingRepo{}, nil, gw, nil, zap.NewNop())
	body := `{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{}}`
	_, err := svc.HandlePaypalWebhook(context.Background(), newWebhookRequest(body), []byte(body))

	assert.ErrorIs(t, err, ErrWebhookUnauthenticated)
}

func TestHandleWebhook_OtherEventType_Ignored(t *testing.T) {
	svc := NewPaymentService(&mockPaymentRepo{}, &mockBookingRepo{}, nil, &mockGateway{}, nil, zap.NewNop())
	body := `{"event_type":"CHECKOUT.ORDER.APPROVED","resource":{}}`

	result, err := svc.HandlePaypalWebhook(context.Background(), newWebhookRequest(body), []byte(body))

	require.NoError(t, err)
	assert.Equal(t, WebhookIgnored, result.Outcome)
	assert.Equal(t, "CHECKOUT.ORDER.APPROVED", result.EventType)
}

func TestHandleWebhook_MalformedPayload_Rejected(t *testing.T) {
	svc := NewPaymentService(&mockPaymentRepo{}, &mockBookingRepo{}, nil, &mockGateway{}, nil, zap.NewNop())

	for _, body := range []string{
		`not json`,
		`{"resource":{}}`,
		`{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":""}}`,
		`{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"TXN-1","amount":{"value":"abc","currency_code":"USD"},"supplementary_data":{"related_ids":{"order_id":"ORDER-1"}}}}`,
	} {
		_, err := svc.HandlePaypalWebhook(context.Background(), newWebhookRequest(body), []byte(body))
		assert.ErrorIs(t, err, ErrInvalidWebhookPayload, "body: %s", body)
	}
}
