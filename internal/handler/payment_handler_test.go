package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/models"
	"github.com/d-g-Szabo/Club-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock PaymentService ---

type mockPaymentService struct {
	createFn  func(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error)
	webhookFn func(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error)
}

func (m *mockPaymentService) CreatePaypalPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error) {
	return m.createFn(ctx, req)
}
func (m *mockPaymentService) HandlePaypalWebhook(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error) {
	return m.webhookFn(ctx, httpReq, body)
}

// --- Tests ---

func TestCreatePaypalPayment_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		createFn: func(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error) {
			assert.Equal(t, 20.0, req.Amount)
			return &dto.PaymentIntentResponse{
				ApprovalURL:   "https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1",
				PaypalOrderID: "ORDER-1",
			}, nil
		},
	}

	body := `{"amount":20,"currency":"USD","user_id":"` + testUserID + `","booking_id":"` + testSessionID + `"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/payments/paypal", body)

	err := NewPaymentHandler(svc).CreatePaypalPayment(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PaymentIntentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ORDER-1", resp.PaypalOrderID)
	assert.Contains(t, resp.ApprovalURL, "checkoutnow")
}

func TestCreatePaypalPayment_Handler_ProviderDown(t *testing.T) {
	svc := &mockPaymentService{
		createFn: func(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentIntentResponse, error) {
			return nil, service.ErrPaymentProvider
		},
	}

	body := `{"amount":20,"currency":"USD","user_id":"` + testUserID + `","booking_id":"` + testSessionID + `"}`
	c, _ := newTestContext(http.MethodPost, "/api/v1/payments/paypal", body)

	err := NewPaymentHandler(svc).CreatePaypalPayment(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Code)
}

func TestCreatePaypalPayment_Handler_InvalidAmount(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})

	body := `{"amount":0,"currency":"USD","user_id":"` + testUserID + `","booking_id":"` + testSessionID + `"}`
	c, _ := newTestContext(http.MethodPost, "/api/v1/payments/paypal", body)

	err := h.CreatePaypalPayment(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestWebhook_Handler_Applied(t *testing.T) {
	svc := &mockPaymentService{
		webhookFn: func(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error) {
			return &service.WebhookResult{
				Outcome:   service.WebhookApplied,
				EventType: service.EventCaptureCompleted,
				Booking:   &models.Booking{ID: "b-1", Status: models.StatusCompleted},
			}, nil
		},
	}

	body := `{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{}}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/payments/paypal/webhook", body)

	err := NewPaymentHandler(svc).HandlePaypalWebhook(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.WebhookResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Payment and booking updated", resp.Message)
}

func TestWebhook_Handler_IgnoredAndDuplicateAreOK(t *testing.T) {
	cases := []struct {
		outcome service.WebhookOutcome
		message string
	}{
		{service.WebhookIgnored, "Event ignored"},
		{service.WebhookDuplicate, "Event already processed"},
	}

	for _, tc := range cases {
		svc := &mockPaymentService{
			webhookFn: func(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error) {
				return &service.WebhookResult{Outcome: tc.outcome, EventType: "PAYMENT.CAPTURE.DENIED"}, nil
			},
		}

		body := `{"event_type":"PAYMENT.CAPTURE.DENIED","resource":{}}`
		c, rec := newTestContext(http.MethodPost, "/api/v1/payments/paypal/webhook", body)

		err := NewPaymentHandler(svc).HandlePaypalWebhook(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code, "outcome %s must always acknowledge with 200", tc.outcome)

		var resp dto.WebhookResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, tc.message, resp.Message)
	}
}

func TestWebhook_Handler_BadSignature(t *testing.T) {
	svc := &mockPaymentService{
		webhookFn: func(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error) {
			return nil, service.ErrWebhookUnauthenticated
		},
	}

	body := `{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{}}`
	c, _ := newTestContext(http.MethodPost, "/api/v1/payments/paypal/webhook", body)

	err := NewPaymentHandler(svc).HandlePaypalWebhook(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestWebhook_Handler_UnknownBooking(t *testing.T) {
	svc := &mockPaymentService{
		webhookFn: func(ctx context.Context, httpReq *http.Request, body []byte) (*service.WebhookResult, error) {
			return nil, service.ErrBookingNotFound
		},
	}

	body := `{"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{}}`
	c, _ := newTestContext(http.MethodPost, "/api/v1/payments/paypal/webhook", body)

	err := NewPaymentHandler(svc).HandlePaypalWebhook(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
