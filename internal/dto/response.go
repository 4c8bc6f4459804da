package dto

import (
	"time"

	"github.com/d-g-Szabo/Club-backend/internal/models"
)

type BookingResponse struct {
	ID             string               `json:"id"`
	SessionID      string               `json:"session_id"`
	UserID         string               `json:"user_id"`
	PlaceID        string               `json:"place_id"`
	Status         models.BookingStatus `json:"status"`
	PaymentID      *string              `json:"payment_id,omitempty"`
	Amount         float64              `json:"amount"`
	Currency       string               `json:"currency"`
	RefundRequired bool                 `json:"refund_required"`
	CreatedAt      time.Time            `json:"created_at"`

	Session *SessionResponse `json:"session,omitempty"`
}

type SessionResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	PlaceID     string               `json:"place_id,omitempty"`
	Capacity    int                  `json:"capacity"`
	BookedSlots int                  `json:"booked_slots"`
	Price       float64              `json:"price"`
	Currency    string               `json:"currency"`
	Status      models.SessionStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type BookingListResponse struct {
	Data []BookingResponse `json:"data"`
	Meta ListMeta          `json:"meta"`
}

type SessionListResponse struct {
	Data []SessionResponse `json:"data"`
	Meta ListMeta          `json:"meta"`
}

type PaymentIntentResponse struct {
	ApprovalURL   string `json:"approvalUrl"`
	PaypalOrderID string `json:"paypalOrderId"`
}

// WebhookResponse acknowledges provider deliveries. Ignored and duplicate
// events get a 200 body too, so the provider stops redelivering them.
type WebhookResponse struct {
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		SessionID:      b.SessionID,
		UserID:         b.UserID,
		PlaceID:        b.PlaceID,
		Status:         b.Status,
		PaymentID:      b.PaymentID,
		Amount:         b.Amount,
		Currency:       b.Currency,
		RefundRequired: b.RefundRequired,
		CreatedAt:      b.CreatedAt,
	}
	if b.Session != nil {
		s := ToSessionResponse(b.Session)
		resp.Session = &s
	}
	return resp
}

func ToSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		Title:       s.Title,
		PlaceID:     s.PlaceID,
		Capacity:    s.Capacity,
		BookedSlots: s.BookedSlots,
		Price:       s.Price,
		Currency:    s.Currency,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
}

func NewListMeta(total int64, page, limit int) ListMeta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return ListMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
