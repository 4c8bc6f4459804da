package dto

import "encoding/json"

type CreateBookingRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	PlaceID   string `json:"place_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required,uuid"`
}

// UpdateBookingRequest covers the only PATCH transitions allowed from outside:
// cancelling a booking, or attaching a provider order id to a pending one.
type UpdateBookingRequest struct {
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=cancelled"`
	PaymentID *string `json:"payment_id,omitempty" validate:"omitempty,min=1"`
}

type CreatePaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,len=3"`
	UserID    string  `json:"user_id" validate:"required,uuid"`
	BookingID string  `json:"booking_id" validate:"required,uuid"`
}

type CreateSessionRequest struct {
	Title    string  `json:"title" validate:"required"`
	PlaceID  string  `json:"place_id" validate:"omitempty,uuid"`
	Capacity int     `json:"capacity" validate:"required,gte=1"`
	Price    float64 `json:"price" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

type UpdateSessionRequest struct {
	Title *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type PaypalWebhookRequest struct {
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// PaypalCaptureResource is the subset of PayPal's capture resource this
// service reads: the capture (transaction) id, the captured amount and the
// order id linking back to the booking.
type PaypalCaptureResource struct {
	ID     string `json:"id"`
	Amount struct {
		Value        string `json:"value"`
		CurrencyCode string `json:"currency_code"`
	} `json:"amount"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}
