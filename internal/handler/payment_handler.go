package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	payments := e.Group("/api/v1/payments")
	payments.POST("/paypal", h.CreatePaypalPayment)
	payments.POST("/paypal/webhook", h.HandlePaypalWebhook)
}

func (h *PaymentHandler) CreatePaypalPayment(c echo.Context) error {
	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	intent, err := h.svc.CreatePaypalPayment(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrBookingNotPayable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentProvider):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, intent)
}

func (h *PaymentHandler) HandlePaypalWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read request body")
	}
	// Signature verification reads the body again.
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	result, err := h.svc.HandlePaypalWebhook(c.Request().Context(), c.Request(), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrInvalidWebhookPayload):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBookingNotFound):
			// Non-2xx so the provider redelivers once the booking exists.
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	switch result.Outcome {
	case service.WebhookIgnored:
		return c.JSON(http.StatusOK, dto.WebhookResponse{Message: "Event ignored", Event: result.EventType})
	case service.WebhookDuplicate:
		return c.JSON(http.StatusOK, dto.WebhookResponse{Message: "Event already processed", Event: result.EventType})
	default:
		return c.JSON(http.StatusOK, dto.WebhookResponse{Message: "Payment and booking updated", Event: result.EventType})
	}
}
