package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/plutov/paypal/v4"
)

// Order is the provider-side payment intent: the external order id and the
// URL the payer is redirected to for approval.
type Order struct {
	ID          string
	ApprovalURL string
}

// Gateway abstracts the payment provider for intent creation and webhook
// authenticity checks. Capture confirmation never comes through here, only
// through webhook delivery.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency string) (*Order, error)
	VerifyWebhook(ctx context.Context, req *http.Request) error
}

type PayPalGateway struct {
	client    *paypal.Client
	webhookID string
	returnURL string
	cancelURL string
}

func NewPayPalGateway(clientID, secret, apiBase, webhookID, returnURL, cancelURL string) (*PayPalGateway, error) {
	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	return &PayPalGateway{
		client:    client,
		webhookID: webhookID,
		returnURL: returnURL,
		cancelURL: cancelURL,
	}, nil
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, amount float64, currency string) (*Order, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    fmt.Sprintf("%.2f", amount),
			},
		},
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, &paypal.ApplicationContext{
		ReturnURL: g.returnURL,
		CancelURL: g.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	var approvalURL string
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}

	return &Order{ID: order.ID, ApprovalURL: approvalURL}, nil
}

func (g *PayPalGateway) VerifyWebhook(ctx context.Context, req *http.Request) error {
	resp, err := g.client.VerifyWebhookSignature(ctx, req, g.webhookID)
	if err != nil {
		return fmt.Errorf("paypal verify webhook: %w", err)
	}
	if resp.VerificationStatus != "SUCCESS" {
		return errors.New("webhook signature verification failed: " + resp.VerificationStatus)
	}
	return nil
}
