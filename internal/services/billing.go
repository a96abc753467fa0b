package services

import "context"

type CheckoutRequest struct {
	UserID     string
	Email      string
	CustomerID string
}

type CheckoutResult struct {
	Paid       bool
	UserID     string
	CustomerID string
}

type WebhookEventType string

const (
	EventCheckoutCompleted   WebhookEventType = "checkout.session.completed"
	EventSubscriptionDeleted WebhookEventType = "customer.subscription.deleted"
)

// WebhookEvent проверенное событие платёжного провайдера, сведённое к
// тому, что нужно для флага подписки
type WebhookEvent struct {
	Type       WebhookEventType
	UserID     string
	CustomerID string
}

type Billing interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	VerifyCheckout(ctx context.Context, sessionID string) (*CheckoutResult, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
