package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/thereayou/mindsync/internal/services"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	// куда Stripe возвращает пользователя после оплаты и из портала
	FrontendURL string
}

// Stripe реализует services.Billing
type Stripe struct {
	api *client.API
	cfg Config
}

// NewStripe создаёт клиента; backends == nil означает боевой API Stripe
func NewStripe(cfg Config, backends *stripe.Backends) *Stripe {
	if backends == nil {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				MaxNetworkRetries: stripe.Int64(0),
			}),
		}
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, backends)

	return &Stripe{api: api, cfg: cfg}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req services.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.cfg.FrontendURL + "/?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.cfg.FrontendURL + "/?canceled=true"),
		ClientReferenceID: stripe.String(req.UserID),
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", services.NewExternalError(services.KindBilling, temporary(err), err)
	}

	return sess.URL, nil
}

func (s *Stripe) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", services.ErrNoCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.FrontendURL),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", services.NewExternalError(services.KindBilling, temporary(err), err)
	}

	return sess.URL, nil
}

func (s *Stripe) VerifyCheckout(ctx context.Context, sessionID string) (*services.CheckoutResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, services.NewExternalError(services.KindBilling, temporary(err), err)
	}

	return &services.CheckoutResult{
		Paid:       sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		UserID:     sess.ClientReferenceID,
		CustomerID: customerID(sess.Customer),
	}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*services.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrBadSignature, err)
	}

	return translate(event)
}

// translate сводит событие Stripe к полям, которые меняют флаг подписки
func translate(event stripe.Event) (*services.WebhookEvent, error) {
	out := &services.WebhookEvent{Type: services.WebhookEventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case services.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.UserID = sess.ClientReferenceID
		out.CustomerID = customerID(sess.Customer)

	case services.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.CustomerID = customerID(sub.Customer)
	}

	return out, nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func temporary(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500
	}
	return true
}
