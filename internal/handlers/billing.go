package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/services"
)

const maxWebhookBody = 64 * 1024

type BillingHandler struct {
	db      *database.Database
	billing services.Billing
	log     logging.Logger
}

func NewBillingHandler(db *database.Database, billing services.Billing, log logging.Logger) *BillingHandler {
	return &BillingHandler{db: db, billing: billing, log: log}
}

func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	req := services.CheckoutRequest{UserID: user.ID.String(), Email: user.Email}
	if user.StripeCustomerID != nil {
		req.CustomerID = *user.StripeCustomerID
	}

	url, err := h.billing.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		h.log.Error(c.Request.Context(), "checkout session failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.URLResponse{URL: url})
}

func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}

	url, err := h.billing.CreatePortalSession(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, services.ErrNoCustomer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no billing account"})
			return
		}
		h.log.Error(c.Request.Context(), "portal session failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.URLResponse{URL: url})
}

// VerifyPayment проверяет checkout-сессию после редиректа со Stripe
func (h *BillingHandler) VerifyPayment(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.billing.VerifyCheckout(c.Request.Context(), req.SessionID)
	if err != nil {
		h.log.Error(c.Request.Context(), "verify payment failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if res.UserID != userID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to another user"})
		return
	}

	if !res.Paid {
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}

	if err := h.db.SetSubscribed(c.Request.Context(), userID, true, res.CustomerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// Webhook принимает события Stripe. 5xx заставит Stripe повторить доставку.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	event, err := h.billing.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn(c.Request.Context(), "rejected webhook", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.applyEvent(c.Request.Context(), event); err != nil {
		h.log.Error(c.Request.Context(), "failed to apply webhook", "type", event.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) applyEvent(ctx context.Context, event *services.WebhookEvent) error {
	switch event.Type {
	case services.EventCheckoutCompleted:
		userID, err := h.resolveUser(ctx, event)
		if err != nil {
			return err
		}
		if userID == uuid.Nil {
			h.log.Warn(ctx, "checkout for unknown user", "customer_id", event.CustomerID)
			return nil
		}
		err = h.db.SetSubscribed(ctx, userID, true, event.CustomerID)
		if errors.Is(err, database.ErrNotFound) {
			h.log.Warn(ctx, "checkout for unknown user", "user_id", userID)
			return nil
		}
		return err

	case services.EventSubscriptionDeleted:
		user, err := h.db.FindUserByStripeCustomer(ctx, event.CustomerID)
		if errors.Is(err, database.ErrNotFound) {
			h.log.Warn(ctx, "subscription deleted for unknown customer", "customer_id", event.CustomerID)
			return nil
		}
		if err != nil {
			return err
		}
		return h.db.SetSubscribed(ctx, user.ID, false, "")
	}

	return nil
}

// resolveUser ищет пользователя по client_reference_id, иначе по customer
func (h *BillingHandler) resolveUser(ctx context.Context, event *services.WebhookEvent) (uuid.UUID, error) {
	if id, err := uuid.Parse(event.UserID); err == nil {
		return id, nil
	}
	if event.CustomerID == "" {
		return uuid.Nil, nil
	}

	user, err := h.db.FindUserByStripeCustomer(ctx, event.CustomerID)
	if errors.Is(err, database.ErrNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
