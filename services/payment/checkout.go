package payment

import (
	"context"
	"fmt"
	"time"

	bookingRepo "polarflow/database/repository/booking"
	orderRepo "polarflow/database/repository/order"
	"polarflow/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService initiates checkout sessions and the Order bookkeeping
// around them.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, provider string, req CheckoutRequest) (*CheckoutResult, error)
}

// CheckoutResult is returned to the browser for redirect.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Orders   orderRepo.OrderRepository
	Bookings bookingRepo.BookingRepository
	Gateways map[string]Gateway
	Logger   *zap.Logger
}

// InitiateCheckout validates the request, creates the Order record, then
// opens the provider session. The Order is written before the session
// exists so a provider failure leaves a pending order behind rather than
// silently losing the attempt; a retry creates a fresh order.
func (cs *DefaultCheckoutService) InitiateCheckout(ctx context.Context, provider string, req CheckoutRequest) (*CheckoutResult, error) {
	gw, ok := cs.Gateways[provider]
	if !ok {
		return nil, fmt.Errorf("unknown payment provider: %s", provider)
	}
	if err := validateCheckoutRequest(req); err != nil {
		return nil, fmt.Errorf("invalid checkout request: %w", err)
	}

	// A booking reference must point at a real scheduled booking. Checking
	// here, at order creation, keeps reconciliation free of dangling ids.
	if req.BookingID != "" {
		if _, err := cs.Bookings.GetByID(ctx, req.BookingID); err != nil {
			return nil, fmt.Errorf("invalid booking reference %s: %w", req.BookingID, err)
		}
	}

	now := time.Now()
	ord := &models.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		CustomerEmail: req.CustomerEmail,
		AmountCents:   req.AmountCents,
		Currency:      req.Currency,
		Status:        models.OrderPending,
		Type:          req.OrderType,
		Provider:      provider,
		BookingID:     req.BookingID,
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := cs.Orders.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	session, err := gw.CreateCheckoutSession(ctx, req)
	if err != nil {
		// The pending order stays on record for bookkeeping.
		cs.Logger.Error("checkout session creation failed",
			zap.String("orderID", ord.ID),
			zap.String("provider", provider),
			zap.Error(err))
		return nil, err
	}

	if err := cs.Orders.AttachSession(ctx, ord.ID, session.SessionID); err != nil {
		return nil, fmt.Errorf("failed to attach session to order %s: %w", ord.ID, err)
	}

	cs.Logger.Info("checkout initiated",
		zap.String("orderID", ord.ID),
		zap.String("provider", provider),
		zap.String("sessionID", session.SessionID),
		zap.Int64("amountCents", req.AmountCents))

	return &CheckoutResult{
		OrderID:     ord.ID,
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}
