package payment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"polarflow/models"
)

// Checkout providers wired into the platform.
const (
	ProviderStripe = "stripe"
	ProviderCreem  = "creem"
)

// ErrInitiationFailed wraps any provider-side failure during checkout
// creation. The technical cause is logged server-side; callers surface
// this generic error to the customer.
var ErrInitiationFailed = errors.New("payment initiation failed")

var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
	"cad": true,
}

// CheckoutRequest describes one checkout session to create.
type CheckoutRequest struct {
	AmountCents   int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	OrderType     models.OrderType  `json:"order_type"`
	UserID        string            `json:"-"`
	BookingID     string            `json:"booking_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the provider's session handle and redirect target.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Gateway abstracts a hosted-checkout payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

func validateCheckoutRequest(req CheckoutRequest) error {
	if req.AmountCents <= 0 {
		return errors.New("amount must be a positive number of cents")
	}
	if !supportedCurrencies[req.Currency] {
		return fmt.Errorf("unsupported currency: %s", req.Currency)
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return errors.New("invalid customer email")
	}
	switch req.OrderType {
	case models.OrderTypeSubscription, models.OrderTypeOneTime, models.OrderTypeSetupFee:
	default:
		return fmt.Errorf("unsupported order type: %s", req.OrderType)
	}
	return nil
}
