package payment

import (
	"context"
	"fmt"

	"polarflow/models"

	"github.com/stripe/stripe-go/v76"
	checkoutSession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"go.uber.org/zap"
)

// StripeGateway creates hosted checkout sessions via Stripe. The API key
// is set globally on the stripe package in main.
type StripeGateway struct {
	SuccessURL string
	CancelURL  string
	Logger     *zap.Logger
}

// CreateCheckoutSession builds a Stripe Checkout session in payment or
// subscription mode with an inline price.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, fmt.Errorf("invalid checkout request: %w", err)
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(req.Currency),
		UnitAmount: stripe.Int64(req.AmountCents),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(req.Description),
		},
	}

	mode := stripe.CheckoutSessionModePayment
	if req.OrderType == models.OrderTypeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(mode)),
		SuccessURL:    stripe.String(g.SuccessURL),
		CancelURL:     stripe.String(g.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.BookingID != "" {
		params.AddMetadata("booking_id", req.BookingID)
	}
	params.AddMetadata("order_type", string(req.OrderType))

	s, err := checkoutSession.New(params)
	if err != nil {
		g.Logger.Error("stripe checkout session creation failed",
			zap.String("email", req.CustomerEmail),
			zap.Int64("amountCents", req.AmountCents),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInitiationFailed, err)
	}

	return &CheckoutSession{SessionID: s.ID, CheckoutURL: s.URL}, nil
}

// CancelSubscription cancels a Stripe subscription immediately.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := subscription.Cancel(subscriptionID, params); err != nil {
		g.Logger.Error("stripe subscription cancellation failed",
			zap.String("subscriptionID", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("failed to cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}
