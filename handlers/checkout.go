package handlers

import (
	"errors"
	"net/http"
	"strings"

	"polarflow/models"
	"polarflow/services/payment"
	"polarflow/services/pricing"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutHandler initiates hosted checkout sessions. The charge amount
// is always computed server-side from the catalog; the client never sends
// a price.
type CheckoutHandler struct {
	Checkout payment.CheckoutService
	Logger   *zap.Logger
}

// NewCheckoutHandler builds a CheckoutHandler.
func NewCheckoutHandler(svc payment.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Checkout: svc, Logger: logger}
}

type checkoutInput struct {
	ServiceType   string            `json:"service_type" binding:"required"`
	SetupFeeTier  string            `json:"setup_fee_tier" binding:"required"`
	AddOns        models.AddOns     `json:"add_ons"`
	BookingID     string            `json:"booking_id"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	Subscription  bool              `json:"subscription"`
	Metadata      map[string]string `json:"metadata"`
}

// StripeCheckout opens a Stripe checkout session.
func (h *CheckoutHandler) StripeCheckout(c *gin.Context) {
	h.initiate(c, payment.ProviderStripe)
}

// CreemCheckout opens a Creem checkout session.
func (h *CheckoutHandler) CreemCheckout(c *gin.Context) {
	h.initiate(c, payment.ProviderCreem)
}

func (h *CheckoutHandler) initiate(c *gin.Context, provider string) {
	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if _, ok := models.OfferingByType(input.ServiceType); !ok {
		utils.JSONError(c, http.StatusBadRequest, "unknown service type", "")
		return
	}
	setupFee, ok := models.SetupFeeCents(input.SetupFeeTier)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "unknown setup fee tier", "")
		return
	}

	email := c.GetString("userEmail")
	if email == "" {
		email = input.CustomerEmail
	}
	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = "usd"
	}

	offering, _ := models.OfferingByType(input.ServiceType)
	req := payment.CheckoutRequest{
		Currency:      currency,
		CustomerEmail: email,
		CustomerPhone: input.CustomerPhone,
		UserID:        c.GetString("userID"),
		BookingID:     input.BookingID,
		Metadata:      input.Metadata,
	}
	if input.Subscription {
		req.OrderType = models.OrderTypeSubscription
		req.AmountCents = pricing.MonthlyTotal(input.ServiceType, setupFee)
		req.Description = offering.Name + " monthly plan"
	} else {
		req.OrderType = models.OrderTypeOneTime
		req.AmountCents = pricing.Total(input.ServiceType, input.AddOns, setupFee)
		req.Description = offering.Name + " visit"
	}

	result, err := h.Checkout.InitiateCheckout(c.Request.Context(), provider, req)
	if err != nil {
		if errors.Is(err, payment.ErrInitiationFailed) {
			// Provider details stay in the server log.
			utils.JSONError(c, http.StatusBadGateway, "payment initiation failed, please try again", "")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "could not start checkout", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
