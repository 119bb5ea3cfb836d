package handlers

import (
	"errors"
	"net/http"

	orderRepo "polarflow/database/repository/order"
	"polarflow/models"
	"polarflow/services/payment"
	"polarflow/services/pricing"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubscriptionHandler manages monthly membership subscriptions. Creation
// rides the same checkout path as one-time orders, in subscription mode.
type SubscriptionHandler struct {
	Orders   orderRepo.OrderRepository
	Checkout payment.CheckoutService
	Gateways map[string]payment.Gateway
	Logger   *zap.Logger
}

// NewSubscriptionHandler builds a SubscriptionHandler.
func NewSubscriptionHandler(orders orderRepo.OrderRepository, checkout payment.CheckoutService, gateways map[string]payment.Gateway, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Orders: orders, Checkout: checkout, Gateways: gateways, Logger: logger}
}

type createSubscriptionInput struct {
	ServiceType  string `json:"service_type" binding:"required"`
	SetupFeeTier string `json:"setup_fee_tier" binding:"required"`
	Provider     string `json:"provider"`
	Currency     string `json:"currency"`
}

// CreateSubscription opens a subscription-mode checkout for a monthly
// plan. The first charge is the plan price plus the one-time setup fee.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var input createSubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	offering, ok := models.OfferingByType(input.ServiceType)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "unknown service type", "")
		return
	}
	setupFee, ok := models.SetupFeeCents(input.SetupFeeTier)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "unknown setup fee tier", "")
		return
	}

	provider := input.Provider
	if provider == "" {
		provider = payment.ProviderStripe
	}
	currency := input.Currency
	if currency == "" {
		currency = "usd"
	}

	req := payment.CheckoutRequest{
		AmountCents:   pricing.MonthlyTotal(input.ServiceType, setupFee),
		Currency:      currency,
		Description:   offering.Name + " monthly plan",
		CustomerEmail: c.GetString("userEmail"),
		OrderType:     models.OrderTypeSubscription,
		UserID:        c.GetString("userID"),
		Metadata:      map[string]string{"setup_fee_tier": input.SetupFeeTier},
	}

	result, err := h.Checkout.InitiateCheckout(c.Request.Context(), provider, req)
	if err != nil {
		if errors.Is(err, payment.ErrInitiationFailed) {
			utils.JSONError(c, http.StatusBadGateway, "payment initiation failed, please try again", "")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "could not start subscription checkout", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMySubscriptions returns the customer's subscription orders.
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	userID := c.GetString("userID")
	orders, err := h.Orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list orders", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list subscriptions", "")
		return
	}

	subs := []models.Order{}
	for _, ord := range orders {
		if ord.Type == models.OrderTypeSubscription {
			subs = append(subs, ord)
		}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// CancelSubscription cancels the provider subscription behind an order and
// records the cancellation locally.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	ord, err := h.Orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, orderRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "subscription not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load subscription", "")
		return
	}

	if ord.UserID != c.GetString("userID") {
		utils.JSONError(c, http.StatusForbidden, "access denied", "")
		return
	}
	if ord.Type != models.OrderTypeSubscription {
		utils.JSONError(c, http.StatusBadRequest, "order is not a subscription", "")
		return
	}

	subscriptionID := ord.Metadata["subscription_id"]
	if subscriptionID == "" {
		utils.JSONError(c, http.StatusConflict, "subscription is not active yet", "")
		return
	}

	gw, ok := h.Gateways[ord.Provider]
	if !ok {
		h.Logger.Error("no gateway for provider", zap.String("provider", ord.Provider))
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel subscription", "")
		return
	}
	if err := gw.CancelSubscription(c.Request.Context(), subscriptionID); err != nil {
		h.Logger.Error("provider cancellation failed",
			zap.String("orderID", ord.ID),
			zap.String("subscriptionID", subscriptionID),
			zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "failed to cancel subscription with provider", "")
		return
	}

	if err := h.Orders.UpdateStatus(c.Request.Context(), ord.ID, models.OrderCancelled); err != nil {
		h.Logger.Error("failed to record cancellation", zap.String("orderID", ord.ID), zap.Error(err))
	}

	h.Logger.Info("subscription cancelled",
		zap.String("orderID", ord.ID),
		zap.String("subscriptionID", subscriptionID))
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}
