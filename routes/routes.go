package routes

import (
	"net/http"

	"polarflow/handlers"
	"polarflow/middleware"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the constructed handler set for route registration.
type Handlers struct {
	Flow          *handlers.BookingFlowHandler
	Bookings      *handlers.BookingHandler
	Checkout      *handlers.CheckoutHandler
	Subscriptions *handlers.SubscriptionHandler
	Webhooks      *handlers.WebhookHandler
}

// SetupRoutes registers every route on the router.
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	api := router.Group("/api")

	api.GET("/services", handlers.GetAvailableServicesHandler)

	// Guests can walk the booking flow; identity is attached when present.
	flow := api.Group("/booking", middleware.AuthOptional())
	{
		flow.POST("/session", h.Flow.StartSession)
		flow.GET("/session/:sessionID", h.Flow.GetSession)
		flow.PUT("/session/:sessionID", h.Flow.UpdateSession)
		flow.POST("/session/:sessionID/advance", h.Flow.AdvanceSession)
		flow.DELETE("/session/:sessionID", h.Flow.CancelSession)
		flow.POST("/validate", h.Flow.ValidateBooking)
	}

	payments := api.Group("/payments", middleware.AuthOptional())
	{
		payments.POST("/checkout", h.Checkout.StripeCheckout)
		payments.POST("/creem/checkout", h.Checkout.CreemCheckout)
	}

	subscriptions := api.Group("/subscriptions", middleware.AuthRequired())
	{
		subscriptions.POST("", h.Subscriptions.CreateSubscription)
		subscriptions.GET("", h.Subscriptions.ListMySubscriptions)
		subscriptions.DELETE("/:id", h.Subscriptions.CancelSubscription)
	}

	bookings := api.Group("/bookings", middleware.AuthRequired())
	{
		bookings.GET("", h.Bookings.ListMyBookings)
		bookings.GET("/:id", h.Bookings.GetBooking)
	}

	api.POST("/auth/revoke", middleware.AuthRequired(), handlers.RevokeTokenHandler)

	// Webhooks authenticate by signature, not bearer token.
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.Webhooks.StripeWebhook)
		webhooks.POST("/creem", h.Webhooks.CreemWebhook)
	}
}
