package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polarflow/config"
	"polarflow/cron"
	"polarflow/database"
	bookingRepoPkg "polarflow/database/repository/booking"
	orderRepoPkg "polarflow/database/repository/order"
	"polarflow/handlers"
	"polarflow/middleware"
	"polarflow/routes"
	"polarflow/services/booking"
	"polarflow/services/notification"
	"polarflow/services/payment"
	"polarflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	if err := config.AppConfig.Validate(); err != nil {
		logger.Sugar().Fatalf("main: invalid configuration: %v", err)
	}

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// repositories.
	orderRepo := orderRepoPkg.NewMongoOrderRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	if err := orderRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure order indexes: %v", err)
	}
	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// services.
	notifier := notification.NewResendEmailService(
		config.AppConfig.ResendAPIKey,
		config.AppConfig.ResendFromEmail,
		logger,
	)

	gateways := map[string]payment.Gateway{
		payment.ProviderStripe: &payment.StripeGateway{
			SuccessURL: config.AppConfig.CheckoutSuccessURL,
			CancelURL:  config.AppConfig.CheckoutCancelURL,
			Logger:     logger,
		},
		payment.ProviderCreem: payment.NewCreemGateway(
			config.AppConfig.CreemAPIKey,
			config.AppConfig.CreemAPIURL,
			logger,
		),
	}

	checkoutService := &payment.DefaultCheckoutService{
		Orders:   orderRepo,
		Bookings: bookingRepo,
		Gateways: gateways,
		Logger:   logger,
	}

	reminderScheduler := cron.NewReminderScheduler(logger)
	defer reminderScheduler.Close()

	reconciler := &payment.Reconciler{
		Orders:    orderRepo,
		Bookings:  bookingRepo,
		Notifier:  notifier,
		Reminders: reminderScheduler,
		Logger:    logger,
	}

	flowService := &booking.DefaultFlowService{
		CacheClient: utils.GetCacheClient(),
		BookingRepo: bookingRepo,
		Logger:      logger,
	}

	// handlers.
	handlerBundle := routes.Handlers{
		Flow:     handlers.NewBookingFlowHandler(flowService, logger),
		Bookings: handlers.NewBookingHandler(bookingRepo, logger),
		Checkout: handlers.NewCheckoutHandler(checkoutService, logger),
		Subscriptions: handlers.NewSubscriptionHandler(
			orderRepo, checkoutService, gateways, logger,
		),
		Webhooks: handlers.NewWebhookHandler(
			reconciler,
			config.AppConfig.StripeWebhookSecret,
			config.AppConfig.CreemWebhookSecret,
			logger,
		),
	}
	routes.SetupRoutes(router, handlerBundle)

	// background workers.
	cron.InitReminderWorker(bookingRepo, notifier)
	utils.StartHealthMonitor(database.MongoClient, utils.GetCacheClient(), utils.GetAuthCacheClient())

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
