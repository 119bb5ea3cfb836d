package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingRepo "polarflow/database/repository/booking"
	orderRepo "polarflow/database/repository/order"
	"polarflow/models"
	"polarflow/services/notification"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// VisitReminderScheduler enqueues a pre-visit reminder once a booking is
// confirmed. Best-effort; reconciliation never fails on it.
type VisitReminderScheduler interface {
	ScheduleVisitReminder(b *models.Booking) error
}

// Reconciler applies provider webhook events to local Order and Booking
// state. Every transition is idempotent so the provider's at-least-once
// delivery cannot double-apply an event. Events referencing records this
// system cannot find are logged with their identifiers and acknowledged;
// the provider's own retry policy is the only retry mechanism.
type Reconciler struct {
	Orders    orderRepo.OrderRepository
	Bookings  bookingRepo.BookingRepository
	Notifier  notification.NotificationService
	Reminders VisitReminderScheduler
	Logger    *zap.Logger
}

// HandleCreemEvent dispatches a verified Creem webhook event.
func (r *Reconciler) HandleCreemEvent(ctx context.Context, ev models.CreemEvent) error {
	switch ev.EventType {
	case "checkout.completed":
		return r.completeCheckout(ctx, ev.Data.CheckoutID, ev.Data.TransactionID)
	case "checkout.expired":
		return r.failCheckout(ctx, ev.Data.CheckoutID, models.OrderExpired)
	case "checkout.failed":
		return r.failCheckout(ctx, ev.Data.CheckoutID, models.OrderFailed)
	case "subscription.updated":
		return r.subscriptionUpdated(ctx, ev.Data.SubscriptionID, ev.Data.Status, ev.Data.CurrentPeriodEnd)
	case "subscription.deleted":
		return r.subscriptionDeleted(ctx, ev.Data.SubscriptionID)
	case "refund.created":
		return r.refundCreated(ctx, ev.Data)
	default:
		r.Logger.Info("ignoring unrecognized creem event",
			zap.String("eventType", ev.EventType),
			zap.String("webhookID", ev.WebhookID))
		return nil
	}
}

// HandleStripeEvent dispatches a verified Stripe webhook event.
func (r *Reconciler) HandleStripeEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to decode checkout session: %w", err)
		}
		txnID := ""
		if sess.PaymentIntent != nil {
			txnID = sess.PaymentIntent.ID
		}
		if sess.Subscription != nil {
			if err := r.stampSubscription(ctx, sess.ID, sess.Subscription.ID); err != nil {
				r.Logger.Warn("failed to stamp subscription id",
					zap.String("sessionID", sess.ID), zap.Error(err))
			}
		}
		return r.completeCheckout(ctx, sess.ID, txnID)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return r.failCheckout(ctx, sess.ID, models.OrderExpired)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC().Format(time.RFC3339)
		return r.subscriptionUpdated(ctx, sub.ID, string(sub.Status), periodEnd)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		return r.subscriptionDeleted(ctx, sub.ID)

	case "payment_intent.succeeded", "payment_intent.payment_failed":
		// Checkout session events are the source of truth for order state;
		// payment intent events are recorded for the audit log only.
		r.Logger.Debug("stripe payment intent event", zap.String("eventType", string(event.Type)))
		return nil

	default:
		r.Logger.Info("ignoring unrecognized stripe event", zap.String("eventType", string(event.Type)))
		return nil
	}
}

// completeCheckout marks the correlated order paid, confirms any linked
// booking, and sends the confirmation email at most once.
func (r *Reconciler) completeCheckout(ctx context.Context, sessionID, transactionID string) error {
	ord, err := r.Orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return r.dropMissing(err, "checkout.completed", sessionID)
	}

	if err := r.Orders.MarkPaid(ctx, ord.ID, transactionID, time.Now()); err != nil {
		return err
	}

	if ord.BookingID != "" {
		if err := r.Bookings.UpdateStatus(ctx, ord.BookingID, models.BookingConfirmed); err != nil {
			r.Logger.Error("failed to confirm booking",
				zap.String("orderID", ord.ID),
				zap.String("bookingID", ord.BookingID),
				zap.Error(err))
		} else {
			r.scheduleReminder(ctx, ord.BookingID)
		}
	}

	// Claim the notification flag before sending: the conditional update
	// makes the claim atomic, so duplicate deliveries cannot both win.
	claimed, err := r.Orders.ClaimNotification(ctx, ord.ID)
	if err != nil {
		return err
	}
	if claimed {
		r.sendConfirmation(ctx, ord)
	}

	r.Logger.Info("order reconciled as paid",
		zap.String("orderID", ord.ID),
		zap.String("sessionID", sessionID),
		zap.String("transactionID", transactionID))
	return nil
}

// failCheckout transitions the order to failed/expired and cancels any
// linked booking.
func (r *Reconciler) failCheckout(ctx context.Context, sessionID string, status models.OrderStatus) error {
	ord, err := r.Orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return r.dropMissing(err, string(status), sessionID)
	}

	if err := r.Orders.UpdateStatus(ctx, ord.ID, status); err != nil {
		return err
	}
	if ord.BookingID != "" {
		if err := r.Bookings.UpdateStatus(ctx, ord.BookingID, models.BookingCancelled); err != nil {
			r.Logger.Error("failed to cancel booking",
				zap.String("orderID", ord.ID),
				zap.String("bookingID", ord.BookingID),
				zap.Error(err))
		}
	}

	r.Logger.Info("order reconciled as unpaid",
		zap.String("orderID", ord.ID),
		zap.String("sessionID", sessionID),
		zap.String("status", string(status)))
	return nil
}

func (r *Reconciler) subscriptionUpdated(ctx context.Context, subscriptionID, providerStatus, periodEnd string) error {
	ord, err := r.Orders.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return r.dropMissing(err, "subscription.updated", subscriptionID)
	}

	status := models.OrderCancelled
	if providerStatus == "active" {
		status = models.OrderPaid
	}
	if status == models.OrderPaid {
		if err := r.Orders.MarkPaid(ctx, ord.ID, ord.TransactionID, time.Now()); err != nil {
			return err
		}
	} else if err := r.Orders.UpdateStatus(ctx, ord.ID, status); err != nil {
		return err
	}

	return r.Orders.StampMetadata(ctx, ord.ID, map[string]string{
		"subscription_status": providerStatus,
		"current_period_end":  periodEnd,
	})
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, subscriptionID string) error {
	ord, err := r.Orders.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return r.dropMissing(err, "subscription.deleted", subscriptionID)
	}

	if err := r.Orders.UpdateStatus(ctx, ord.ID, models.OrderCancelled); err != nil {
		return err
	}
	return r.Orders.StampMetadata(ctx, ord.ID, map[string]string{
		"subscription_deleted_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Reconciler) refundCreated(ctx context.Context, data models.CreemEventData) error {
	ord, err := r.Orders.GetBySessionID(ctx, data.CheckoutID)
	if err != nil {
		return r.dropMissing(err, "refund.created", data.CheckoutID)
	}

	if err := r.Orders.UpdateStatus(ctx, ord.ID, models.OrderRefunded); err != nil {
		return err
	}
	return r.Orders.StampMetadata(ctx, ord.ID, map[string]string{
		"refund_id":           data.RefundID,
		"refund_amount_cents": fmt.Sprintf("%d", data.AmountCents),
		"refunded_at":         time.Now().UTC().Format(time.RFC3339),
	})
}

// stampSubscription records the provider subscription id on the order so
// later subscription events can be correlated.
func (r *Reconciler) stampSubscription(ctx context.Context, sessionID, subscriptionID string) error {
	ord, err := r.Orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	return r.Orders.StampMetadata(ctx, ord.ID, map[string]string{
		"subscription_id": subscriptionID,
	})
}

// dropMissing logs an event that refers to no local record and swallows
// the error: the endpoint still acknowledges the delivery, since retrying
// cannot resolve a missing correlation. Flagged for manual support review.
func (r *Reconciler) dropMissing(err error, eventType, identifier string) error {
	if errors.Is(err, orderRepo.ErrNotFound) {
		r.Logger.Warn("webhook event references unknown order; dropping",
			zap.String("eventType", eventType),
			zap.String("identifier", identifier))
		return nil
	}
	return err
}

func (r *Reconciler) sendConfirmation(ctx context.Context, ord *models.Order) {
	var b *models.Booking
	if ord.BookingID != "" {
		var err error
		b, err = r.Bookings.GetByID(ctx, ord.BookingID)
		if err != nil {
			r.Logger.Warn("could not load booking for confirmation email",
				zap.String("bookingID", ord.BookingID), zap.Error(err))
		}
	}
	if err := r.Notifier.SendOrderConfirmation(ctx, ord, b); err != nil {
		// The claim was already consumed; a failed send is logged, not
		// retried, matching the at-most-once contract.
		r.Logger.Error("failed to send confirmation email",
			zap.String("orderID", ord.ID), zap.Error(err))
	}
}

func (r *Reconciler) scheduleReminder(ctx context.Context, bookingID string) {
	if r.Reminders == nil {
		return
	}
	b, err := r.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		r.Logger.Warn("could not load booking for reminder scheduling",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}
	if err := r.Reminders.ScheduleVisitReminder(b); err != nil {
		r.Logger.Warn("failed to schedule visit reminder",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}
