package notification

import (
	"context"

	"polarflow/models"
)

// NotificationService delivers customer-facing messages. Delivery is
// best-effort: callers log failures and move on.
type NotificationService interface {
	// SendOrderConfirmation emails the customer after a successful payment.
	// The booking is nil when the order is not tied to a visit.
	SendOrderConfirmation(ctx context.Context, ord *models.Order, b *models.Booking) error

	// SendVisitReminder emails the customer ahead of a confirmed visit.
	SendVisitReminder(ctx context.Context, email string, b *models.Booking) error
}
