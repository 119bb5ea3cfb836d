package orderRepo

import (
	"context"
	"time"

	"polarflow/models"
)

// OrderRepository defines persistence operations for payment orders.
// Orders are never deleted; every mutation is a status transition or a
// metadata stamp.
type OrderRepository interface {
	Create(ctx context.Context, ord *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)

	// AttachSession records the provider session identifier once the
	// checkout session exists and moves the order to processing.
	AttachSession(ctx context.Context, id, sessionID string) error

	// MarkPaid transitions pending/processing orders to paid and stamps the
	// transaction details. Applying it to an already-paid order is a no-op.
	MarkPaid(ctx context.Context, id, transactionID string, paidAt time.Time) error

	// UpdateStatus applies a status transition. A paid order only ever
	// moves forward, to refunded or cancelled; attempts to regress it to
	// pending/processing/failed/expired are ignored.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error

	// ClaimNotification atomically flips the notified flag false->true and
	// reports whether this caller won the claim.
	ClaimNotification(ctx context.Context, id string) (bool, error)

	// StampMetadata merges the given keys into the order metadata map.
	StampMetadata(ctx context.Context, id string, fields map[string]string) error
}
