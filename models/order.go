package models

import "time"

// OrderStatus tracks the lifecycle of a single payment attempt.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderFailed     OrderStatus = "failed"
	OrderExpired    OrderStatus = "expired"
	OrderRefunded   OrderStatus = "refunded"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderType distinguishes what the payment was for.
type OrderType string

const (
	OrderTypeSubscription OrderType = "subscription"
	OrderTypeOneTime      OrderType = "one_time"
	OrderTypeSetupFee     OrderType = "setup_fee"
)

// Order represents one payment attempt. It is created when a checkout
// session is initiated and afterwards mutated only by webhook
// reconciliation; orders are never deleted, only status-transitioned.
type Order struct {
	ID            string      `bson:"id" json:"id"`
	UserID        string      `bson:"user_id,omitempty" json:"user_id,omitempty"` // empty for guest checkouts
	CustomerEmail string      `bson:"customer_email" json:"customer_email"`
	AmountCents   int64       `bson:"amount_cents" json:"amount_cents"`
	Currency      string      `bson:"currency" json:"currency"`
	Status        OrderStatus `bson:"status" json:"status"`
	Type          OrderType   `bson:"type" json:"type"`

	// Provider is "stripe" or "creem"; SessionID is the provider's
	// checkout/session identifier used to correlate webhook events.
	Provider  string `bson:"provider" json:"provider"`
	SessionID string `bson:"session_id,omitempty" json:"session_id,omitempty"`

	// BookingID links the payment to a scheduled visit. Validated against
	// the bookings collection at order creation; empty when the order is
	// not tied to a visit (e.g. a bare subscription).
	BookingID string `bson:"booking_id,omitempty" json:"booking_id,omitempty"`

	// Notified guards the confirmation email: flipped false->true by an
	// atomic conditional update so at most one reconciliation run sends it.
	Notified bool `bson:"notified" json:"notified"`

	TransactionID string     `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"`
}
