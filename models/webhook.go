package models

// CreemEvent is the webhook envelope delivered by the Creem payment
// provider. The signature over the raw body is verified before this is
// decoded.
type CreemEvent struct {
	EventType string         `json:"event_type"`
	Data      CreemEventData `json:"data"`
	CreatedAt string         `json:"created_at"`
	WebhookID string         `json:"webhook_id"`
}

// CreemEventData carries the identifiers relevant to each event type;
// unused fields are left empty by the provider.
type CreemEventData struct {
	CheckoutID       string            `json:"checkout_id,omitempty"`
	TransactionID    string            `json:"transaction_id,omitempty"`
	SubscriptionID   string            `json:"subscription_id,omitempty"`
	RefundID         string            `json:"refund_id,omitempty"`
	AmountCents      int64             `json:"amount,omitempty"`
	Status           string            `json:"status,omitempty"`
	CurrentPeriodEnd string            `json:"current_period_end,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Error            string            `json:"error,omitempty"`
}
