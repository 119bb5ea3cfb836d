package models

import "time"

// Booking flow steps, in the order the customer walks through them.
const (
	StepService      = "service"
	StepAddress      = "address"
	StepCalendar     = "calendar"
	StepPayment      = "payment"
	StepConfirmation = "confirmation"
)

// FlowSession holds a customer's progress through the booking flow. It
// lives in Redis for the duration of the flow and is destroyed on cancel
// or expiry; it is never shared across sessions.
type FlowSession struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId,omitempty"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	CurrentStep    string    `json:"currentStep"`
	CompletedSteps []string  `json:"completedSteps"`
	ServiceType    string    `json:"serviceType,omitempty"`
	Address        *Address  `json:"address,omitempty"`
	ScheduledAt    time.Time `json:"scheduledAt,omitempty"`
	SetupFeeTier   string    `json:"setupFeeTier,omitempty"`
	SetupFeeCents  int64     `json:"setupFeeCents"`
	AddOns         AddOns    `json:"addOns"`
	Instructions   string    `json:"instructions,omitempty"`
	BookingID      string    `json:"bookingId,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
