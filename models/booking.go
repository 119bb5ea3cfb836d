package models

import "time"

// BookingStatus tracks a scheduled service visit.
type BookingStatus string

const (
	BookingScheduled  BookingStatus = "scheduled"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

// Address is the delivery location for a mobile visit.
type Address struct {
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
}

// AddOns are the optional extras a customer can attach to a visit.
type AddOns struct {
	ExtraVisits         int `bson:"extra_visits" json:"extra_visits"`
	FamilyMembers       int `bson:"family_members" json:"family_members"`
	ExtendedTimeMinutes int `bson:"extended_time_minutes" json:"extended_time_minutes"`
}

// Booking represents one scheduled service visit. Created by the booking
// flow before payment; confirmed or cancelled by webhook reconciliation.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	UserID          string        `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CustomerEmail   string        `bson:"customer_email" json:"customer_email"`
	ServiceType     string        `bson:"service_type" json:"service_type"`
	ScheduledAt     time.Time     `bson:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	AddOns          AddOns        `bson:"add_ons" json:"add_ons"`
	Address         Address       `bson:"address" json:"address"`
	SetupFeeTier    string        `bson:"setup_fee_tier" json:"setup_fee_tier"`
	SetupFeeCents   int64         `bson:"setup_fee_cents" json:"setup_fee_cents"`
	TotalCents      int64         `bson:"total_cents" json:"total_cents"`
	Status          BookingStatus `bson:"status" json:"status"`
	Instructions    string        `bson:"instructions,omitempty" json:"instructions,omitempty"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}
