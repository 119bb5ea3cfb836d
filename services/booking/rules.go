package booking

import (
	"time"

	"polarflow/models"
)

// MinAdvanceNotice is the minimum lead time before a visit can start.
const MinAdvanceNotice = 2 * time.Hour

// Business hours window: visits may start at 08:00 and the last start is
// 19:59 local time.
const (
	BusinessOpenHour  = 8
	BusinessCloseHour = 20
)

// IsValidBookingTime reports whether t honors the advance-notice minimum.
// The boundary is inclusive: exactly now+2h is valid.
func IsValidBookingTime(t, now time.Time) bool {
	return !t.Before(now.Add(MinAdvanceNotice))
}

// IsWithinBusinessHours reports whether t falls inside the local
// business-hours window. Independent of the advance-notice check; callers
// surface both failures separately.
func IsWithinBusinessHours(t time.Time) bool {
	h := t.Hour()
	return h >= BusinessOpenHour && h < BusinessCloseHour
}

// BookingData is the candidate input checked for completeness before the
// flow may reach payment.
type BookingData struct {
	ServiceType   string
	ScheduledAt   time.Time
	Address       *models.Address
	SetupFeeCents int64
}

// ValidationResult reports every missing required field, not just the
// first, so a form can highlight all incomplete sections at once.
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	MissingFields []string `json:"missingFields"`
}

// ValidateBookingData checks the four required booking fields.
func ValidateBookingData(data BookingData) ValidationResult {
	missing := []string{}
	if data.ServiceType == "" {
		missing = append(missing, "serviceType")
	}
	if data.ScheduledAt.IsZero() {
		missing = append(missing, "dateTime")
	}
	if data.Address == nil || data.Address.Line1 == "" {
		missing = append(missing, "address")
	}
	if data.SetupFeeCents <= 0 {
		missing = append(missing, "setupFee")
	}
	return ValidationResult{IsValid: len(missing) == 0, MissingFields: missing}
}
