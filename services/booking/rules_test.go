package booking

import (
	"testing"
	"time"

	"polarflow/models"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBookingTimeBoundary(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	assert.False(t, IsValidBookingTime(now.Add(2*time.Hour-time.Second), now))
	assert.True(t, IsValidBookingTime(now.Add(2*time.Hour), now))
	assert.True(t, IsValidBookingTime(now.Add(48*time.Hour), now))
}

func TestIsWithinBusinessHours(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsWithinBusinessHours(day.Add(7*time.Hour+59*time.Minute)))
	assert.True(t, IsWithinBusinessHours(day.Add(8*time.Hour)))
	assert.True(t, IsWithinBusinessHours(day.Add(19*time.Hour+59*time.Minute)))
	assert.False(t, IsWithinBusinessHours(day.Add(20*time.Hour)))
}

func TestAdvanceNoticeAndBusinessHoursAreIndependent(t *testing.T) {
	// 21:00 tonight, 1 hour from now: fails both checks, and each check
	// reports its own failure rather than one masking the other.
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)
	candidate := now.Add(time.Hour)

	assert.False(t, IsValidBookingTime(candidate, now))
	assert.False(t, IsWithinBusinessHours(candidate))
}

func TestValidateBookingData(t *testing.T) {
	res := ValidateBookingData(BookingData{})
	assert.False(t, res.IsValid)
	assert.ElementsMatch(t, []string{"serviceType", "dateTime", "address", "setupFee"}, res.MissingFields)

	res = ValidateBookingData(BookingData{
		ServiceType:   models.ServiceColdPlunge,
		ScheduledAt:   time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC),
		Address:       &models.Address{Line1: "12 Fjord Lane", City: "Bergen"},
		SetupFeeCents: 25000,
	})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.MissingFields)

	res = ValidateBookingData(BookingData{ServiceType: models.ServiceCombo})
	assert.False(t, res.IsValid)
	assert.ElementsMatch(t, []string{"dateTime", "address", "setupFee"}, res.MissingFields)
}
