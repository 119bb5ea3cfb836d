package pricing

import "polarflow/models"

// All amounts are integer cents. Float arithmetic is never used here so
// totals cannot drift from what the payment provider charges.
const (
	// FamilyMemberSurchargeCents is the flat per-head charge for each
	// additional family member joining a visit.
	FamilyMemberSurchargeCents int64 = 2500

	// ExtendedTimePerMinuteCents is the flat per-minute charge for
	// extending a session past its catalog duration.
	ExtendedTimePerMinuteCents int64 = 100

	// RepeatVisitDiscountPercent is the discount applied to each extra
	// visit booked alongside the first.
	RepeatVisitDiscountPercent int64 = 20
)

// BasePriceCents returns the per-session base price for a service type.
// An unknown service type yields zero; callers are expected to validate
// against the catalog before pricing.
func BasePriceCents(serviceType string) int64 {
	offering, ok := models.OfferingByType(serviceType)
	if !ok {
		return 0
	}
	return offering.BasePriceCents
}

// AddOnCost computes the cost of the selected add-ons on top of the base
// price. The result is always non-negative for non-negative inputs.
func AddOnCost(addOns models.AddOns, basePriceCents int64) int64 {
	cost := int64(addOns.FamilyMembers) * FamilyMemberSurchargeCents
	cost += int64(addOns.ExtendedTimeMinutes) * ExtendedTimePerMinuteCents

	discountedVisit := basePriceCents * (100 - RepeatVisitDiscountPercent) / 100
	cost += int64(addOns.ExtraVisits) * discountedVisit

	return cost
}

// Total computes the full charge for a visit: service base price plus
// add-on cost plus the one-time setup fee.
func Total(serviceType string, addOns models.AddOns, setupFeeCents int64) int64 {
	base := BasePriceCents(serviceType)
	return base + AddOnCost(addOns, base) + setupFeeCents
}

// MonthlyTotal computes the first charge of a subscription: the monthly
// plan price plus the one-time setup fee.
func MonthlyTotal(serviceType string, setupFeeCents int64) int64 {
	offering, ok := models.OfferingByType(serviceType)
	if !ok {
		return setupFeeCents
	}
	return offering.MonthlyPriceCents + setupFeeCents
}
