package pricing

import (
	"testing"

	"polarflow/models"

	"github.com/stretchr/testify/assert"
)

func TestBasePriceCents(t *testing.T) {
	assert.Equal(t, int64(15000), BasePriceCents(models.ServiceColdPlunge))
	assert.Equal(t, int64(18000), BasePriceCents(models.ServiceInfraredSauna))
	assert.Equal(t, int64(27500), BasePriceCents(models.ServiceCombo))
	assert.Equal(t, int64(0), BasePriceCents("hot_yoga"))
}

func TestAddOnCost(t *testing.T) {
	base := BasePriceCents(models.ServiceColdPlunge)

	assert.Equal(t, int64(0), AddOnCost(models.AddOns{}, base))

	// Two family members at the flat per-head surcharge.
	assert.Equal(t, int64(5000), AddOnCost(models.AddOns{FamilyMembers: 2}, base))

	// Thirty extra minutes at the per-minute surcharge.
	assert.Equal(t, int64(3000), AddOnCost(models.AddOns{ExtendedTimeMinutes: 30}, base))

	// One extra visit at base price minus the repeat-visit discount.
	assert.Equal(t, int64(12000), AddOnCost(models.AddOns{ExtraVisits: 1}, base))

	combined := models.AddOns{ExtraVisits: 1, FamilyMembers: 2, ExtendedTimeMinutes: 30}
	assert.Equal(t, int64(20000), AddOnCost(combined, base))
}

func TestTotalNeverBelowBasePlusSetup(t *testing.T) {
	addOnGrids := []models.AddOns{
		{},
		{ExtraVisits: 3},
		{FamilyMembers: 4},
		{ExtendedTimeMinutes: 45},
		{ExtraVisits: 2, FamilyMembers: 1, ExtendedTimeMinutes: 15},
	}
	for _, serviceType := range []string{models.ServiceColdPlunge, models.ServiceInfraredSauna, models.ServiceCombo} {
		for _, addOns := range addOnGrids {
			setupFee, _ := models.SetupFeeCents(models.SetupTierBasic)
			total := Total(serviceType, addOns, setupFee)
			assert.GreaterOrEqual(t, total, BasePriceCents(serviceType)+setupFee,
				"add-on cost must be non-negative for %s %+v", serviceType, addOns)
		}
	}
}

func TestTotalUnknownServiceType(t *testing.T) {
	// Unknown service type prices as a zero base; callers validate first.
	assert.Equal(t, int64(25000), Total("unknown", models.AddOns{}, 25000))
}

func TestMonthlyTotalMatchesCheckoutScenario(t *testing.T) {
	// $400.00 monthly plan with a $250.00 basic setup fee.
	setupFee, ok := models.SetupFeeCents(models.SetupTierBasic)
	assert.True(t, ok)
	assert.Equal(t, int64(65000), MonthlyTotal(models.ServiceColdPlunge, setupFee))
}
