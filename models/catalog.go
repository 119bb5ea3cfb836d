package models

// Service types offered by the mobile wellness fleet.
const (
	ServiceColdPlunge    = "cold_plunge"
	ServiceInfraredSauna = "infrared_sauna"
	ServiceCombo         = "combo"
)

// Setup fee tiers, charged once on top of the session or plan price.
const (
	SetupTierBasic    = "basic"
	SetupTierStandard = "standard"
	SetupTierPremium  = "premium"
)

// ServiceOffering is a static catalog entry. Reference data only; never
// user-mutable.
type ServiceOffering struct {
	Type              string   `json:"type"`
	Name              string   `json:"name"`
	BasePriceCents    int64    `json:"base_price_cents"`
	MonthlyPriceCents int64    `json:"monthly_price_cents"`
	DurationMinutes   int      `json:"duration_minutes"`
	Features          []string `json:"features"`
}

var offerings = []ServiceOffering{
	{
		Type:              ServiceColdPlunge,
		Name:              "Cold Plunge",
		BasePriceCents:    15000,
		MonthlyPriceCents: 40000,
		DurationMinutes:   60,
		Features:          []string{"Mobile cold plunge tub", "Water chilled to 3-7°C", "Guided breathwork", "Towels and setup included"},
	},
	{
		Type:              ServiceInfraredSauna,
		Name:              "Infrared Sauna",
		BasePriceCents:    18000,
		MonthlyPriceCents: 48000,
		DurationMinutes:   60,
		Features:          []string{"Mobile infrared sauna", "Full-spectrum panels", "Chromotherapy lighting", "Towels and setup included"},
	},
	{
		Type:              ServiceCombo,
		Name:              "Contrast Therapy Combo",
		BasePriceCents:    27500,
		MonthlyPriceCents: 75000,
		DurationMinutes:   90,
		Features:          []string{"Cold plunge and infrared sauna", "Guided contrast protocol", "Extended 90 minute session"},
	},
}

var setupFees = map[string]int64{
	SetupTierBasic:    25000,
	SetupTierStandard: 45000,
	SetupTierPremium:  75000,
}

// Offerings returns the full service catalog.
func Offerings() []ServiceOffering {
	out := make([]ServiceOffering, len(offerings))
	copy(out, offerings)
	return out
}

// OfferingByType looks up a catalog entry by service type.
func OfferingByType(serviceType string) (ServiceOffering, bool) {
	for _, o := range offerings {
		if o.Type == serviceType {
			return o, true
		}
	}
	return ServiceOffering{}, false
}

// SetupFeeCents resolves a setup fee tier to its one-time charge.
func SetupFeeCents(tier string) (int64, bool) {
	fee, ok := setupFees[tier]
	return fee, ok
}
