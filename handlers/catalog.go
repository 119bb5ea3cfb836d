package handlers

import (
	"net/http"

	"polarflow/models"

	"github.com/gin-gonic/gin"
)

// GetAvailableServicesHandler returns the static service catalog and the
// setup fee tiers.
func GetAvailableServicesHandler(c *gin.Context) {
	tiers := gin.H{}
	for _, tier := range []string{models.SetupTierBasic, models.SetupTierStandard, models.SetupTierPremium} {
		fee, _ := models.SetupFeeCents(tier)
		tiers[tier] = fee
	}

	c.JSON(http.StatusOK, gin.H{
		"services":        models.Offerings(),
		"setup_fee_tiers": tiers,
	})
}
