package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/store"
)

func GetSettings(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := st.Settings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

// UpdateSettings changes only the flags present in the body.
func UpdateSettings(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			GuestCanSeePrice          *bool `json:"guest_can_see_price"`
			DisableGuestPurchase      *bool `json:"disable_guest_purchase"`
			CompanyRequiredOnboarding *bool `json:"company_required_onboarding"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		settings, err := st.Settings(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if input.GuestCanSeePrice != nil {
			settings.GuestCanSeePrice = *input.GuestCanSeePrice
		}
		if input.DisableGuestPurchase != nil {
			settings.DisableGuestPurchase = *input.DisableGuestPurchase
		}
		if input.CompanyRequiredOnboarding != nil {
			settings.CompanyRequiredOnboarding = *input.CompanyRequiredOnboarding
		}
		if err := st.SaveSettings(ctx, settings); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}
