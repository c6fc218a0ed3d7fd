package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/auth"
	"orgroles/internal/onboarding"
)

// AccountOrganization returns the caller's selection with the option lists.
func AccountOrganization(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		showOrganization(c, svc, auth.Current(c).UserID)
	}
}

// UpdateAccountOrganization saves the caller's selection.
func UpdateAccountOrganization(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		saveOrganization(c, svc, auth.Current(c).UserID)
	}
}

func showOrganization(c *gin.Context, svc *onboarding.Service, userID uint64) {
	form, err := svc.AccountForm(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func saveOrganization(c *gin.Context, svc *onboarding.Service, userID uint64) {
	var sel onboarding.Selection
	if err := c.ShouldBind(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := svc.UpdateAccount(c.Request.Context(), userID, sel, source(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved, "selection": sel})
}
