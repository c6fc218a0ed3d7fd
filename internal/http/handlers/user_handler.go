package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/auth"
	"orgroles/internal/models"
	"orgroles/internal/onboarding"
	"orgroles/internal/store"
)

// ListUsers returns all users from DB
func ListUsers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := st.Users(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// UserOrganization is the admin view of a user's selection.
func UserOrganization(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		showOrganization(c, svc, id)
	}
}

// UpdateUserOrganization lets an admin change a user's selection, with the
// same rules as the account page.
func UpdateUserOrganization(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		saveOrganization(c, svc, id)
	}
}

// SetUserStatus activates or suspends an account.
func SetUserStatus(st *store.Store, status models.UserStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if status != models.UserActive && id == auth.Current(c).UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot suspend your own account"})
			return
		}
		if err := st.SetUserStatus(c.Request.Context(), id, status); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
	}
}
