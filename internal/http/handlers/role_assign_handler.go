package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"orgroles/internal/rbac"
	"orgroles/internal/store"
)

// ListUserRoles returns the access roles granted to a user.
func ListUserRoles(reg rbac.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		keys, err := reg.RolesOf(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "roles": keys})
	}
}

// AssignRoles grants existing access roles to a user.
func AssignRoles(st *store.Store, reg rbac.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Roles []string `json:"roles" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if _, err := st.User(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		for _, key := range input.Roles {
			if _, err := reg.Lookup(ctx, key); errors.Is(err, rbac.ErrRoleNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown access role", "role": key})
				return
			} else if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		for _, key := range input.Roles {
			if err := reg.Grant(ctx, id, key); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		keys, err := reg.RolesOf(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "roles": keys})
	}
}
