package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/rbac"
	"orgroles/internal/sanitize"
)

type accessRoleView struct {
	Key          string          `json:"key"`
	DisplayName  string          `json:"display_name"`
	Capabilities map[string]bool `json:"capabilities"`
	IsSystem     bool            `json:"is_system"`
}

// ListAccessRoles returns the access-role registry.
func ListAccessRoles(reg rbac.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := reg.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]accessRoleView, 0, len(roles))
		for _, r := range roles {
			out = append(out, accessRoleView{
				Key:          r.Key,
				DisplayName:  r.DisplayName,
				Capabilities: rbac.Capabilities(r),
				IsSystem:     r.IsSystem,
			})
		}
		c.JSON(http.StatusOK, gin.H{"roles": out})
	}
}

func CreateAccessRole(reg rbac.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Key          string          `json:"key" binding:"required"`
			DisplayName  string          `json:"display_name"`
			Capabilities map[string]bool `json:"capabilities"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		key := sanitize.Key(input.Key)
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
			return
		}

		ctx := c.Request.Context()
		exists, err := reg.Exists(ctx, key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "access role already exists"})
			return
		}
		if err := reg.Create(ctx, key, input.DisplayName, input.Capabilities); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		role, err := reg.Lookup(ctx, key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"role": accessRoleView{
			Key:          role.Key,
			DisplayName:  role.DisplayName,
			Capabilities: rbac.Capabilities(*role),
		}})
	}
}
