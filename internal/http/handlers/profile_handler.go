package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"orgroles/internal/auth"
	"orgroles/internal/models"
	"orgroles/internal/rbac"
	"orgroles/internal/store"
)

// MeHandler returns the current user with access roles and primary assignment.
func MeHandler(st *store.Store, reg rbac.Registry, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := auth.Current(c)

		user, err := st.User(ctx, id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		roles, err := reg.RolesOf(ctx, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		var primary *models.UserAssignment
		if primary, err = st.PrimaryAssignment(ctx, user.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(c, err)
			return
		}
		admin, err := chk.Can(ctx, user.ID, rbac.CapManageOptions)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":               user,
			"roles":              roles,
			"primary_assignment": primary,
			"can_manage":         admin,
		})
	}
}
