package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/auth"
	"orgroles/internal/gating"
	"orgroles/internal/store"
)

// StorefrontPolicy tells the storefront how to treat the caller on a page.
func StorefrontPolicy(st *store.Store, gate gating.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := gating.ParsePage(c.Query("page"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown page"})
			return
		}
		settings, err := st.Settings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"policy": gate.Evaluate(settings, auth.Current(c).LoggedIn(), page)})
	}
}
