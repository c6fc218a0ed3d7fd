package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"orgroles/internal/models"
)

const rejectKey = "auth_reject"

type rejection struct {
	status int
	msg    string
}

// Identify resolves the caller from the Authorization header or the "token"
// cookie. Requests without a usable session continue as guests; the reason is
// kept for RequireLogin.
func Identify(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")

		// Fallback: read from cookie if no Authorization header
		if tokenStr == "" {
			if cookie, err := c.Cookie(CookieName); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if tokenStr == "" {
			c.Set(rejectKey, rejection{http.StatusUnauthorized, "missing bearer token"})
			c.Next()
			return
		}

		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))
		claims, err := parseSession(secret, tokenStr)
		if err != nil {
			c.Set(rejectKey, rejection{http.StatusUnauthorized, "invalid or expired token"})
			c.Next()
			return
		}

		// Verify user still exists and is active
		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			c.Set(rejectKey, rejection{http.StatusUnauthorized, "user not found"})
			c.Next()
			return
		}
		if user.Status != models.UserActive {
			c.Set(rejectKey, rejection{http.StatusForbidden, "account suspended"})
			c.Next()
			return
		}

		c.Set("claims", claims)
		ctx := WithIdentity(c.Request.Context(), Identity{UserID: user.ID, Email: user.Email})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireLogin aborts guest requests. Browser navigations are sent to the
// login page, API calls get a JSON error.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Current(c).LoggedIn() {
			c.Next()
			return
		}
		rej := rejection{http.StatusUnauthorized, "missing bearer token"}
		if v, ok := c.Get(rejectKey); ok {
			rej = v.(rejection)
		}
		if WantsHTML(c) && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(rej.status, gin.H{"error": rej.msg})
	}
}

// WantsHTML reports whether the caller is a browser form or navigation.
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
