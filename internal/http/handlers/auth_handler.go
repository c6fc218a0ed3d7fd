package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"orgroles/internal/auth"
	"orgroles/internal/models"
	"orgroles/internal/onboarding"
	"orgroles/internal/store"
)

// LoginHandler authenticates the user and returns JWT
func LoginHandler(st *store.Store, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := st.UserByEmail(c.Request.Context(), input.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if user.Status != models.UserActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}

		issueSession(c, user, jwtSecret, ttl, http.StatusOK)
	}
}

// issueSession sets the session cookie and returns the token in JSON for API use.
func issueSession(c *gin.Context, user *models.User, jwtSecret string, ttl time.Duration, status int) {
	tokenString, _, err := auth.IssueSession(jwtSecret, user.ID, user.Email, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}

	c.SetCookie(auth.CookieName, tokenString, int(ttl.Seconds()), "/", "", false, true)

	c.JSON(status, gin.H{
		"token": tokenString,
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.Name,
			"company_id":    user.CompanyID,
			"department_id": user.DepartmentID,
			"job_role_id":   user.JobRoleID,
		},
	})
}

// LogoutHandler clears the session cookie.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
		if auth.WantsHTML(c) {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RegistrationForm returns the dropdown options for the sign-up form.
func RegistrationForm(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var posted onboarding.Selection
		if err := c.ShouldBindQuery(&posted); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		form, err := svc.RegistrationForm(c.Request.Context(), posted)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, form)
	}
}

// RegisterHandler creates an account with its organisation selection and
// signs it in.
func RegisterHandler(svc *onboarding.Service, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email        string `json:"email" binding:"required,email"`
			Name         string `json:"name"`
			Password     string `json:"password" binding:"required,min=8"`
			CompanyID    uint64 `json:"company_id"`
			DepartmentID uint64 `json:"department_id"`
			JobRoleID    uint64 `json:"job_role_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := svc.Register(c.Request.Context(), onboarding.Registration{
			Email:    input.Email,
			Name:     input.Name,
			Password: input.Password,
			Selection: onboarding.Selection{
				CompanyID:    input.CompanyID,
				DepartmentID: input.DepartmentID,
				JobRoleID:    input.JobRoleID,
			},
		}, source(c))
		if errors.Is(err, onboarding.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}

		issueSession(c, user, jwtSecret, ttl, http.StatusCreated)
	}
}
