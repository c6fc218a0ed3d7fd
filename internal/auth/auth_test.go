package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgroles/internal/auth"
	"orgroles/internal/dbtest"
	"orgroles/internal/models"
)

const secret = "test-secret"

func TestNonces(t *testing.T) {
	n := auth.NewNonces(secret, time.Hour)

	tok, err := n.Issue(auth.ActionImport, 7)
	require.NoError(t, err)

	assert.True(t, n.Verify(tok, auth.ActionImport, 7))
	assert.False(t, n.Verify(tok, auth.ActionExport, 7))
	assert.False(t, n.Verify(tok, auth.ActionImport, 8))
	assert.False(t, n.Verify("", auth.ActionImport, 7))
	assert.False(t, auth.NewNonces("other", time.Hour).Verify(tok, auth.ActionImport, 7))

	expired, err := auth.NewNonces(secret, -time.Minute).Issue(auth.ActionLookup, 0)
	require.NoError(t, err)
	assert.False(t, n.Verify(expired, auth.ActionLookup, 0))
}

func TestSessionTokenIsNotANonce(t *testing.T) {
	session, _, err := auth.IssueSession(secret, 7, "a@example.com", time.Hour)
	require.NoError(t, err)
	assert.False(t, auth.NewNonces(secret, time.Hour).Verify(session, "", 7))
}

func newRouter(t *testing.T) (*gin.Engine, models.User, models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.Open(t)

	active := models.User{Email: "ann@example.com", Name: "Ann", PasswordHash: "x", Status: models.UserActive}
	suspended := models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", Status: models.UserSuspended}
	require.NoError(t, gdb.Create(&active).Error)
	require.NoError(t, gdb.Create(&suspended).Error)

	r := gin.New()
	r.Use(auth.Identify(gdb, secret))
	r.GET("/whoami", func(c *gin.Context) {
		id := auth.Current(c)
		c.JSON(http.StatusOK, gin.H{"logged_in": id.LoggedIn(), "email": id.Email})
	})
	r.GET("/private", auth.RequireLogin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, active, suspended
}

func do(r http.Handler, path, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentifyAndRequireLogin(t *testing.T) {
	r, active, suspended := newRouter(t)

	w := do(r, "/whoami", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logged_in":false,"email":""}`, w.Body.String())

	tok, _, err := auth.IssueSession(secret, active.ID, active.Email, time.Hour)
	require.NoError(t, err)
	w = do(r, "/whoami", tok, nil)
	assert.JSONEq(t, `{"logged_in":true,"email":"ann@example.com"}`, w.Body.String())
	assert.Equal(t, http.StatusNoContent, do(r, "/private", tok, nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "/private", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, w.Body.String())

	w = do(r, "/private", "", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(r, "/private", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, _, err = auth.IssueSession(secret, suspended.ID, suspended.Email, time.Hour)
	require.NoError(t, err)
	w = do(r, "/private", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"account suspended"}`, w.Body.String())
}
