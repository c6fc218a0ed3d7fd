package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"orgroles/internal/auth"
	"orgroles/internal/events"
	"orgroles/internal/onboarding"
	"orgroles/internal/store"
)

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// formUint reads an unsigned integer from the form body or the query string.
// Anything unparsable is zero.
func formUint(c *gin.Context, key string) uint64 {
	v, _ := strconv.ParseUint(formValue(c, key), 10, 64)
	return v
}

func formValue(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	return c.Query(key)
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verrs onboarding.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verrs.Error(), "fields": verrs})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// source describes the caller for emitted events.
func source(c *gin.Context) events.Source {
	return events.Source{
		UserID:    auth.Current(c).UserID,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}
