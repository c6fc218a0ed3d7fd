package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Identity is the caller of a request. The zero value is a guest.
type Identity struct {
	UserID uint64
	Email  string
}

func (id Identity) LoggedIn() bool { return id.UserID > 0 }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by Identify, or a guest.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// Current returns the identity of the gin request.
func Current(c *gin.Context) Identity {
	return FromContext(c.Request.Context())
}
