package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Anti-forgery token actions.
const (
	ActionLookup = "lookup"
	ActionImport = "import"
	ActionExport = "export"
)

type nonceClaims struct {
	Action string `json:"act"`
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// Nonces issues and checks short-lived anti-forgery tokens bound to an action
// and a user (zero for guests).
type Nonces struct {
	secret []byte
	ttl    time.Duration
}

func NewNonces(secret string, ttl time.Duration) *Nonces {
	return &Nonces{secret: []byte(secret), ttl: ttl}
}

func (n *Nonces) Issue(action string, userID uint64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, nonceClaims{
		Action: action,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{nonceAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
		},
	})
	return token.SignedString(n.secret)
}

func (n *Nonces) Verify(tokenStr, action string, userID uint64) bool {
	if tokenStr == "" {
		return false
	}
	token, err := jwt.ParseWithClaims(tokenStr, &nonceClaims{}, func(token *jwt.Token) (interface{}, error) {
		return n.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(nonceAudience))
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(*nonceClaims)
	return ok && claims.Action == action && claims.UserID == userID
}
