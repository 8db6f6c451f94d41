package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reports the exp claim of a JWT bearer token. The signature is
// not verified; the value is only shown to the user. ok is false for opaque
// tokens or tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpiry reports the expiry of the held token, if it is a JWT.
func (s *Store) TokenExpiry() (time.Time, bool) {
	return TokenExpiry(s.Snapshot().Token)
}
