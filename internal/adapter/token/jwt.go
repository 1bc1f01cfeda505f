// Package token inspects bearer tokens on the client side. Signatures are not
// verified; only the server can do that.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the exp claim of a JWT. ok is false when the token cannot
// be parsed or carries no exp claim.
func ExpiresAt(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether raw should be treated as expired at now. Tokens
// that are empty, unparsable or lack exp count as expired.
func Expired(raw string, now time.Time) bool {
	if raw == "" {
		return true
	}
	exp, ok := ExpiresAt(raw)
	if !ok {
		return true
	}
	return !now.Before(exp.Truncate(time.Second))
}
