package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The backend issues JWT access tokens. The client never verifies them
// (token signing belongs to the server); it only reads the registered
// claims to know when the credential was issued and when it goes stale.
// Opaque non-JWT tokens yield zero times.

func TokenExpiry(token string) time.Time {
	claims := parseClaims(token)
	if claims == nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func TokenIssuedAt(token string) time.Time {
	claims := parseClaims(token)
	if claims == nil {
		return time.Time{}
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return time.Time{}
	}
	return iat.Time
}

// TokenExpired reports whether the token carries an exp claim in the past.
// Tokens with no readable expiry are treated as still valid, the probe has
// the final say anyway.
func TokenExpired(token string) bool {
	exp := TokenExpiry(token)
	if exp.IsZero() {
		return false
	}
	return time.Now().After(exp)
}

func parseClaims(token string) jwt.MapClaims {
	if token == `` {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
