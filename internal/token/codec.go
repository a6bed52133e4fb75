// Package token reads the claims of a session token.
//
// The signature segment is never checked. The backend is the only party able to
// verify a token, so anything decoded here is informational and must be treated
// as untrusted.
package token

import (
	"encoding/json"
	"ggarquitectos-site/internal/models"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Subject   string           `json:"sub"`
	Role      string           `json:"role"`
	Name      string           `json:"name"`
	Nonce     string           `json:"nonce,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

// Expired reports whether the claims are no longer usable at now.
// A missing exp is treated as expired, and so is exp == now.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the claims carried by the middle segment of token.
// It returns false for anything that is not a three segment token with a
// base64url JSON object payload.
func Decode(token string) (*Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}

	return &claims, true
}

// IsValid reports whether token decodes and expires strictly after now; exp == now is invalid.
func IsValid(token string, now time.Time) bool {
	claims, ok := Decode(token)
	if !ok {
		return false
	}
	return !claims.Expired(now)
}

// ExpiresAt returns the exp claim, or false when the token has none.
func ExpiresAt(token string) (time.Time, bool) {
	claims, ok := Decode(token)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// UserSummary builds the signed in user from the token claims.
func UserSummary(token string) (*models.UserSummary, bool) {
	claims, ok := Decode(token)
	if !ok {
		return nil, false
	}

	return &models.UserSummary{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Subject,
		Role:  claims.Role,
	}, true
}
