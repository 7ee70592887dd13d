package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any credential the hub should refuse.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is what a session credential carries: the staff member it belongs
// to and their role, used for display and routing.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// StaffID returns the subject the credential was minted for.
func (c Claims) StaffID() string {
	return c.Subject
}

// Mint issues a short-lived HMAC-signed session credential.
func Mint(secret, staffID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("auth: signing secret not configured")
	}
	if staffID == "" {
		return "", errors.New("auth: staff id required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session credential.
func Verify(secret, tokenString string) (Claims, error) {
	if secret == "" || tokenString == "" {
		return Claims{}, ErrInvalidToken
	}
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
