// Package auth issues and validates the bearer tokens used by the HTTP
// surface.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service signs and validates HS256 access tokens carrying the user id.
type Service struct {
	secretKey string
	expiry    time.Duration
}

// NewService creates a token service.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{secretKey: secretKey, expiry: expiry}
}

// IssueToken creates an access token for the given user id.
func (s *Service) IssueToken(userID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.expiry)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.secretKey))
	return tokenStr, expiresAt, err
}

// ValidateToken verifies a token and returns the user id it carries.
func (s *Service) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.secretKey), nil
		})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
