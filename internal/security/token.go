package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid access token")

// UserMetadata mirrors the user_metadata object carried by access tokens
type UserMetadata struct {
	UserType string `json:"user_type,omitempty"`
	Name     string `json:"name,omitempty"`
}

// AccessClaims are the claims of an access token. The shape matches the
// tokens issued by the hosted auth service so both backends share one verifier.
type AccessClaims struct {
	Email        string       `json:"email"`
	Role         string       `json:"role,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	SessionID    string       `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 access tokens
type TokenSigner struct {
	secret []byte
	issuer string
}

// NewTokenSigner creates a signer for the given shared secret
func NewTokenSigner(secret, issuer string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), issuer: issuer}
}

// Issue signs an access token for the user valid until expiresAt
func (s *TokenSigner) Issue(userID, email, sessionID string, meta UserMetadata, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email:        email,
		Role:         "authenticated",
		UserMetadata: meta,
		SessionID:    sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims
func (s *TokenSigner) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
