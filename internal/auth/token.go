// Package auth turns bearer tokens into the caller's identity. Tokens are
// HS256 JWTs whose subject is the user id; they also carry the display name
// and age the membership rules need.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// ErrInvalidToken is returned for any token that fails to parse or verify.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload.
type Claims struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies identity tokens with a shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a Tokens for the given HMAC secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for id that expires after ttl.
func (t *Tokens) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Name: id.DisplayName,
		Age:  id.Age,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Tokens.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the identity it carries.
// Any failure wraps ErrInvalidToken.
func (t *Tokens) Verify(token string) (domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		return domain.Identity{}, fmt.Errorf("%w: name claim is required", ErrInvalidToken)
	}
	if claims.Age < 0 {
		return domain.Identity{}, fmt.Errorf("%w: age claim is negative", ErrInvalidToken)
	}
	return domain.Identity{UserID: userID, DisplayName: name, Age: claims.Age}, nil
}
