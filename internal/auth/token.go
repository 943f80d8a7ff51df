// Package auth issues and verifies the signed identity tokens that mark a
// request as coming from a signed-in user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// ErrInvalidToken is returned by Verify for any token that fails parsing,
// signature checks, expiry, or carries an unusable subject.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 identity tokens.
type Issuer struct {
	secret []byte
}

// NewIssuer returns an Issuer keyed by secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue returns a token identifying u that expires after ttl.
func (i *Issuer) Issue(u domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the user it identifies.
func (i *Issuer) Verify(raw string) (domain.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	if c.Username == "" {
		return domain.User{}, fmt.Errorf("%w: username is empty", ErrInvalidToken)
	}

	return domain.User{ID: id, Username: c.Username}, nil
}
