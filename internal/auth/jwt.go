package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// clockSkew tolerates small clock drift between the identity provider and the console.
const clockSkew = 30 * time.Second

// Claims are the JWT claims accepted by the console.
type Claims struct {
	Name string `json:"name,omitempty"`
	Site string `json:"site,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 token and returns the identity it carries.
// Tokens must expire and name a subject and a known role.
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrEmptyToken
	}
	if len(secret) == 0 {
		return Identity{}, ErrEmptySecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpired
	case err != nil:
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, ok := ParseRole(claims.Role)
	if !ok {
		return Identity{}, ErrInvalidRole
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, ErrMissingSubject
	}
	return Identity{Subject: subject, Name: claims.Name, Role: role, Site: claims.Site}, nil
}
