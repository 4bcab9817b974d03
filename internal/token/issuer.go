// Package token issues and parses signed join capabilities. A token
// is an HS256 JWT whose "video" claim carries the room grant derived
// from the join role; the media server verifies it with the shared
// API secret.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okri/mosaic/internal/domain"
)

const DefaultTTL = 6 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the wire shape of a join token.
type Claims struct {
	Name  string       `json:"name"`
	Video domain.Grant `json:"video"`
	jwt.RegisteredClaims
}

// Issuer signs join capabilities for one media deployment.
type Issuer struct {
	apiKey string
	secret []byte
	ttl    time.Duration
}

func NewIssuer(apiKey, apiSecret string) *Issuer {
	return &Issuer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    DefaultTTL,
	}
}

// Issue signs a capability for identity in room, scoped by role.
// The role-to-permission mapping is pure: it depends on nothing but
// the role.
func (i *Issuer) Issue(room, identity string, role domain.JoinRole) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  identity,
		Video: domain.RoleGrant(room, identity, role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
