package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/payperproject/portal/internal/core/domain"
)

// TokenClaims is the JWT payload issued to both identity tracks.
type TokenClaims struct {
	Track     domain.Track    `json:"track"`
	UserType  domain.UserType `json:"userType,omitempty"`
	Role      domain.Role     `json:"role,omitempty"`
	CompanyID string          `json:"companyId,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(user *domain.User, track domain.Track) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}

	now := i.now().UTC()
	claims := TokenClaims{
		Track:     track,
		UserType:  user.UserType,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims, or ErrUnauthorized.
func (i *TokenIssuer) Parse(raw string) (*TokenClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &TokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
