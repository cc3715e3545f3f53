// Package auth signs and verifies the bearer tokens staff use against the API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingOwner = errors.New("token has no owner")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

// Claims identify the tenant and the staff member behind a request
type Claims struct {
	OwnerID int64  `json:"owner_id"`
	StaffID int64  `json:"staff_id,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the verified identity of a caller
type Principal struct {
	OwnerID int64
	StaffID int64
	Role    string
}

// TokenManager issues and verifies HS256 tokens
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the principal
func (m *TokenManager) Issue(p Principal) (string, error) {
	if p.OwnerID <= 0 {
		return "", ErrMissingOwner
	}

	now := m.now()
	claims := Claims{
		OwnerID: p.OwnerID,
		StaffID: p.StaffID,
		Role:    p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.StaffID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature, expiry and issuer and returns the principal
func (m *TokenManager) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.OwnerID <= 0 {
		return nil, ErrMissingOwner
	}

	return &Principal{OwnerID: claims.OwnerID, StaffID: claims.StaffID, Role: claims.Role}, nil
}
