package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is what an access token asserts about its bearer.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type accessClaims struct {
	Identity
	jwt.RegisteredClaims
}

type refreshClaims struct {
	EmployeeID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access and refresh tokens. Access and
// refresh tokens are signed with different secrets so one cannot stand in
// for the other.
type Tokens struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokens(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (t *Tokens) RefreshTTL() time.Duration { return t.refreshTTL }

func (t *Tokens) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (t *Tokens) IssueAccess(id Identity) (string, error) {
	claims := accessClaims{Identity: id, RegisteredClaims: t.registered(t.accessTTL)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.accessSecret)
}

func (t *Tokens) IssueRefresh(employeeID string) (string, error) {
	claims := refreshClaims{EmployeeID: employeeID, RegisteredClaims: t.registered(t.refreshTTL)}
	claims.ID = uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.refreshSecret)
}

func (t *Tokens) ParseAccess(raw string) (Identity, error) {
	var claims accessClaims
	if err := t.parse(raw, &claims, t.accessSecret); err != nil {
		return Identity{}, err
	}
	if claims.Identity.ID == "" || claims.Role == "" {
		return Identity{}, ErrInvalidToken
	}
	return claims.Identity, nil
}

// ParseRefresh returns the employee id carried by a refresh token.
func (t *Tokens) ParseRefresh(raw string) (string, error) {
	var claims refreshClaims
	if err := t.parse(raw, &claims, t.refreshSecret); err != nil {
		return "", err
	}
	if claims.EmployeeID == "" {
		return "", ErrInvalidToken
	}
	return claims.EmployeeID, nil
}

func (t *Tokens) parse(raw string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
