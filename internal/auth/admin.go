package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wedding-app-go/internal/config"
)

const RoleAdmin = "admin"

var (
	ErrNotConfigured = errors.New("admin auth not configured")
	ErrInvalidToken  = errors.New("invalid admin token")
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokens signs and verifies HS256 tokens for the read-only RSVP endpoints.
type AdminTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewAdminTokens(cfg config.AdminConfig) *AdminTokens {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AdminTokens{
		secret: []byte(strings.TrimSpace(cfg.JWTSecret)),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *AdminTokens) Enabled() bool {
	return len(t.secret) > 0
}

func (t *AdminTokens) TTL() time.Duration {
	return t.ttl
}

func (t *AdminTokens) Sign(subject string) (string, error) {
	if !t.Enabled() {
		return "", ErrNotConfigured
	}
	now := t.now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify returns the claims of a valid, unexpired admin token.
func (t *AdminTokens) Verify(tokenString string) (*AdminClaims, error) {
	if !t.Enabled() {
		return nil, ErrNotConfigured
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		options = append(options, jwt.WithIssuer(t.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
