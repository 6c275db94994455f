package token

import (
	"fmt"
	"time"

	"authgate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig holds codec configuration.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// gateClaims is the JWT payload. The token binds exactly one identity; the
// users map is keyed by email so that decode can surface cardinality to the
// caller instead of silently picking an entry.
type gateClaims struct {
	Users map[string]domain.AuthToken `json:"users"`
	jwt.RegisteredClaims
}

// JWTCodec signs and validates auth tokens with HS256.
// Implements domain.TokenCodec.
type JWTCodec struct {
	cfg JWTConfig
}

// NewJWTCodec creates a new JWT codec.
func NewJWTCodec(cfg JWTConfig) *JWTCodec {
	return &JWTCodec{cfg: cfg}
}

// Encode serializes the claims into a signed token string.
func (c *JWTCodec) Encode(authToken domain.AuthToken) (string, error) {
	now := time.Now()
	claims := gateClaims{
		Users: map[string]domain.AuthToken{
			authToken.User.Email: authToken,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			Subject:   authToken.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.cfg.Secret))
}

// Decode validates the token string and returns the email-keyed identity
// binding. Signature, parse and expiry failures all map to
// domain.ErrInvalidToken. Cardinality is not checked here.
func (c *JWTCodec) Decode(tokenString string) (map[string]domain.AuthToken, error) {
	claims := &gateClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(c.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims.Users, nil
}
