package token

import (
	"strings"
	"testing"
	"time"

	"authgate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-valid-token-signing-secret-32-chars"

func testCodec(ttl time.Duration) *JWTCodec {
	return NewJWTCodec(JWTConfig{
		Secret:   testSecret,
		Issuer:   "authgate",
		Audience: "tenant-api",
		TTL:      ttl,
	})
}

func sampleToken() domain.AuthToken {
	return domain.AuthToken{
		AppID: "app-42",
		User: domain.UserSummary{
			ID:          "user-123",
			Email:       "test@example.com",
			Status:      "ACTIVE",
			IsValidated: true,
		},
		Roles: []domain.RoleClaim{
			{ID: "r1", Name: "ADMIN"},
		},
		Permissions: []domain.PermissionClaim{
			{ID: "p1", Name: "CONFIG_READ"},
			{ID: "p2", Name: "USER_WRITE"},
		},
	}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := testCodec(5 * time.Minute)
	original := sampleToken()

	tokenStr, err := codec.Encode(original)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	users, err := codec.Decode(tokenStr)
	require.NoError(t, err)
	require.Len(t, users, 1)

	decoded, found := users["test@example.com"]
	require.True(t, found, "binding must be keyed by the embedded email")
	assert.Equal(t, original, decoded)
}

func TestJWTCodec_DecodeGarbage(t *testing.T) {
	codec := testCodec(5 * time.Minute)

	for _, s := range []string{"", "not-a-token", "a.b.c", "x.y"} {
		_, err := codec.Decode(s)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "input %q", s)
	}
}

func TestJWTCodec_TamperedSignature(t *testing.T) {
	codec := testCodec(5 * time.Minute)

	tokenStr, err := codec.Encode(sampleToken())
	require.NoError(t, err)

	tampered := tokenStr[:len(tokenStr)-2] + "xx"
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	issuing := testCodec(5 * time.Minute)
	validating := NewJWTCodec(JWTConfig{
		Secret:   "a-completely-different-signing-secret-here",
		Issuer:   "authgate",
		Audience: "tenant-api",
		TTL:      5 * time.Minute,
	})

	tokenStr, err := issuing.Encode(sampleToken())
	require.NoError(t, err)

	_, err = validating.Decode(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_ExpiredToken(t *testing.T) {
	codec := testCodec(-1 * time.Minute)

	tokenStr, err := codec.Encode(sampleToken())
	require.NoError(t, err)

	_, err = codec.Decode(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_WrongIssuer(t *testing.T) {
	issuing := NewJWTCodec(JWTConfig{
		Secret:   testSecret,
		Issuer:   "someone-else",
		Audience: "tenant-api",
		TTL:      5 * time.Minute,
	})
	validating := testCodec(5 * time.Minute)

	tokenStr, err := issuing.Encode(sampleToken())
	require.NoError(t, err)

	_, err = validating.Decode(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_TokenIsOpaque(t *testing.T) {
	codec := testCodec(5 * time.Minute)

	tokenStr, err := codec.Encode(sampleToken())
	require.NoError(t, err)

	assert.Equal(t, 3, len(strings.Split(tokenStr, ".")), "compact JWS form")
	assert.NotContains(t, tokenStr, "test@example.com")
}
