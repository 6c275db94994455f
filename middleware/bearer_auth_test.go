package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authgate/internal/domain"
	"authgate/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	principal *domain.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Execute(_ context.Context, tokenString string) (*domain.Principal, error) {
	s.gotToken = tokenString
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func invokeBearerAuth(t *testing.T, auth Authenticator, authorization string) (echo.Context, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/apps/app-a/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := BearerAuth(auth, metrics.New(), slog.New(slog.DiscardHandler))(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, err, called
}

func TestBearerAuth_ValidToken(t *testing.T) {
	want := &domain.Principal{
		Email: "user@example.com",
		Token: domain.AuthToken{AppID: "app-a"},
	}
	stub := &stubAuthenticator{principal: want}

	c, err, called := invokeBearerAuth(t, stub, "Bearer good-token")

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "good-token", stub.gotToken)

	principal, ok := PrincipalFrom(c)
	require.True(t, ok)
	assert.Equal(t, want, principal)
}

func TestBearerAuth_NoHeaderContinuesAnonymous(t *testing.T) {
	stub := &stubAuthenticator{err: domain.ErrInvalidToken}

	c, err, called := invokeBearerAuth(t, stub, "")

	require.NoError(t, err)
	assert.True(t, called, "request without a token proceeds without a principal")
	assert.Empty(t, stub.gotToken, "authenticator must not be consulted")

	_, ok := PrincipalFrom(c)
	assert.False(t, ok)
}

func TestBearerAuth_SchemeIsCaseSensitive(t *testing.T) {
	stub := &stubAuthenticator{err: domain.ErrInvalidToken}

	_, err, called := invokeBearerAuth(t, stub, "bearer good-token")

	require.NoError(t, err)
	assert.True(t, called, "lowercase scheme is not a bearer credential")
	assert.Empty(t, stub.gotToken)
}

func TestBearerAuth_RejectedToken(t *testing.T) {
	tests := []struct {
		name    string
		authErr error
	}{
		{"invalid", domain.ErrInvalidToken},
		{"malformed", domain.ErrMalformedToken},
		{"user mismatch", domain.ErrUserMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthenticator{err: tt.authErr}

			c, err, called := invokeBearerAuth(t, stub, "Bearer bad-token")

			assert.ErrorIs(t, err, tt.authErr)
			assert.False(t, called, "handler must not run on rejected token")

			_, ok := PrincipalFrom(c)
			assert.False(t, ok)
		})
	}
}
