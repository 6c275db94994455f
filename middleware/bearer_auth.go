package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"authgate/internal/domain"
	"authgate/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

// bearerPrefix is matched case-sensitively.
const bearerPrefix = "Bearer "

// principalContextKey stores the established principal on the echo context.
const principalContextKey = "authPrincipal"

// Authenticator runs the decode-and-corroborate pipeline for a bearer token.
type Authenticator interface {
	Execute(ctx context.Context, tokenString string) (*domain.Principal, error)
}

// BearerAuth authenticates requests in the bearer tier. A missing
// Authorization header, or one without the Bearer prefix, is not an error:
// the request continues without a principal and endpoints that need identity
// reject it themselves. A present bearer token that fails decoding or
// corroboration stops the request with 401.
func BearerAuth(authenticate Authenticator, m *metrics.Metrics, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				m.AuthRequests.WithLabelValues(TierBearer, "anonymous").Inc()
				return next(c)
			}

			ctx := c.Request().Context()
			principal, err := authenticate.Execute(ctx, header[len(bearerPrefix):])
			if err != nil {
				m.AuthRequests.WithLabelValues(TierBearer, "rejected").Inc()
				m.DecodeFailures.WithLabelValues(failureReason(err)).Inc()
				logger.WarnContext(ctx, "bearer authentication failed",
					"path", c.Request().URL.Path,
					"error", err)
				return err
			}

			m.AuthRequests.WithLabelValues(TierBearer, "ok").Inc()
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal established for this request, if any.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	principal, ok := c.Get(principalContextKey).(*domain.Principal)
	return principal, ok && principal != nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domain.ErrUserMismatch):
		return "user_mismatch"
	default:
		return "other"
	}
}
