package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"authgate/internal/domain"
	"authgate/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

const basicPrefix = "Basic "

// OperatorAuth validates the single static operator credential for the basic
// tier. Uses constant-time comparison to prevent timing attacks.
func OperatorAuth(username, password string, m *metrics.Metrics) echo.MiddlewareFunc {
	userBytes := []byte(username)
	passBytes := []byte(password)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, basicPrefix) {
				m.AuthRequests.WithLabelValues(TierBasic, "missing_credential").Inc()
				return domain.ErrAuthenticationRequired
			}

			decoded, err := base64.StdEncoding.DecodeString(header[len(basicPrefix):])
			if err != nil {
				m.AuthRequests.WithLabelValues(TierBasic, "rejected").Inc()
				return domain.ErrAuthenticationRequired
			}

			user, pass, found := strings.Cut(string(decoded), ":")
			if !found {
				m.AuthRequests.WithLabelValues(TierBasic, "rejected").Inc()
				return domain.ErrAuthenticationRequired
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), userBytes) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), passBytes) == 1
			if !userOK || !passOK {
				m.AuthRequests.WithLabelValues(TierBasic, "rejected").Inc()
				return domain.ErrAuthenticationRequired
			}

			m.AuthRequests.WithLabelValues(TierBasic, "ok").Inc()
			return next(c)
		}
	}
}
