package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"authgate/internal/domain"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the envelope every rejection carries: a single errMsg
// field, no stack traces, no internal identifiers.
type ErrorResponse struct {
	ErrMsg string `json:"errMsg"`
}

// Client-facing rejection messages. The token strings are load-bearing:
// clients match on them.
const (
	MsgMalformedToken  = "Malformed Auth Token"
	MsgIncorrectToken  = "Incorrect Auth Token"
	MsgUserMismatch    = "Auth Token does not match an active user"
	MsgAuthRequired    = "authentication required"
	MsgTenantForbidden = "forbidden: tenant mismatch"
	MsgPermDenied      = "permission denied"
)

// mapDomainError converts a domain error into status code and errMsg.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMalformedToken):
		return http.StatusUnauthorized, MsgMalformedToken
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, MsgIncorrectToken
	case errors.Is(err, domain.ErrUserMismatch):
		return http.StatusUnauthorized, MsgUserMismatch
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized, MsgAuthRequired

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, MsgTenantForbidden
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, MsgPermDenied

	case errors.Is(err, domain.ErrConfigSourceUnavailable):
		return http.StatusBadGateway, "configuration source unavailable"
	case errors.Is(err, domain.ErrConfigEntryNotFound):
		return http.StatusInternalServerError, "configuration entry missing"
	case errors.Is(err, domain.ErrIdentitySourceUnavailable):
		return http.StatusBadGateway, "identity store unavailable"

	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// NewHTTPErrorHandler returns the echo error handler rendering every failure
// as the errMsg envelope. Authentication and authorization failures are
// mapped here, in one place, so the 401/403 split stays consistent across
// the tiers.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := http.StatusInternalServerError, "internal error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if s, ok := httpErr.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(status)
			}
		} else {
			status, msg = mapDomainError(err)
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(status); err != nil {
				logger.ErrorContext(c.Request().Context(), "error response write failed", "error", err)
			}
			return
		}

		if err := c.JSON(status, ErrorResponse{ErrMsg: msg}); err != nil {
			logger.ErrorContext(c.Request().Context(), "error response write failed", "error", err)
		}
	}
}
