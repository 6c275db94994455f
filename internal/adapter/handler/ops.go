package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CacheResetter is the cache surface the operator reset endpoint needs.
type CacheResetter interface {
	ClearAll()
	Names() []string
}

// OpsHandler handles operator-tier endpoints.
type OpsHandler struct {
	cache  CacheResetter
	logger *slog.Logger
}

// NewOpsHandler creates a new operator handler.
func NewOpsHandler(cache CacheResetter, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{cache: cache, logger: logger}
}

// cacheResetResponse reports what the reset removed.
type cacheResetResponse struct {
	Cleared []string `json:"cleared"`
}

// HandleCacheReset clears every named configuration cache.
func (h *OpsHandler) HandleCacheReset(c echo.Context) error {
	ctx := c.Request().Context()

	names := h.cache.Names()
	h.cache.ClearAll()

	h.logger.InfoContext(ctx, "configuration caches cleared by operator",
		"cleared", len(names),
		"remote_addr", c.RealIP())

	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, cacheResetResponse{Cleared: names})
}
