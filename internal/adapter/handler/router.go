package handler

import (
	"log/slog"

	"authgate/internal/infrastructure/metrics"
	"authgate/internal/usecase"
	appmiddleware "authgate/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

// RouterConfig holds everything the router needs wired in.
type RouterConfig struct {
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	Authenticate     appmiddleware.Authenticator
	Authorize        *usecase.Authorize
	ConfigValues     *usecase.ConfigValues
	Cache            CacheResetter
	OperatorUser     string
	OperatorPassword string

	TracingEnabled bool
	ServiceName    string
}

// NewRouter creates and configures the Echo router. Requests are classified
// into exactly one trust tier before any handler runs: open paths pass
// through, operator paths require the static credential, everything else is
// bearer territory.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	e.Use(appmiddleware.SecurityHeaders())

	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.ServiceName))
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				cfg.Logger.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"tier", appmiddleware.SelectedTier(c),
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				cfg.Logger.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"tier", appmiddleware.SelectedTier(c),
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	opsRL := appmiddleware.NewRateLimiter(rate.Limit(30.0/60.0), 5) // 30 req/min

	openTier := appmiddleware.Tier{
		Name: appmiddleware.TierOpen,
		Match: appmiddleware.MatchPaths(
			"/health",
			"/error",
			"/docs/*",
			"/v1/public/*",
		),
		Apply: func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				cfg.Metrics.AuthRequests.WithLabelValues(appmiddleware.TierOpen, "ok").Inc()
				return next(c)
			}
		},
	}
	basicTier := appmiddleware.Tier{
		Name:  appmiddleware.TierBasic,
		Match: appmiddleware.MatchPaths("/ops/*"),
		Apply: appmiddleware.OperatorAuth(cfg.OperatorUser, cfg.OperatorPassword, cfg.Metrics),
	}
	bearerTier := appmiddleware.Tier{
		Name:  appmiddleware.TierBearer,
		Match: appmiddleware.MatchAll,
		Apply: appmiddleware.BearerAuth(cfg.Authenticate, cfg.Metrics, cfg.Logger),
	}
	e.Use(appmiddleware.NewChainSelector(openTier, basicTier, bearerTier))

	healthHandler := NewHealthHandler()
	opsHandler := NewOpsHandler(cfg.Cache, cfg.Logger)
	tenantHandler := NewTenantHandler(cfg.Authorize, cfg.ConfigValues, cfg.Logger)

	// Open tier
	e.GET("/health", healthHandler.Handle)

	// Operator tier
	e.POST("/ops/cache/reset", opsHandler.HandleCacheReset, opsRL.Middleware())
	e.GET("/ops/metrics", echo.WrapHandler(cfg.Metrics.Handler()))

	// Bearer tier, tenant scoped
	e.GET("/v1/apps/:appID/me", tenantHandler.HandleMe)
	e.POST("/v1/apps/:appID/permissions/check", tenantHandler.HandlePermissionCheck)
	e.GET("/v1/apps/:appID/redirect-urls", tenantHandler.HandleRedirectURLs)

	return e
}
