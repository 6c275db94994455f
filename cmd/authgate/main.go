package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	adapterhandler "authgate/internal/adapter/handler"
	"authgate/internal/adapter/gateway"
	infracache "authgate/internal/infrastructure/cache"
	"authgate/internal/infrastructure/metrics"
	"authgate/internal/infrastructure/scheduler"
	infratoken "authgate/internal/infrastructure/token"
	"authgate/internal/usecase"

	"authgate/config"
	"authgate/utils/logger"
	"authgate/utils/otel"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"kratos_admin_url", cfg.KratosAdminURL,
		"port", cfg.Port,
		"deploy_profile", cfg.DeployProfile,
		"refresh_at", fmt.Sprintf("%02d:%02d", cfg.RefreshHour, cfg.RefreshMinute))

	// Infrastructure
	m := metrics.New()
	configCache := infracache.NewConfigCache()
	identityLookup := gateway.NewKratosIdentityLookup(cfg.KratosAdminURL, cfg.LookupTimeout)
	configSource := gateway.NewConfigSourceClient(
		cfg.ConfigSourceURL,
		cfg.ConfigSourceUser,
		cfg.ConfigSourcePassword,
		cfg.DeployProfile,
		cfg.ConfigSourceTimeout,
	)
	codec := infratoken.NewJWTCodec(infratoken.JWTConfig{
		Secret:   cfg.TokenSecret,
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
		TTL:      cfg.TokenTTL,
	})

	// Usecases
	authenticateUC := usecase.NewAuthenticate(codec, identityLookup, cfg.LookupTimeout, slog.Default())
	authorizeUC := usecase.NewAuthorize()
	configValuesUC := usecase.NewConfigValues(configCache, configSource, slog.Default())

	// Daily cache refresh: clear, cool down, warm the hot entries back up.
	refresher := scheduler.NewRefresher(
		&countingClearer{cache: configCache, runs: m.RefreshRuns},
		countedWarmups(configValuesUC.Warmups(), m.WarmupFailures),
		scheduler.TimeOfDay{Hour: cfg.RefreshHour, Minute: cfg.RefreshMinute},
		cfg.RefreshCooldown,
		slog.Default(),
	)

	e := adapterhandler.NewRouter(adapterhandler.RouterConfig{
		Logger:           slog.Default(),
		Metrics:          m,
		Authenticate:     authenticateUC,
		Authorize:        authorizeUC,
		ConfigValues:     configValuesUC,
		Cache:            configCache,
		OperatorUser:     cfg.OperatorUser,
		OperatorPassword: cfg.OperatorPassword,
		TracingEnabled:   otelCfg.Enabled,
		ServiceName:      otelCfg.ServiceName,
	})

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting authgate server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		refresher.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// countingClearer counts refresh cycles as they clear the caches.
type countingClearer struct {
	cache scheduler.Clearer
	runs  prometheus.Counter
}

func (c *countingClearer) ClearAll() {
	c.runs.Inc()
	c.cache.ClearAll()
}

// countedWarmups wraps the warm-up functions so failures land in metrics,
// ordered by name for a stable dispatch log.
func countedWarmups(warmups map[string]func(ctx context.Context) error, failures *prometheus.CounterVec) []scheduler.Warmup {
	names := make([]string, 0, len(warmups))
	for name := range warmups {
		names = append(names, name)
	}
	sort.Strings(names)

	wrapped := make([]scheduler.Warmup, 0, len(names))
	for _, name := range names {
		run := warmups[name]
		wrapped = append(wrapped, scheduler.Warmup{
			Name: name,
			Run: func(ctx context.Context) error {
				if err := run(ctx); err != nil {
					failures.WithLabelValues(name).Inc()
					return err
				}
				return nil
			},
		})
	}
	return wrapped
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
