package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port string // Service port

	TokenSecret   string        // Secret for signing auth tokens
	TokenIssuer   string        // JWT issuer claim
	TokenAudience string        // JWT audience claim
	TokenTTL      time.Duration // Auth token TTL

	OperatorUser     string // Static operator username for the basic tier
	OperatorPassword string // Static operator password for the basic tier

	KratosAdminURL string        // Kratos Admin API URL for identity corroboration
	LookupTimeout  time.Duration // Identity lookup timeout; expiry fails closed

	ConfigSourceURL      string        // External configuration service URL
	ConfigSourceUser     string        // Basic-auth username for the configuration service
	ConfigSourcePassword string        // Basic-auth password for the configuration service
	ConfigSourceTimeout  time.Duration // Per-request timeout for configuration fetches
	DeployProfile        string        // Active deployment profile: development or production

	RefreshHour     int           // Daily cache refresh hour (local time)
	RefreshMinute   int           // Daily cache refresh minute
	RefreshCooldown time.Duration // Pause between mass eviction and warm-up dispatch
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:                 getEnv("PORT", "8888"),
		TokenSecret:          getEnv("TOKEN_SECRET", ""),
		TokenIssuer:          getEnv("TOKEN_ISSUER", "authgate"),
		TokenAudience:        getEnv("TOKEN_AUDIENCE", "tenant-api"),
		TokenTTL:             24 * time.Hour,
		OperatorUser:         getEnv("OPERATOR_USER", ""),
		OperatorPassword:     getEnv("OPERATOR_PASSWORD", ""),
		KratosAdminURL:       getEnv("KRATOS_ADMIN_URL", "http://kratos:4434"),
		LookupTimeout:        3 * time.Second,
		ConfigSourceURL:      getEnv("CONFIG_SOURCE_URL", ""),
		ConfigSourceUser:     getEnv("CONFIG_SOURCE_USER", ""),
		ConfigSourcePassword: getEnv("CONFIG_SOURCE_PASSWORD", ""),
		ConfigSourceTimeout:  5 * time.Second,
		DeployProfile:        getEnv("DEPLOY_PROFILE", "development"),
		RefreshHour:          3,
		RefreshMinute:        0,
		RefreshCooldown:      30 * time.Second,
	}

	// Parse TOKEN_TTL if provided
	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL format: %w", err)
		}
		config.TokenTTL = duration
	}

	// Parse LOOKUP_TIMEOUT if provided
	if timeoutStr := os.Getenv("LOOKUP_TIMEOUT"); timeoutStr != "" {
		duration, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid LOOKUP_TIMEOUT format: %w", err)
		}
		config.LookupTimeout = duration
	}

	// Parse REFRESH_COOLDOWN if provided
	if cooldownStr := os.Getenv("REFRESH_COOLDOWN"); cooldownStr != "" {
		duration, err := time.ParseDuration(cooldownStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_COOLDOWN format: %w", err)
		}
		config.RefreshCooldown = duration
	}

	// Parse REFRESH_AT (HH:MM) if provided
	if atStr := os.Getenv("REFRESH_AT"); atStr != "" {
		hour, minute, err := parseTimeOfDay(atStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_AT format: %w", err)
		}
		config.RefreshHour = hour
		config.RefreshMinute = minute
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET cannot be empty")
	}

	if len(c.TokenSecret) < 32 {
		return fmt.Errorf("TOKEN_SECRET must be at least 32 characters")
	}

	if c.OperatorUser == "" || c.OperatorPassword == "" {
		return fmt.Errorf("OPERATOR_USER and OPERATOR_PASSWORD cannot be empty")
	}

	if c.KratosAdminURL == "" {
		return fmt.Errorf("KRATOS_ADMIN_URL cannot be empty")
	}

	if c.DeployProfile != "development" && c.DeployProfile != "production" {
		return fmt.Errorf("DEPLOY_PROFILE must be development or production")
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	if c.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive")
	}

	return nil
}

// parseTimeOfDay parses an HH:MM wall-clock string.
func parseTimeOfDay(s string) (int, int, error) {
	hourStr, minuteStr, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", hourStr)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", minuteStr)
	}
	return hour, minute, nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
