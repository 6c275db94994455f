package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"authgate/internal/domain"

	"github.com/cenkalti/backoff/v5"
)

// configBlock is one named configuration entry as served by the external
// configuration service.
type configBlock struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

// ConfigSourceClient fetches configuration blocks over HTTP with static
// basic-auth credentials. Implements domain.ConfigSource.
type ConfigSourceClient struct {
	baseURL    string
	username   string
	password   string
	profile    string
	httpClient *http.Client
	maxTries   uint
}

// NewConfigSourceClient creates a client for the external configuration
// service. profile selects between the <name>_development and
// <name>_production block variants.
func NewConfigSourceClient(baseURL, username, password, profile string, timeout time.Duration) *ConfigSourceClient {
	return &ConfigSourceClient{
		baseURL:  baseURL,
		username: username,
		password: password,
		profile:  profile,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxTries: 3,
	}
}

// FetchValues retrieves the values for logicalName. The profile-suffixed
// block wins over an exact-name block. Transient fetch failures are retried
// with exponential backoff.
func (c *ConfigSourceClient) FetchValues(ctx context.Context, logicalName string) (map[string]string, error) {
	blocks, err := backoff.Retry(ctx, func() ([]configBlock, error) {
		return c.fetch(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, err
	}

	profiled := logicalName + "_" + c.profile
	var fallback map[string]string
	for _, block := range blocks {
		switch block.Name {
		case profiled:
			return block.Values, nil
		case logicalName:
			fallback = block.Values
		}
	}
	if fallback != nil {
		return fallback, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrConfigEntryNotFound, logicalName)
}

// fetch performs one GET against the configuration service.
func (c *ConfigSourceClient) fetch(ctx context.Context) ([]configBlock, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrConfigSourceUnavailable, err))
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, backoff.Permanent(fmt.Errorf("%w: credentials rejected with status %d", domain.ErrConfigSourceUnavailable, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrConfigSourceUnavailable, resp.StatusCode)
	}

	var blocks []configBlock
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrConfigSourceUnavailable, err))
	}

	return blocks, nil
}
