package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"authgate/internal/domain"
)

// Cache entry names for externally-sourced configuration. The refresh
// scheduler warms these after its nightly clear.
const (
	CacheNameRedirectURLs     = "redirectUrls"
	CacheNameEmailLinkBaseURL = "baseUrlForLinkInEmail"
)

// ConfigValues exposes the externally-sourced configuration entries through
// the read-through cache.
type ConfigValues struct {
	cache  domain.ConfigCache
	source domain.ConfigSource
	logger *slog.Logger
}

// NewConfigValues creates the cached configuration accessor.
func NewConfigValues(cache domain.ConfigCache, source domain.ConfigSource, logger *slog.Logger) *ConfigValues {
	return &ConfigValues{cache: cache, source: source, logger: logger}
}

// RedirectURLs returns the redirect-URL map for the active deployment
// profile, fetching and caching it on a miss.
func (uc *ConfigValues) RedirectURLs(ctx context.Context) (map[string]string, error) {
	value, err := uc.cache.GetOrCompute(ctx, CacheNameRedirectURLs, func(ctx context.Context) (any, error) {
		uc.logger.InfoContext(ctx, "fetching configuration entry", "entry", CacheNameRedirectURLs)
		return uc.source.FetchValues(ctx, CacheNameRedirectURLs)
	})
	if err != nil {
		return nil, err
	}

	urls, ok := value.(map[string]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cached type %T for %s", value, CacheNameRedirectURLs)
	}
	return urls, nil
}

// EmailLinkBaseURL returns the base URL used when building links in outbound
// email, fetching and caching it on a miss.
func (uc *ConfigValues) EmailLinkBaseURL(ctx context.Context) (string, error) {
	value, err := uc.cache.GetOrCompute(ctx, CacheNameEmailLinkBaseURL, func(ctx context.Context) (any, error) {
		uc.logger.InfoContext(ctx, "fetching configuration entry", "entry", CacheNameEmailLinkBaseURL)

		values, err := uc.source.FetchValues(ctx, CacheNameEmailLinkBaseURL)
		if err != nil {
			return nil, err
		}
		url, ok := values["url"]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no url value", domain.ErrConfigEntryNotFound, CacheNameEmailLinkBaseURL)
		}
		return url, nil
	})
	if err != nil {
		return "", err
	}

	url, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected cached type %T for %s", value, CacheNameEmailLinkBaseURL)
	}
	return url, nil
}

// Warmups returns the refresh scheduler's hot-entry repopulation functions.
// Each one simply calls the cached accessor, so success leaves the entry
// populated.
func (uc *ConfigValues) Warmups() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		CacheNameRedirectURLs: func(ctx context.Context) error {
			_, err := uc.RedirectURLs(ctx)
			return err
		},
		CacheNameEmailLinkBaseURL: func(ctx context.Context) error {
			_, err := uc.EmailLinkBaseURL(ctx)
			return err
		},
	}
}
