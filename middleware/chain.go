package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Tier names, also used as the metrics label.
const (
	TierOpen   = "open"
	TierBasic  = "basic"
	TierBearer = "bearer"
)

// tierContextKey stores the selected tier name on the echo context.
const tierContextKey = "authTier"

// Tier pairs a request matcher with the authentication middleware applied to
// matching requests.
type Tier struct {
	Name  string
	Match func(r *http.Request) bool
	Apply echo.MiddlewareFunc
}

// NewChainSelector classifies each request into exactly one tier: tiers are
// evaluated in order and the first match wins. Chains are not layered; only
// the winning tier's middleware runs. The last tier should be a catch-all so
// no request escapes classification.
func NewChainSelector(tiers ...Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, tier := range tiers {
				if tier.Match(c.Request()) {
					c.Set(tierContextKey, tier.Name)
					return tier.Apply(next)(c)
				}
			}
			return next(c)
		}
	}
}

// SelectedTier returns the tier name assigned to the request, if any.
func SelectedTier(c echo.Context) string {
	if name, ok := c.Get(tierContextKey).(string); ok {
		return name
	}
	return ""
}

// MatchPaths builds a matcher for exact paths and "/..."-style prefixes.
// A pattern ending in "/*" matches the prefix before the star.
func MatchPaths(patterns ...string) func(r *http.Request) bool {
	exact := make(map[string]struct{})
	var prefixes []string
	for _, pattern := range patterns {
		if rest, found := strings.CutSuffix(pattern, "/*"); found {
			prefixes = append(prefixes, rest+"/")
			continue
		}
		exact[pattern] = struct{}{}
	}

	return func(r *http.Request) bool {
		path := r.URL.Path
		if _, found := exact[path]; found {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// MatchAll matches every request; used by the bearer catch-all tier.
func MatchAll(_ *http.Request) bool {
	return true
}

// PassThrough applies no credential check; used by the open tier.
func PassThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
