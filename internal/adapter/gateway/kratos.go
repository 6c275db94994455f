package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"authgate/internal/domain"

	kratos "github.com/ory/kratos-client-go"
)

// KratosIdentityLookup resolves live identity records through the Kratos
// Admin API. Implements domain.IdentityLookup.
type KratosIdentityLookup struct {
	client  *kratos.APIClient
	timeout time.Duration
}

// NewKratosIdentityLookup creates a lookup against the given Admin API base
// URL with tuned HTTP transport.
func NewKratosIdentityLookup(adminBaseURL string, timeout time.Duration) *KratosIdentityLookup {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: adminBaseURL},
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	configuration.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	return &KratosIdentityLookup{
		client:  kratos.NewAPIClient(configuration),
		timeout: timeout,
	}
}

// FindByEmail returns the live identity record whose credentials identifier
// matches email. Inactive identities count as not found: a revoked account
// must not corroborate a still-valid token.
func (g *KratosIdentityLookup) FindByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error) {
	if email == "" {
		return nil, domain.ErrIdentityNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	identities, resp, err := g.client.IdentityAPI.ListIdentities(ctx).
		CredentialsIdentifier(email).
		Execute()
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: identity store returned status %d", domain.ErrIdentitySourceUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentitySourceUnavailable, err)
	}

	for _, identity := range identities {
		record := toRecord(identity)
		if record.State != domain.IdentityStateActive {
			continue
		}
		return record, nil
	}

	return nil, domain.ErrIdentityNotFound
}

// toRecord maps a Kratos identity onto the domain record.
func toRecord(identity kratos.Identity) *domain.IdentityRecord {
	record := &domain.IdentityRecord{
		ID:    identity.Id,
		State: domain.IdentityState(identity.GetState()),
	}

	if traits, ok := identity.Traits.(map[string]interface{}); ok {
		if emailVal, ok := traits["email"].(string); ok {
			record.Email = emailVal
		}
	}

	if verifiable := identity.VerifiableAddresses; len(verifiable) > 0 {
		record.IsValidated = verifiable[0].Verified
	}

	if identity.CreatedAt != nil {
		record.CreatedAt = *identity.CreatedAt
	}

	return record
}
