package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authgate/internal/domain"
)

// Authenticate runs the bearer pipeline for one token string: decode,
// cardinality check, then corroboration against the live identity record.
type Authenticate struct {
	codec   domain.TokenCodec
	lookup  domain.IdentityLookup
	timeout time.Duration
	logger  *slog.Logger
}

// NewAuthenticate creates the authentication usecase. timeout bounds the
// identity lookup; on expiry the request fails closed.
func NewAuthenticate(codec domain.TokenCodec, lookup domain.IdentityLookup, timeout time.Duration, logger *slog.Logger) *Authenticate {
	return &Authenticate{codec: codec, lookup: lookup, timeout: timeout, logger: logger}
}

// Execute validates tokenString and returns the established principal.
// Decode must succeed before corroboration is attempted; corroboration must
// succeed before a principal exists.
func (uc *Authenticate) Execute(ctx context.Context, tokenString string) (*domain.Principal, error) {
	users, err := uc.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if len(users) != 1 {
		uc.logger.WarnContext(ctx, "token decoded to unexpected identity cardinality",
			"count", len(users))
		return nil, domain.ErrMalformedToken
	}

	var email string
	var authToken domain.AuthToken
	for key, value := range users {
		email, authToken = key, value
	}

	if err := uc.corroborate(ctx, email); err != nil {
		return nil, err
	}

	return &domain.Principal{Email: email, Token: authToken}, nil
}

// corroborate re-checks the decoded identity against the identity store so a
// revoked or deleted account loses access before its token expires. Lookup
// failures of any kind fail closed.
func (uc *Authenticate) corroborate(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	record, err := uc.lookup.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return fmt.Errorf("%w: no live identity for token", domain.ErrUserMismatch)
		}
		uc.logger.ErrorContext(ctx, "identity corroboration failed", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrUserMismatch, err)
	}

	if record.Email != email {
		return fmt.Errorf("%w: identity email changed since issuance", domain.ErrUserMismatch)
	}

	return nil
}
