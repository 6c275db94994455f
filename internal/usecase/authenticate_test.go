package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"authgate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCodec implements domain.TokenCodec for testing.
type mockCodec struct {
	users map[string]domain.AuthToken
	err   error
}

func (m *mockCodec) Encode(_ domain.AuthToken) (string, error) {
	return "unused", nil
}

func (m *mockCodec) Decode(_ string) (map[string]domain.AuthToken, error) {
	return m.users, m.err
}

// mockLookup implements domain.IdentityLookup for testing.
type mockLookup struct {
	record *domain.IdentityRecord
	err    error
	called bool
	email  string
}

func (m *mockLookup) FindByEmail(_ context.Context, email string) (*domain.IdentityRecord, error) {
	m.called = true
	m.email = email
	return m.record, m.err
}

func validToken() domain.AuthToken {
	return domain.AuthToken{
		AppID: "app-42",
		User: domain.UserSummary{
			ID:     "user-123",
			Email:  "alice@example.com",
			Status: "ACTIVE",
		},
	}
}

func TestAuthenticate_Success(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{
		"alice@example.com": validToken(),
	}}
	lookup := &mockLookup{record: &domain.IdentityRecord{
		ID:    "user-123",
		Email: "alice@example.com",
		State: domain.IdentityStateActive,
	}}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", principal.Email)
	assert.Equal(t, "app-42", principal.Token.AppID)
	assert.True(t, lookup.called)
	assert.Equal(t, "alice@example.com", lookup.email)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	codec := &mockCodec{err: domain.ErrInvalidToken}
	lookup := &mockLookup{}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "garbage")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.False(t, lookup.called, "no corroboration before a successful decode")
}

func TestAuthenticate_EmptyBinding(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{}}
	lookup := &mockLookup{}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
	assert.False(t, lookup.called)
}

func TestAuthenticate_MultipleBindings(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{
		"alice@example.com": validToken(),
		"bob@example.com":   validToken(),
	}}
	lookup := &mockLookup{}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestAuthenticate_IdentityGone(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{
		"deleted@example.com": validToken(),
	}}
	lookup := &mockLookup{err: domain.ErrIdentityNotFound}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrUserMismatch)
}

func TestAuthenticate_EmailChangedSinceIssuance(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{
		"old@example.com": validToken(),
	}}
	lookup := &mockLookup{record: &domain.IdentityRecord{
		ID:    "user-123",
		Email: "new@example.com",
		State: domain.IdentityStateActive,
	}}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrUserMismatch)
}

func TestAuthenticate_LookupFailureFailsClosed(t *testing.T) {
	codec := &mockCodec{users: map[string]domain.AuthToken{
		"alice@example.com": validToken(),
	}}
	lookup := &mockLookup{err: domain.ErrIdentitySourceUnavailable}

	uc := NewAuthenticate(codec, lookup, time.Second, slog.Default())
	principal, err := uc.Execute(context.Background(), "token-str")

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, domain.ErrUserMismatch)
}
