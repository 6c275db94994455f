package domain

import "context"

// TokenCodec encodes claims into an opaque signed token string and decodes it
// back. Decode returns a mapping keyed by the embedded email so callers can
// uniformly detect malformation: any cardinality other than exactly one entry
// is a contract violation the caller must treat as ErrMalformedToken.
type TokenCodec interface {
	Encode(token AuthToken) (string, error)
	Decode(tokenString string) (map[string]AuthToken, error)
}

// IdentityLookup loads the current live identity record by email.
// Implementations return ErrIdentityNotFound when no active record exists.
type IdentityLookup interface {
	FindByEmail(ctx context.Context, email string) (*IdentityRecord, error)
}

// ConfigCache is a named, clearable configuration cache with get-or-compute
// semantics. No eviction beyond explicit clears.
type ConfigCache interface {
	Get(name string) (any, bool)
	Put(name string, value any)
	Clear(name string)
	ClearAll()
	GetOrCompute(ctx context.Context, name string, compute func(ctx context.Context) (any, error)) (any, error)
}

// ConfigSource fetches named configuration blocks from the external
// configuration service.
type ConfigSource interface {
	FetchValues(ctx context.Context, logicalName string) (map[string]string, error)
}
