package domain

import "time"

// IdentityState enumerates the lifecycle states of an identity record.
type IdentityState string

const (
	IdentityStateActive   IdentityState = "active"
	IdentityStateInactive IdentityState = "inactive"
)

// IdentityRecord is the live identity as held by the external identity store.
// It is owned and mutated by that store; this service only reads it to
// corroborate a token.
type IdentityRecord struct {
	ID          string
	Email       string
	State       IdentityState
	IsValidated bool
	CreatedAt   time.Time
}
