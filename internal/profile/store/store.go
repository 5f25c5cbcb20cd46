// Package store persists the durable "wallet profile exists" flag consumed by
// the rest of the marketplace application. Only the submission orchestrator
// writes it, and only on confirmed success.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no wallet flag exists for a user.
var ErrNotFound = errors.New("wallet flag not found")

// WalletFlag records that a user's wallet profile was created.
type WalletFlag struct {
	UserID      string    `json:"userId"`
	ProfileType string    `json:"profileType"` // "individual" or "business"
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the wallet flag persistence contract.
type Store interface {
	// Save records the flag. Saving twice for the same user overwrites.
	Save(ctx context.Context, flag WalletFlag) error

	// Find returns the flag for a user, or ErrNotFound.
	Find(ctx context.Context, userID string) (*WalletFlag, error)
}
