// Package draftstore persists draft snapshots to a durable local key-value
// store. Loads are tolerant: malformed or partially-shaped stored data is
// coerced field-by-field instead of being rejected, and persistence failures
// are logged but never surface to the editing session.
package draftstore

import "context"

//go:generate mockgen -destination=mocks/mock.go -package=mockdraftstore -source=kv.go

// KV is the durable local key-value store collaborator.
type KV interface {
	// Get returns the stored value. A missing key is a not-found error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Del removes the key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}
