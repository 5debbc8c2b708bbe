// Package slot defines the durable key-value slot that backs the ledger and
// the custom product catalog. A slot holds one serialized document per key
// and is always written whole.
package slot

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("slot not found")

type Slot interface {
	// Get returns the stored value, or ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
