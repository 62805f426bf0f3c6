// Package storage defines the key-value byte store the cart is persisted to.
// Implementations live in the sub-packages.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("not found")

// KV is a key-value byte-string store, the server-side stand-in for browser
// local storage.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
