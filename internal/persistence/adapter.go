// Package persistence saves the cart to a key-value store under a single
// fixed key and reads it back.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/storage"
)

// DefaultKey is the key the storefront page kept its cart under.
const DefaultKey = "hsrp_cart"

// ErrCorruptState is matched when the stored value cannot be turned back
// into a valid cart. Callers should treat it as a warning.
var ErrCorruptState = errors.New("corrupt cart state")

type CorruptStateError struct {
	Key    string
	Reason string
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt cart state at %q: %s", e.Key, e.Reason)
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

type Adapter struct {
	kv  storage.KV
	key string
}

type Option func(*Adapter)

func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

func New(kv storage.KV, opts ...Option) *Adapter {
	a := &Adapter{kv: kv, key: DefaultKey}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Key() string { return a.key }

// Save writes entries under the adapter's key.
func (a *Adapter) Save(ctx context.Context, entries []cart.Entry) error {
	body, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := a.kv.Set(ctx, a.key, body); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear persists the empty cart.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.Save(ctx, nil)
}

// Load returns the stored entries. A missing key yields an empty cart. A
// malformed value yields an empty cart together with a *CorruptStateError;
// storage failures are returned as they are.
func (a *Adapter) Load(ctx context.Context) ([]cart.Entry, error) {
	body, err := a.kv.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []cart.Entry{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	entries, reason := Decode(body)
	if reason != "" {
		return []cart.Entry{}, &CorruptStateError{Key: a.key, Reason: reason}
	}
	return entries, nil
}
