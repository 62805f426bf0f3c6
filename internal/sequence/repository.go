package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Os-De/hs-rp.com/internal/storage"
)

const keyPrefix = "seq:"

type Repository struct {
	mu    sync.Mutex
	store storage.KV
}

func NewRepository(store storage.KV) *Repository {
	return &Repository{store: store}
}

// NextSequence increments and returns the next sequence for a partition.
// Increments are serialised within the process only.
func (r *Repository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if strings.TrimSpace(partitionKey) == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyPrefix + partitionKey
	var last int64
	raw, err := r.store.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("read sequence: %w", err)
	default:
		last, err = strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence %q: %w", key, err)
		}
	}

	next := last + 1
	if err := r.store.Set(ctx, key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next, nil
}
