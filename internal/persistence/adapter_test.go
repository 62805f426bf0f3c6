package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/storage"
	"github.com/Os-De/hs-rp.com/internal/storage/memory"
)

type failingKV struct {
	storage.KV
	getErr error
	setErr error
}

func (f failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.KV.Get(ctx, key)
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.KV.Set(ctx, key, value)
}

func sampleEntries() []cart.Entry {
	return []cart.Entry{
		{ID: "p1", Name: "Starter Pack", Amount: "500 coins", UnitPrice: 4.99, Quantity: 1},
		{ID: "p2", Name: "VIP", Amount: "30 days", UnitPrice: 12.5, Quantity: 5},
		{ID: "p3", Name: "Free Gift", Amount: "1", UnitPrice: 0, Quantity: 2},
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(memory.New())

	require.NoError(t, a.Save(ctx, sampleEntries()))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got)
}

func TestAdapterLoadMissingKeyIsEmpty(t *testing.T) {
	got, err := New(memory.New()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestAdapterClear(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := New(kv)

	require.NoError(t, a.Save(ctx, sampleEntries()))
	require.NoError(t, a.Clear(ctx))

	raw, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"entries":[]}`, string(raw))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdapterSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := New(kv)

	require.NoError(t, a.Save(ctx, sampleEntries()))
	first, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, sampleEntries()))
	second, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAdapterWithKey(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := New(kv, WithKey("cart:alice"))
	assert.Equal(t, "cart:alice", a.Key())

	require.NoError(t, a.Save(ctx, sampleEntries()))
	_, err := kv.Get(ctx, DefaultKey)
	require.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, DefaultKey, New(kv, WithKey("")).Key())
}

func TestAdapterLoadLegacyArray(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	legacy := `[{"id":"p1","name":"Starter Pack","amount":"500 coins","price":4.99,"quantity":2},` +
		`{"id":"p2","name":"VIP","price":12.5,"quantity":1}]`
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte(legacy)))

	got, err := New(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []cart.Entry{
		{ID: "p1", Name: "Starter Pack", Amount: "500 coins", UnitPrice: 4.99, Quantity: 2},
		{ID: "p2", Name: "VIP", Amount: "", UnitPrice: 12.5, Quantity: 1},
	}, got)
}

func TestAdapterLoadCorruptState(t *testing.T) {
	tests := map[string]string{
		"not json":             `this is not json`,
		"truncated":            `{"version":1,"entries":[{"id":"p1"`,
		"json null":            `null`,
		"scalar":               `42`,
		"unknown version":      `{"version":2,"entries":[]}`,
		"missing version":      `{"entries":[]}`,
		"missing entries":      `{"version":1}`,
		"missing id":           `{"version":1,"entries":[{"name":"A","amount":"1","unitPrice":1,"quantity":1}]}`,
		"empty id":             `{"version":1,"entries":[{"id":" ","name":"A","amount":"1","unitPrice":1,"quantity":1}]}`,
		"missing price":        `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","quantity":1}]}`,
		"negative price":       `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":-1,"quantity":1}]}`,
		"string price":         `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":"1","quantity":1}]}`,
		"fractional quantity":  `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":1,"quantity":1.5}]}`,
		"zero quantity":        `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":1,"quantity":0}]}`,
		"duplicate ids":        `{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":1,"quantity":1},{"id":"p1","name":"A","amount":"1","unitPrice":1,"quantity":1}]}`,
		"v1 missing amount":    `{"version":1,"entries":[{"id":"p1","name":"A","unitPrice":1,"quantity":1}]}`,
		"legacy missing price": `[{"id":"p1","name":"A","amount":"1","quantity":1}]`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := memory.New()
			require.NoError(t, kv.Set(ctx, DefaultKey, []byte(raw)))

			got, err := New(kv).Load(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptState))

			var corrupt *CorruptStateError
			require.True(t, errors.As(err, &corrupt))
			assert.Equal(t, DefaultKey, corrupt.Key)
			assert.NotEmpty(t, corrupt.Reason)

			assert.Empty(t, got)
		})
	}
}

func TestAdapterLoadEmptyValueIsEmptyCart(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte("  ")))

	got, err := New(kv).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdapterStorageFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")

	t.Run("load", func(t *testing.T) {
		_, err := New(failingKV{KV: memory.New(), getErr: boom}).Load(ctx)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrCorruptState)
	})

	t.Run("save", func(t *testing.T) {
		err := New(failingKV{KV: memory.New(), setErr: boom}).Save(ctx, sampleEntries())
		require.ErrorIs(t, err, boom)
	})
}

func TestEncodeLayout(t *testing.T) {
	body, err := Encode([]cart.Entry{{ID: "p1", Name: "A", Amount: "1", UnitPrice: 2.5, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"version":1,"entries":[{"id":"p1","name":"A","amount":"1","unitPrice":2.5,"quantity":3}]}`,
		string(body))
}
