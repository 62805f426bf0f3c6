package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Os-De/hs-rp.com/internal/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestStoreRoundTripOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "hsrp_cart")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "hsrp_cart", []byte(`{"version":1}`)))
	require.NoError(t, s.Set(ctx, "hsrp_cart", []byte(`{"version":1,"entries":[]}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err, "migrations must be re-runnable")
	defer reopened.Close()

	got, err := reopened.Get(ctx, "hsrp_cart")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"entries":[]}`, string(got))

	_, err = reopened.Get(ctx, "other")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, reopened.Ping(ctx))
}

func TestStoreQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("get wraps driver errors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = ?`)).
			WithArgs("k").
			WillReturnError(errors.New("disk I/O error"))

		_, err = NewWithDB(db).Get(ctx, "k")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set upserts with timestamp", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
		s := NewWithDB(db)
		s.now = func() time.Time { return now }

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries (key, value, updated_at)`)).
			WithArgs("k", []byte("v"), now.UnixMilli()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set surfaces exec errors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries`)).
			WillReturnError(errors.New("database is locked"))

		require.Error(t, NewWithDB(db).Set(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpSection(t *testing.T) {
	sql := "-- +migrate Up\nCREATE TABLE t (id INT);\n-- +migrate Down\nDROP TABLE t;\n"
	assert.Equal(t, "\nCREATE TABLE t (id INT);\n", upSection(sql))
	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}
