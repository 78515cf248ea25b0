package masterkey_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/masterkey"
	"github.com/prn-tf/helix/internal/store"
)

func newManager(t *testing.T) *masterkey.Manager {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "metadata.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return masterkey.NewManager(store.NewMasterKeyStore(db), zerolog.Nop())
}

func TestGetOnEmptyStoreReturnsAbsent(t *testing.T) {
	m := newManager(t)
	_, ok, err := m.Get(context.Background(), "hunter2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGenerateThenGetRoundTrip(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	generated, err := m.Generate(ctx, "correct horse battery staple")
	require.NoError(t, err)

	got, ok, err := m.Get(ctx, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, generated, got)
}

func TestGetFailsOnWrongPassphrase(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.Generate(ctx, "correct horse battery staple")
	require.NoError(t, err)

	_, _, err = m.Get(ctx, "wrong passphrase")
	require.ErrorIs(t, err, masterkey.ErrPassphraseMismatch)
}
