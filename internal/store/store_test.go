package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.db")
	db, err := store.Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMasterKeyStoreInsertGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	mks := store.NewMasterKeyStore(db)

	_, ok, err := mks.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	want := store.MasterKeyRecord{PassphraseHash: "deadbeef", MasterKey: `{"key":"aa","nonce":"bb"}`}
	require.NoError(t, mks.Insert(ctx, want))

	got, ok, err := mks.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestFileStoreStoreGetUpdateGetAll(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fs := store.NewFileStore(db)

	_, ok, err := fs.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	rec := store.FileRecord{
		ID:            "file-1",
		Key:           `{"key":"11","nonce":"22"}`,
		PlainHash:     "plainhash",
		EncryptedHash: "enchash",
		FilePath:      "encpath",
	}
	require.NoError(t, fs.Store(ctx, rec))

	got, ok, err := fs.Get(ctx, "file-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	rec.PlainHash = "newplainhash"
	rec.EncryptedHash = "newenchash"
	require.NoError(t, fs.Update(ctx, rec))

	got, ok, err = fs.Get(ctx, "file-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	all, err := fs.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, rec, all[0])
}
