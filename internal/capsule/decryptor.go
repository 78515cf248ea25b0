package capsule

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/prn-tf/helix/internal/filecrypto"
	"github.com/prn-tf/helix/internal/masterkey"
	"github.com/prn-tf/helix/internal/observer"
	"github.com/prn-tf/helix/internal/pkg/crypto"
	"github.com/prn-tf/helix/internal/store"
)

// Decryptor drives a full restore pass of a capsule into a destination
// directory.
type Decryptor struct {
	layout Layout
	db     *store.DB
	files  *store.FileStore
	master crypto.Key
	log    zerolog.Logger
}

// OpenDecryptor verifies that root is a well-formed capsule, opens its
// metadata database, and loads the master key for passphrase. Setup
// errors here are fatal to the operation.
func OpenDecryptor(ctx context.Context, root, passphrase string, log zerolog.Logger) (*Decryptor, error) {
	layout := NewLayout(root)

	if _, err := os.Stat(layout.HelixDir()); err != nil {
		return nil, invalidCapsule(NoHelixFolder)
	}
	if _, err := os.Stat(layout.DBPath()); err != nil {
		return nil, invalidCapsule(NoDBFile)
	}
	if info, err := os.Stat(layout.BlocksDir()); err != nil || !info.IsDir() {
		return nil, invalidCapsule(NoBlocksFolder)
	}

	db, err := store.Open(ctx, layout.DBPath(), log)
	if err != nil {
		return nil, fmt.Errorf("capsule: open metadata db: %w", err)
	}

	mgr := masterkey.NewManager(store.NewMasterKeyStore(db), log)
	master, ok, err := mgr.Get(ctx, passphrase)
	if err != nil {
		_ = db.Close()
		return nil, mapMasterKeyErr(err)
	}
	if !ok {
		_ = db.Close()
		return nil, invalidCapsule(NoMasterKey)
	}

	return &Decryptor{
		layout: layout,
		db:     db,
		files:  store.NewFileStore(db),
		master: master,
		log:    log,
	}, nil
}

// Close releases the metadata database connection.
func (d *Decryptor) Close() error {
	return d.db.Close()
}

// Run restores every tracked file into destDir. Per-file integrity
// failures (MalformedBlock, BlockNotFound) are reported through the
// observer and do not stop the walk or change the function's return
// value.
func (d *Decryptor) Run(ctx context.Context, destDir string, factory observer.DecryptionObserverFactory) error {
	records, err := d.files.GetAll(ctx)
	if err != nil {
		return err
	}

	d.log.Debug().Str("target", destDir).Int("files", len(records)).Msg("starting decryption run")
	for _, record := range records {
		d.decryptOne(record, destDir, factory)
	}
	return nil
}

// decryptOne restores a single FileRecord. Every failure path, including
// a corrupt key-wrap or path encoding, is reported through the file's
// observer rather than propagated: only capsule-wide setup errors are
// fatal to a decrypt run.
func (d *Decryptor) decryptOne(record store.FileRecord, destDir string, factory observer.DecryptionObserverFactory) {
	// The relative path is not known until the data key is unwrapped and
	// the path itself decrypted, so early failures are reported against
	// the file's opaque id rather than its real path.
	fail := func(obs observer.DecryptionObserver, err error) {
		d.log.Warn().Err(err).Str("file_id", record.ID).Msg("per-file integrity failure")
		obs.Failed(err)
		obs.End(observer.MalformedBlock)
	}

	dataKey, err := crypto.NewKeyDecryptor(d.master).Unwrap(record.Key)
	if err != nil {
		fail(factory.NewObserver(record.ID), fmt.Errorf("%w: unwrap data key for %s: %v", ErrMalformedCapsule, record.ID, err))
		return
	}

	encPath, err := hex.DecodeString(record.FilePath)
	if err != nil {
		fail(factory.NewObserver(record.ID), fmt.Errorf("%w: decode file_path for %s: %v", ErrMalformedCapsule, record.ID, err))
		return
	}

	relativePath, err := crypto.Decrypt(dataKey, encPath, nil)
	if err != nil {
		fail(factory.NewObserver(record.ID), fmt.Errorf("%w: decrypt file_path for %s: %v", ErrMalformedCapsule, record.ID, err))
		return
	}

	plainTarget := filepath.Join(destDir, string(relativePath))
	obs := factory.NewObserver(string(relativePath))
	obs.UpdateState(observer.DecryptBlockCheck)

	blockPath := d.layout.BlockPath(record.ID)
	info, statErr := os.Stat(blockPath)
	if statErr != nil {
		d.log.Warn().Err(statErr).Str("file_id", record.ID).Str("path", string(relativePath)).Msg("block not found")
		obs.End(observer.BlockNotFound)
		return
	}

	blockHash, err := crypto.HashFile(blockPath)
	if err != nil || blockHash != record.EncryptedHash {
		d.log.Warn().Err(err).Str("file_id", record.ID).Str("path", string(relativePath)).Msg("block failed integrity check")
		obs.End(observer.MalformedBlock)
		return
	}

	obs.InitSize(info.Size())

	if err := os.MkdirAll(filepath.Dir(plainTarget), 0o700); err != nil {
		fail(obs, fmt.Errorf("capsule: create destination dir for %s: %w", plainTarget, err))
		return
	}

	dec := filecrypto.NewFileDecryptor(dataKey)
	if err := dec.Decrypt(blockPath, plainTarget, obs); err != nil {
		d.log.Warn().Err(err).Str("file_id", record.ID).Str("path", string(relativePath)).Msg("block failed integrity check")
		obs.End(observer.MalformedBlock)
		_ = os.Remove(plainTarget)
		return
	}

	obs.End(observer.DecryptDone)
}
