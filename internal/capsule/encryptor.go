package capsule

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/helix/internal/block"
	"github.com/prn-tf/helix/internal/filecrypto"
	"github.com/prn-tf/helix/internal/masterkey"
	"github.com/prn-tf/helix/internal/observer"
	"github.com/prn-tf/helix/internal/pkg/crypto"
	"github.com/prn-tf/helix/internal/store"
)

// Encryptor drives an incremental encryption pass of a source directory
// into a capsule.
type Encryptor struct {
	layout    Layout
	db        *store.DB
	files     *store.FileStore
	master    crypto.Key
	chunkSize int
	log       zerolog.Logger
}

// OpenEncryptor performs capsule setup (idempotent): it ensures the
// capsule's directories exist, opens/creates the metadata database, and
// loads or generates the master key for passphrase.
func OpenEncryptor(ctx context.Context, root, passphrase string, log zerolog.Logger) (*Encryptor, error) {
	layout := NewLayout(root)

	if err := os.MkdirAll(layout.BlocksDir(), 0o700); err != nil {
		return nil, fmt.Errorf("capsule: create blocks dir: %w", err)
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
		master, err = mgr.Generate(ctx, passphrase)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("capsule: generate master key: %w", err)
		}
		log.Info().Msg("initialized new capsule master key")
	}

	return &Encryptor{
		layout:    layout,
		db:        db,
		files:     store.NewFileStore(db),
		master:    master,
		chunkSize: block.DefaultChunkSize,
		log:       log,
	}, nil
}

// Close releases the metadata database connection.
func (e *Encryptor) Close() error {
	return e.db.Close()
}

// SetChunkSize overrides the plaintext chunk size used for subsequent
// writes. A zero or negative value is ignored, leaving the default.
func (e *Encryptor) SetChunkSize(n int) {
	if n > 0 {
		e.chunkSize = n
	}
}

// Run walks sourceDir and encrypts every eligible file into the capsule,
// creating new records for unseen files and updating changed ones.
// deleteSourceAfter removes each source file once it has been durably
// encrypted.
func (e *Encryptor) Run(ctx context.Context, sourceDir string, factory observer.EncryptionObserverFactory, deleteSourceAfter bool) error {
	e.log.Debug().Str("source", sourceDir).Bool("delete_source", deleteSourceAfter).Msg("starting encryption run")
	return walkSource(sourceDir, func(absPath, relPath string) error {
		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("capsule: stat %s: %w", absPath, err)
		}

		fileID := crypto.HashBytes([]byte(relPath))
		obs := factory.NewObserver(relPath, info.Size())

		if err := e.encryptOne(ctx, fileID, relPath, absPath, obs); err != nil {
			obs.Failed(err)
			return err
		}

		if deleteSourceAfter {
			if err := os.Remove(absPath); err != nil {
				return fmt.Errorf("capsule: delete source %s: %w", absPath, err)
			}
		}
		return nil
	})
}

// encryptOne implements the create/update/unchanged decision for a
// single source file.
func (e *Encryptor) encryptOne(ctx context.Context, fileID, relPath, absPath string, obs observer.EncryptionObserver) error {
	existing, ok, err := e.files.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if !ok {
		if err := e.writeBlock(ctx, fileID, relPath, absPath, obs, false); err != nil {
			return err
		}
		obs.End(observer.Done)
		return nil
	}

	obs.UpdateState(observer.PlainFileCheck)
	currentHash, err := crypto.HashFile(absPath)
	if err != nil {
		return fmt.Errorf("capsule: hash source %s: %w", absPath, err)
	}

	if currentHash == existing.PlainHash {
		obs.UpdateState(observer.EncryptedBlockCheck)
		blockPath := e.layout.BlockPath(fileID)
		if blockHash, err := crypto.HashFile(blockPath); err == nil && blockHash == existing.EncryptedHash {
			obs.End(observer.Unchanged)
			return nil
		}
	}

	if err := e.writeBlock(ctx, fileID, relPath, absPath, obs, true); err != nil {
		return err
	}
	obs.End(observer.Done)
	return nil
}

// writeBlock generates a fresh data key, encrypts absPath's contents
// into the capsule's block directory, wraps the data key under the
// master key, AEAD-encrypts the relative path, and stores/updates the
// FileRecord. Shared by both the create and update paths, since both
// need an entirely new block, key, and wrapped path.
func (e *Encryptor) writeBlock(ctx context.Context, fileID, relPath, absPath string, obs observer.EncryptionObserver, update bool) error {
	dataKey, err := crypto.NewKey()
	if err != nil {
		return fmt.Errorf("capsule: generate data key: %w", err)
	}

	blockPath := e.layout.BlockPath(fileID)
	enc := filecrypto.NewFileEncryptor(dataKey, e.chunkSize)
	if err := enc.Encrypt(absPath, blockPath, obs); err != nil {
		return fmt.Errorf("capsule: encrypt %s: %w", relPath, err)
	}

	plainHash, err := crypto.HashFile(absPath)
	if err != nil {
		return fmt.Errorf("capsule: hash plaintext %s: %w", absPath, err)
	}
	encryptedHash, err := crypto.HashFile(blockPath)
	if err != nil {
		return fmt.Errorf("capsule: hash block %s: %w", blockPath, err)
	}

	wrappedKey, err := crypto.NewKeyEncryptor(e.master).Wrap(dataKey)
	if err != nil {
		return fmt.Errorf("capsule: wrap data key: %w", err)
	}

	encPathBytes, err := crypto.Encrypt(dataKey, []byte(relPath), nil)
	if err != nil {
		return fmt.Errorf("capsule: encrypt relative path: %w", err)
	}

	record := store.FileRecord{
		ID:            fileID,
		Key:           wrappedKey,
		PlainHash:     plainHash,
		EncryptedHash: encryptedHash,
		FilePath:      fmt.Sprintf("%x", encPathBytes),
	}

	if update {
		return e.files.Update(ctx, record)
	}
	return e.files.Store(ctx, record)
}
