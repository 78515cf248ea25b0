// Package store persists capsule metadata in an embedded SQLite
// database: the singleton wrapped master key and one row per tracked
// source file.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS master_key (
  id INTEGER NOT NULL PRIMARY KEY,
  passphrase_hash TEXT NOT NULL,
  master_key      TEXT NOT NULL);

CREATE TABLE IF NOT EXISTS files (
  id             TEXT NOT NULL PRIMARY KEY,
  key            TEXT NOT NULL,
  plain_hash     TEXT NOT NULL,
  encrypted_hash TEXT NOT NULL,
  file_path      TEXT NOT NULL);
`

// masterKeyRowID is the literal singleton primary key for master_key.
const masterKeyRowID = 1

// DB wraps the capsule's metadata database connection and owns schema
// creation. The driver opens exactly one DB per run and holds it
// exclusively for the run's duration.
type DB struct {
	conn *sql.DB
	log  zerolog.Logger
}

// Open opens (creating if absent) the SQLite file at path and applies
// the schema.
func Open(ctx context.Context, path string, log zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	log.Info().Str("path", path).Msg("opened metadata database")
	return &DB{conn: conn, log: log}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	db.log.Info().Msg("closed metadata database")
	return db.conn.Close()
}

// MasterKeyRecord is the singleton row in master_key.
type MasterKeyRecord struct {
	PassphraseHash string
	MasterKey      string // WrappedKey JSON
}

// MasterKeyStore persists the capsule's single wrapped master key.
type MasterKeyStore struct {
	db *DB
}

// NewMasterKeyStore returns a MasterKeyStore bound to db.
func NewMasterKeyStore(db *DB) *MasterKeyStore {
	return &MasterKeyStore{db: db}
}

// Get returns the singleton master key record, or ok=false if the
// capsule has not been initialized yet.
func (s *MasterKeyStore) Get(ctx context.Context) (record MasterKeyRecord, ok bool, err error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT passphrase_hash, master_key FROM master_key WHERE id = ?`, masterKeyRowID)

	if err := row.Scan(&record.PassphraseHash, &record.MasterKey); err != nil {
		if err == sql.ErrNoRows {
			return MasterKeyRecord{}, false, nil
		}
		return MasterKeyRecord{}, false, fmt.Errorf("store: get master key: %w", err)
	}
	return record, true, nil
}

// Insert writes the singleton master key record. The core never updates
// it in place: a passphrase cannot be changed by this design.
func (s *MasterKeyStore) Insert(ctx context.Context, record MasterKeyRecord) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO master_key (id, passphrase_hash, master_key) VALUES (?, ?, ?)`,
		masterKeyRowID, record.PassphraseHash, record.MasterKey)
	if err != nil {
		return fmt.Errorf("store: insert master key: %w", err)
	}
	s.db.log.Debug().Msg("inserted master key record")
	return nil
}

// FileRecord tracks one source file's encryption state.
type FileRecord struct {
	ID            string // hex(SHA-256(relative source path))
	Key           string // WrappedKey JSON, under the master key
	PlainHash     string
	EncryptedHash string
	FilePath      string // hex(AEAD(data_key, relative path))
}

// FileStore persists one row per tracked source file.
type FileStore struct {
	db *DB
}

// NewFileStore returns a FileStore bound to db.
func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Get returns the record for id, or ok=false if no such file is tracked.
func (s *FileStore) Get(ctx context.Context, id string) (record FileRecord, ok bool, err error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, key, plain_hash, encrypted_hash, file_path FROM files WHERE id = ?`, id)

	if err := row.Scan(&record.ID, &record.Key, &record.PlainHash, &record.EncryptedHash, &record.FilePath); err != nil {
		if err == sql.ErrNoRows {
			return FileRecord{}, false, nil
		}
		return FileRecord{}, false, fmt.Errorf("store: get file %s: %w", id, err)
	}
	return record, true, nil
}

// GetAll returns every tracked file record.
func (s *FileStore) GetAll(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, key, plain_hash, encrypted_hash, file_path FROM files`)
	if err != nil {
		return nil, fmt.Errorf("store: get all files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.ID, &r.Key, &r.PlainHash, &r.EncryptedHash, &r.FilePath); err != nil {
			return nil, fmt.Errorf("store: scan file row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate file rows: %w", err)
	}
	return records, nil
}

// Store inserts a new file record.
func (s *FileStore) Store(ctx context.Context, record FileRecord) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO files (id, key, plain_hash, encrypted_hash, file_path) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Key, record.PlainHash, record.EncryptedHash, record.FilePath)
	if err != nil {
		return fmt.Errorf("store: store file %s: %w", record.ID, err)
	}
	s.db.log.Debug().Str("file_id", record.ID).Msg("stored new file record")
	return nil
}

// Update overwrites an existing file record.
func (s *FileStore) Update(ctx context.Context, record FileRecord) error {
	_, err := s.db.conn.ExecContext(ctx,
		`UPDATE files SET key = ?, plain_hash = ?, encrypted_hash = ?, file_path = ? WHERE id = ?`,
		record.Key, record.PlainHash, record.EncryptedHash, record.FilePath, record.ID)
	if err != nil {
		return fmt.Errorf("store: update file %s: %w", record.ID, err)
	}
	s.db.log.Debug().Str("file_id", record.ID).Msg("updated file record")
	return nil
}
