// Package masterkey derives the capsule's master key from a user
// passphrase and persists its wrapped form.
package masterkey

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/helix/internal/pkg/crypto"
	"github.com/prn-tf/helix/internal/store"
)

// ErrPassphraseMismatch is returned by Get when the supplied passphrase's
// digest does not match the one stored at capsule creation.
var ErrPassphraseMismatch = errors.New("masterkey: passphrase does not match capsule")

// ErrMalformedCapsule is returned when the stored wrapped master key
// fails to unwrap under a passphrase whose digest matched — data
// corruption or tampering, not a user error.
var ErrMalformedCapsule = errors.New("masterkey: master key record is corrupt")

// Manager derives, wraps, and unwraps the capsule's master key against
// its passphrase-derived key, backed by a MasterKeyStore.
type Manager struct {
	store *store.MasterKeyStore
	log   zerolog.Logger
}

// NewManager returns a Manager backed by mks.
func NewManager(mks *store.MasterKeyStore, log zerolog.Logger) *Manager {
	return &Manager{store: mks, log: log}
}

// Generate creates a fresh master key, wraps it under a key derived from
// passphrase, and persists the record. Callers must only invoke this
// when the store is empty.
func (m *Manager) Generate(ctx context.Context, passphrase string) (crypto.Key, error) {
	digest := crypto.HashBytes([]byte(passphrase))
	pKey, err := deriveSeededKey(passphrase, digest)
	if err != nil {
		return crypto.Key{}, fmt.Errorf("masterkey: derive passphrase key: %w", err)
	}

	master, err := crypto.NewKey()
	if err != nil {
		return crypto.Key{}, fmt.Errorf("masterkey: generate master key: %w", err)
	}

	wrapped, err := crypto.NewKeyEncryptor(pKey).Wrap(master)
	if err != nil {
		return crypto.Key{}, fmt.Errorf("masterkey: wrap master key: %w", err)
	}

	if err := m.store.Insert(ctx, store.MasterKeyRecord{
		PassphraseHash: digest,
		MasterKey:      wrapped,
	}); err != nil {
		return crypto.Key{}, err
	}
	m.log.Info().Msg("generated new master key")
	return master, nil
}

// Get returns the master key unwrapped under passphrase. ok is false if
// the capsule has not been initialized yet (callers should Generate).
func (m *Manager) Get(ctx context.Context, passphrase string) (key crypto.Key, ok bool, err error) {
	record, present, err := m.store.Get(ctx)
	if err != nil {
		return crypto.Key{}, false, err
	}
	if !present {
		return crypto.Key{}, false, nil
	}

	digest := crypto.HashBytes([]byte(passphrase))
	if digest != record.PassphraseHash {
		m.log.Warn().Msg("passphrase does not match capsule")
		return crypto.Key{}, false, ErrPassphraseMismatch
	}

	pKey, err := deriveSeededKey(passphrase, digest)
	if err != nil {
		return crypto.Key{}, false, fmt.Errorf("masterkey: derive passphrase key: %w", err)
	}

	master, err := crypto.NewKeyDecryptor(pKey).Unwrap(record.MasterKey)
	if err != nil {
		m.log.Warn().Err(err).Msg("master key record failed to unwrap")
		return crypto.Key{}, false, fmt.Errorf("%w: %v", ErrMalformedCapsule, err)
	}
	m.log.Debug().Msg("loaded master key")
	return master, true, nil
}

// deriveSeededKey computes the deterministic passphrase-key seed
// (SHA-256 of passphrase concatenated with its own digest) and derives a
// Key from it.
func deriveSeededKey(passphrase, digest string) (crypto.Key, error) {
	var seed [32]byte
	sum := crypto.HashBytesRaw(append([]byte(passphrase), []byte(digest)...))
	copy(seed[:], sum)
	return crypto.KeyFromSeed(seed)
}
