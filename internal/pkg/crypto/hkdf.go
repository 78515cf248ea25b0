package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveSubkey derives a Key from ikm (input keying material) and info
// using HKDF-SHA256. This is not used on the passphrase path — the
// master-key KDF is a deliberately simple unsalted double-SHA-256
// construction fixed by the on-disk format — but is available to
// callers who need a reproducible derived key from arbitrary material,
// such as tests building fixture keys from a label rather than random
// bytes.
func DeriveSubkey(ikm, info []byte) (Key, error) {
	reader := hkdf.New(sha256.New, ikm, nil, info)

	var out [KeySize + NonceSize]byte
	if _, err := io.ReadFull(reader, out[:]); err != nil {
		return Key{}, fmt.Errorf("crypto: derive subkey: %w", err)
	}

	var key Key
	copy(key.K[:], out[:KeySize])
	copy(key.N[:], out[KeySize:])
	return key, nil
}
