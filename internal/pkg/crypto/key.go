// Package crypto provides the cryptographic primitives for helix capsules:
// AEAD byte encryption, key objects, key envelopes, and content digests.
package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the size of a symmetric AEAD key (256 bits).
	KeySize = chacha20poly1305.KeySize

	// NonceSize is the size of the fixed nonce bound to a Key (96 bits).
	NonceSize = chacha20poly1305.NonceSize

	// Overhead is the authentication tag size appended to every AEAD message.
	Overhead = chacha20poly1305.Overhead
)

// Key is a symmetric AEAD key paired with its fixed nonce. Within one
// capsule a given Key value must encrypt at most one plaintext (a file, a
// filepath, or a child key) — reusing a Key across distinct plaintexts
// breaks ChaCha20-Poly1305's nonce-uniqueness requirement.
type Key struct {
	K [KeySize]byte
	N [NonceSize]byte
}

// NewKey generates a fresh Key from the operating system CSPRNG.
func NewKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k.K[:]); err != nil {
		return Key{}, fmt.Errorf("crypto: generate key: %w", err)
	}
	if _, err := rand.Read(k.N[:]); err != nil {
		return Key{}, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	return k, nil
}

// KeyFromSeed deterministically derives a Key from a 32-byte seed. Two
// calls with equal seeds always yield equal keys — required so that a
// passphrase-derived key is stable across runs. The seed keys a ChaCha20
// keystream (used here purely as a deterministic CSPRNG, never as the
// capsule's actual encryption) whose first KeySize+NonceSize bytes become
// the key and nonce.
func KeyFromSeed(seed [32]byte) (Key, error) {
	var zeroNonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], zeroNonce[:])
	if err != nil {
		return Key{}, fmt.Errorf("crypto: seed cipher: %w", err)
	}

	out := make([]byte, KeySize+NonceSize)
	stream.XORKeyStream(out, out)

	var k Key
	copy(k.K[:], out[:KeySize])
	copy(k.N[:], out[KeySize:])
	return k, nil
}
