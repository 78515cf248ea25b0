package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthenticationFailure indicates that an AEAD tag failed to verify.
// The caller must not consume any data returned alongside this error.
var ErrAuthenticationFailure = errors.New("crypto: authentication failure")

// Encrypt AEAD-encrypts plaintext under (key.K, key.N) with the given
// associated data, returning ciphertext with a 16-byte tag appended.
// Encrypt only fails on internal cipher construction errors, which are
// not expected for a well-formed Key; such a failure is fatal.
func Encrypt(key Key, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.K[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: new aead: %w", err)
	}
	return aead.Seal(nil, key.N[:], plaintext, aad), nil
}

// Decrypt reverses Encrypt. It fails with ErrAuthenticationFailure if the
// tag does not verify against the associated data.
func Decrypt(key Key, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.K[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: new aead: %w", err)
	}
	plaintext, err := aead.Open(nil, key.N[:], ciphertext, aad)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}
