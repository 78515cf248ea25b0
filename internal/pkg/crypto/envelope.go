package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// wrappedKey is the on-disk JSON shape of a WrappedKey-text blob:
// {"key":"<hex ciphertext>","nonce":"<hex child nonce>"}. The parent
// key's own nonce is never serialized — it is implicit in the parent Key.
type wrappedKey struct {
	Key   string `json:"key"`
	Nonce string `json:"nonce"`
}

// KeyEncryptor wraps child Keys under a fixed parent Key.
type KeyEncryptor struct {
	parent Key
}

// NewKeyEncryptor returns a KeyEncryptor bound to parent.
func NewKeyEncryptor(parent Key) KeyEncryptor {
	return KeyEncryptor{parent: parent}
}

// Wrap AEAD-encrypts child.K under the parent key and serializes the
// result as a compact WrappedKey-text JSON blob.
func (e KeyEncryptor) Wrap(child Key) (string, error) {
	ciphertext, err := Encrypt(e.parent, child.K[:], nil)
	if err != nil {
		return "", fmt.Errorf("crypto: wrap key: %w", err)
	}

	blob, err := json.Marshal(wrappedKey{
		Key:   hex.EncodeToString(ciphertext),
		Nonce: hex.EncodeToString(child.N[:]),
	})
	if err != nil {
		return "", fmt.Errorf("crypto: marshal wrapped key: %w", err)
	}
	return string(blob), nil
}

// KeyDecryptor unwraps WrappedKey-text blobs produced by a matching
// KeyEncryptor back into a clear child Key.
type KeyDecryptor struct {
	parent Key
}

// NewKeyDecryptor returns a KeyDecryptor bound to parent.
func NewKeyDecryptor(parent Key) KeyDecryptor {
	return KeyDecryptor{parent: parent}
}

// Unwrap parses text, hex-decodes it, and AEAD-decrypts the child key
// under the parent key. It fails with ErrAuthenticationFailure if the
// parent key is wrong or the key ciphertext was tampered with. The
// nonce field travels in clear and is not authenticated; malformed JSON,
// hex, or lengths fail with a descriptive error instead.
func (d KeyDecryptor) Unwrap(text string) (Key, error) {
	var wrapped wrappedKey
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return Key{}, fmt.Errorf("crypto: unmarshal wrapped key: %w", err)
	}

	ciphertext, err := hex.DecodeString(wrapped.Key)
	if err != nil {
		return Key{}, fmt.Errorf("crypto: decode wrapped key ciphertext: %w", err)
	}
	nonce, err := hex.DecodeString(wrapped.Nonce)
	if err != nil {
		return Key{}, fmt.Errorf("crypto: decode wrapped key nonce: %w", err)
	}
	if len(nonce) != NonceSize {
		return Key{}, fmt.Errorf("crypto: wrapped key nonce has wrong length %d", len(nonce))
	}

	plaintext, err := Decrypt(d.parent, ciphertext, nil)
	if err != nil {
		return Key{}, err
	}
	if len(plaintext) != KeySize {
		return Key{}, fmt.Errorf("crypto: wrapped key plaintext has wrong length %d", len(plaintext))
	}

	var child Key
	copy(child.K[:], plaintext)
	copy(child.N[:], nonce)
	return child, nil
}
