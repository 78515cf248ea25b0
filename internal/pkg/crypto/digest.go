package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashBytes returns hex(SHA-256(data)).
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashBytesRaw returns the raw SHA-256 digest of data, for callers that
// need the 32-byte sum itself rather than its hex encoding (e.g. to seed
// KeyFromSeed).
func HashBytesRaw(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HashFile returns hex(SHA-256(contents of path)), streaming the file
// through the digest rather than reading it fully into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("crypto: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("crypto: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
