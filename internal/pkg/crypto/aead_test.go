package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/pkg/crypto"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := crypto.NewKey()
	require.NoError(t, err)

	for _, msg := range [][]byte{
		{},
		[]byte("hello, capsule"),
		make([]byte, 2*1024*1024),
	} {
		ciphertext, err := crypto.Encrypt(key, msg, []byte("aad"))
		require.NoError(t, err)

		plaintext, err := crypto.Decrypt(key, ciphertext, []byte("aad"))
		require.NoError(t, err)
		require.Equal(t, msg, plaintext)
	}
}

func TestDecryptFailsOnWrongAAD(t *testing.T) {
	key, err := crypto.NewKey()
	require.NoError(t, err)

	ciphertext, err := crypto.Encrypt(key, []byte("payload"), []byte{0, 0, 0, 1})
	require.NoError(t, err)

	_, err = crypto.Decrypt(key, ciphertext, []byte{0, 0, 0, 2})
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailure)
}

func TestDecryptFailsOnTamperedCiphertext(t *testing.T) {
	key, err := crypto.NewKey()
	require.NoError(t, err)

	ciphertext, err := crypto.Encrypt(key, []byte("payload"), nil)
	require.NoError(t, err)
	ciphertext[0] ^= 0xFF

	_, err = crypto.Decrypt(key, ciphertext, nil)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailure)
}
