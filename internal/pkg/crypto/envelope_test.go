package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/pkg/crypto"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	parent, err := crypto.NewKey()
	require.NoError(t, err)
	child, err := crypto.NewKey()
	require.NoError(t, err)

	text, err := crypto.NewKeyEncryptor(parent).Wrap(child)
	require.NoError(t, err)

	got, err := crypto.NewKeyDecryptor(parent).Unwrap(text)
	require.NoError(t, err)
	require.Equal(t, child, got)
}

func TestUnwrapFailsWithWrongParent(t *testing.T) {
	parent, err := crypto.NewKey()
	require.NoError(t, err)
	wrongParent, err := crypto.NewKey()
	require.NoError(t, err)
	child, err := crypto.NewKey()
	require.NoError(t, err)

	text, err := crypto.NewKeyEncryptor(parent).Wrap(child)
	require.NoError(t, err)

	_, err = crypto.NewKeyDecryptor(wrongParent).Unwrap(text)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailure)
}
