package wire

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	sender, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	recipient, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	plaintext := []byte(`{"hello":"world"}`)

	encoded, err := Encrypt(sender, recipient.PubKey(), plaintext)
	require.NoError(t, err)
	require.Contains(t, encoded, "?iv=")

	decoded, err := Decrypt(recipient, sender.PubKey(), encoded)
	require.NoError(t, err)
	require.Equal(t, plaintext, decoded)
}

func TestDecrypt_WrongRecipientFails(t *testing.T) {
	sender, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	recipient, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	eavesdropper, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	encoded, err := Encrypt(sender, recipient.PubKey(), []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(eavesdropper, sender.PubKey(), encoded)
	require.Error(t, err)
}

func TestDecrypt_MalformedEncoding(t *testing.T) {
	recipient, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	sender, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	_, err = Decrypt(recipient, sender.PubKey(), "not-the-expected-format")
	require.ErrorContains(t, err, "malformed encrypted content")
}

func TestEncrypt_IsNonDeterministic(t *testing.T) {
	// Random IV per call means identical plaintext never produces identical
	// ciphertext, so repeated fills don't leak via ciphertext comparison.
	sender, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	recipient, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, err := Encrypt(sender, recipient.PubKey(), []byte("same"))
	require.NoError(t, err)
	b, err := Encrypt(sender, recipient.PubKey(), []byte("same"))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
