package wire

import (
	"testing"

	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/stretchr/testify/require"
)

func mustIdentity(t *testing.T) types.Identity {
	t.Helper()
	id, err := types.NewIdentity()
	require.NoError(t, err)
	return id
}

func TestNewEvent_PlaintextRoundTripsID(t *testing.T) {
	id := mustIdentity(t)
	e, err := NewEvent(id, KindAbsoluteOffer, nil, `{"a":1}`, 1700000000)
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	require.Equal(t, id.PubKeyHex(), e.PubKey)
}

func TestNewDirectedEvent_VerifyAndDecrypt_RoundTrip(t *testing.T) {
	sender := mustIdentity(t)
	recipient := mustIdentity(t)

	payload, err := Encode(EventFill, FillPayload{OfferID: 1, Amount: 50000})
	require.NoError(t, err)

	e, err := NewDirectedEvent(sender, KindFill, recipient.PubKeyHex(), payload, 1700000000)
	require.NoError(t, err)

	p, ok := e.PTag()
	require.True(t, ok)
	require.Equal(t, recipient.PubKeyHex(), p)

	plaintext, err := VerifyAndDecrypt(recipient, e)
	require.NoError(t, err)
	require.Equal(t, payload, plaintext)
}

func TestVerifyAndDecrypt_TamperedContentFailsIDCheck(t *testing.T) {
	sender := mustIdentity(t)
	recipient := mustIdentity(t)

	payload, err := Encode(EventFill, FillPayload{OfferID: 1, Amount: 50000})
	require.NoError(t, err)

	e, err := NewDirectedEvent(sender, KindFill, recipient.PubKeyHex(), payload, 1700000000)
	require.NoError(t, err)

	e.Content = e.Content + "tampered"

	_, err = VerifyAndDecrypt(recipient, e)
	require.ErrorContains(t, err, "event id mismatch")
}

func TestVerifyAndDecrypt_WrongRecipientFails(t *testing.T) {
	sender := mustIdentity(t)
	recipient := mustIdentity(t)
	stranger := mustIdentity(t)

	payload, err := Encode(EventFill, FillPayload{OfferID: 1, Amount: 50000})
	require.NoError(t, err)

	e, err := NewDirectedEvent(sender, KindFill, recipient.PubKeyHex(), payload, 1700000000)
	require.NoError(t, err)

	_, err = VerifyAndDecrypt(stranger, e)
	require.Error(t, err)
}
