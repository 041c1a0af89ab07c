package taker

import (
	"testing"

	"github.com/rawblock/nostrdizer/internal/types"
	nwire "github.com/rawblock/nostrdizer/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestDecodeOfferEvent_RoundTrip(t *testing.T) {
	o := types.Offer{Kind: types.OfferKindAbsolute, MinSize: 1000, MaxSize: 2000, CJFeeAbs: 100, OfferID: 7}
	payload, err := nwire.Encode(nwire.EventOffer, nwire.OfferToPayload(o))
	require.NoError(t, err)

	e := nwire.RawEvent{PubKey: "maker1", Kind: nwire.KindAbsoluteOffer, Content: string(payload)}
	got, ok := decodeOfferEvent(e)
	require.True(t, ok)
	require.Equal(t, "maker1", got.MakerPub)
	require.Equal(t, uint32(7), got.OfferID)
	require.Equal(t, int64(100), got.CJFeeAbs)
}

func TestDecodeOfferEvent_MalformedContentIsRejected(t *testing.T) {
	e := nwire.RawEvent{PubKey: "maker1", Content: "not json"}
	_, ok := decodeOfferEvent(e)
	require.False(t, ok)
}

func TestDecodeOfferEvent_WrongEventTypeIsRejected(t *testing.T) {
	payload, err := nwire.Encode(nwire.EventFill, nwire.FillPayload{OfferID: 1, Amount: 1000})
	require.NoError(t, err)
	e := nwire.RawEvent{PubKey: "maker1", Content: string(payload)}
	_, ok := decodeOfferEvent(e)
	require.False(t, ok)
}

func TestFromIoAuthPayload_RoundTrip(t *testing.T) {
	txid := "aa00000000000000000000000000000000000000000000000000000000001b"
	p := nwire.IoAuthPayload{
		CoinjoinAddress: "bcrt1qcj",
		ChangeAddress:   "bcrt1qchange",
		UTXOs: []nwire.UTXOPayload{
			{Txid: txid, Vout: 2, WitnessValue: 50000, WitnessPkScript: "0014aa"},
		},
	}

	io, err := fromIoAuthPayload(p)
	require.NoError(t, err)
	require.Equal(t, "bcrt1qcj", io.CoinjoinAddress)
	require.Len(t, io.UTXOs, 1)
	require.Equal(t, uint32(2), io.UTXOs[0].Outpoint.Index)
	require.Equal(t, int64(50000), io.UTXOs[0].Witness.Value)
	require.Equal(t, []byte{0x00, 0x14, 0xaa}, io.UTXOs[0].Witness.PkScript)
}

func TestFromIoAuthPayload_BadTxidFails(t *testing.T) {
	p := nwire.IoAuthPayload{
		UTXOs: []nwire.UTXOPayload{{Txid: "not-a-hash", Vout: 0}},
	}
	_, err := fromIoAuthPayload(p)
	require.Error(t, err)
}

func TestFromIoAuthPayload_BadScriptHexFails(t *testing.T) {
	txid := "aa00000000000000000000000000000000000000000000000000000000001b"
	p := nwire.IoAuthPayload{
		UTXOs: []nwire.UTXOPayload{{Txid: txid, Vout: 0, WitnessPkScript: "zz"}},
	}
	_, err := fromIoAuthPayload(p)
	require.Error(t, err)
}
