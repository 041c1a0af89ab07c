package maker

import (
	"encoding/hex"
	"testing"

	"github.com/rawblock/nostrdizer/internal/podle"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex32_RoundTrip(t *testing.T) {
	var want [32]byte
	for i := range want {
		want[i] = byte(i)
	}
	got, err := decodeHex32(hex.EncodeToString(want[:]))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeHex32_WrongLength(t *testing.T) {
	_, err := decodeHex32(hex.EncodeToString([]byte{0x01, 0x02}))
	require.Error(t, err)
}

func TestDecodeHex32_InvalidHex(t *testing.T) {
	_, err := decodeHex32("not-hex")
	require.Error(t, err)
}

func TestDecodeAuthPayload_RoundTrip(t *testing.T) {
	id, err := types.NewIdentity()
	require.NoError(t, err)

	ac, err := podle.Generate(0, id.PrivKey)
	require.NoError(t, err)

	payload := wire.AuthCommitmentToPayload(ac)
	got, index, err := decodeAuthPayload(payload)
	require.NoError(t, err)
	require.Equal(t, 0, index)
	require.Equal(t, ac.Commit, got.Commit)
	require.Equal(t, ac.E, got.E)
	require.Equal(t, ac.Sig, got.Sig)
	require.True(t, ac.P.IsEqual(got.P))
	require.True(t, ac.P2.IsEqual(got.P2))
}

func TestMakerOwnedScripts(t *testing.T) {
	io := types.IoAuth{
		UTXOs: []types.UTXORef{
			{Witness: types.WitnessUTXO{PkScript: []byte{0x01, 0x02}}},
		},
	}
	mine := makerOwnedScripts(io)
	require.True(t, mine([]byte{0x01, 0x02}))
	require.False(t, mine([]byte{0x03}))
}

func TestToIoAuthPayload(t *testing.T) {
	io := types.IoAuth{
		CoinjoinAddress: "bcrt1qcj",
		ChangeAddress:   "bcrt1qchange",
	}
	p := toIoAuthPayload(io)
	require.Equal(t, "bcrt1qcj", p.CoinjoinAddress)
	require.Equal(t, "bcrt1qchange", p.ChangeAddress)
	require.Empty(t, p.UTXOs)
}
