package maker

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wire"
)

func decodeHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%w: decode hex32: %v", errs.ErrDecode, err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("%w: expected 32 bytes, got %d", errs.ErrDecode, len(b))
	}
	copy(out[:], b)
	return out, nil
}

func hexEncode(b []byte) string { return hex.EncodeToString(b) }

// decodeAuthPayload parses the wire AuthPayload back into an AuthCommitment
// and also returns the NUMS index the payload claims (ap.Index), which the
// Maker passes to podle.Verify as the highest index its scan tries.
func decodeAuthPayload(ap wire.AuthPayload) (types.AuthCommitment, int, error) {
	p, err := btcec.ParsePubKey(mustHex(ap.P))
	if err != nil {
		return types.AuthCommitment{}, 0, fmt.Errorf("%w: parse P: %v", errs.ErrCrypto, err)
	}
	p2, err := btcec.ParsePubKey(mustHex(ap.P2))
	if err != nil {
		return types.AuthCommitment{}, 0, fmt.Errorf("%w: parse P2: %v", errs.ErrCrypto, err)
	}
	commit, err := decodeHex32(ap.Commit)
	if err != nil {
		return types.AuthCommitment{}, 0, err
	}
	e, err := decodeHex32(ap.E)
	if err != nil {
		return types.AuthCommitment{}, 0, err
	}
	sigBytes, err := hex.DecodeString(ap.Sig)
	if err != nil {
		return types.AuthCommitment{}, 0, fmt.Errorf("%w: decode sig: %v", errs.ErrDecode, err)
	}

	ac := types.AuthCommitment{Index: ap.Index, P: p, P2: p2, Commit: commit, Sig: new(big.Int).SetBytes(sigBytes), E: e}
	return ac, ap.Index, nil
}

func mustHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
