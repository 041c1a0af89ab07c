package wire

import (
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

func hexEncodePoint(p *btcec.PublicKey) string {
	if p == nil {
		return ""
	}
	return hex.EncodeToString(p.SerializeCompressed())
}

func hexEncodeBytes(b []byte) string { return hex.EncodeToString(b) }

// hexEncodeBigInt serializes a scalar as 32 big-endian bytes, per spec §4.3's
// "scalars are serialized big-endian to and from 32 bytes" rule.
func hexEncodeBigInt(n *big.Int) string {
	b := n.Bytes()
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return hex.EncodeToString(out)
}
