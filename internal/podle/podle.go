// Package podle implements the proof-of-discrete-log-equivalence commitment
// scheme used as the protocol's anti-Sybil layer (spec §4.3): a Taker binds
// a fill to a specific Bitcoin key so that reuse against the same NUMS
// index produces an identical digest, detectable by any Maker holding
// recent commitments.
package podle

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
)

// curveOrder is the secp256k1 group order n.
var curveOrder = btcec.S256().N

// Generate builds an AuthCommitment binding skBitcoin to NUMS[index], per
// spec §4.3 steps 1-7.
func Generate(index int, skBitcoin *btcec.PrivateKey) (types.AuthCommitment, error) {
	if index < 0 || index >= NumsCount {
		return types.AuthCommitment{}, fmt.Errorf("%w: nums index %d out of range", errs.ErrBadInput, index)
	}
	nums := NUMS()
	j := nums[index]

	p := skBitcoin.PubKey()

	k, err := randScalar()
	if err != nil {
		return types.AuthCommitment{}, fmt.Errorf("%w: random scalar: %v", errs.ErrCrypto, err)
	}

	kg := scalarMultG(k)
	kj := scalarMultPoint(k, j)
	p2 := scalarMultPoint(new(big.Int).SetBytes(skBitcoin.Serialize()), j)

	commit := sha256.Sum256(p2.SerializeCompressed())

	e := hashChallenge(kg, kj, p, p2)

	eInt := new(big.Int).SetBytes(e[:])
	skInt := new(big.Int).SetBytes(skBitcoin.Serialize())
	sig := new(big.Int).Add(k, new(big.Int).Mul(skInt, eInt))
	sig.Mod(sig, curveOrder)

	return types.AuthCommitment{
		Index:  index,
		P:      p,
		P2:     p2,
		Commit: commit,
		Sig:    sig,
		E:      e,
	}, nil
}

// Verify checks that commitment matches fillCommit and that the prover's
// revealed sig/e is consistent with some NUMS index in [0, index], per
// spec §4.3's Verify algorithm.
func Verify(index int, commitment types.AuthCommitment, fillCommit [32]byte) error {
	if index < 0 || index >= NumsCount {
		return fmt.Errorf("%w: nums index %d out of range", errs.ErrBadInput, index)
	}

	computedCommit := sha256.Sum256(commitment.P2.SerializeCompressed())
	if computedCommit != commitment.Commit || commitment.Commit != fillCommit {
		return fmt.Errorf("%w", errs.ErrPodleCommitMismatch)
	}

	nums := NUMS()
	for i := 0; i <= index; i++ {
		ji := nums[i]

		// KG' = sig*G - e*P
		kgPrime := pointSub(scalarMultG(commitment.Sig), scalarMultPoint(new(big.Int).SetBytes(commitment.E[:]), commitment.P))
		// KJ' = sig*J_i - e*P2
		kjPrime := pointSub(scalarMultPoint(commitment.Sig, ji), scalarMultPoint(new(big.Int).SetBytes(commitment.E[:]), commitment.P2))

		ePrime := hashChallenge(kgPrime, kjPrime, commitment.P, commitment.P2)
		if ePrime == commitment.E {
			return nil
		}
	}
	return fmt.Errorf("%w", errs.ErrPodleVerifyFailed)
}

func hashChallenge(kg, kj, p, p2 *btcec.PublicKey) [32]byte {
	h := sha256.New()
	h.Write(kg.SerializeCompressed())
	h.Write(kj.SerializeCompressed())
	h.Write(p.SerializeCompressed())
	h.Write(p2.SerializeCompressed())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func randScalar() (*big.Int, error) {
	for {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(curveOrder) < 0 {
			return k, nil
		}
	}
}

func scalarMultG(k *big.Int) *btcec.PublicKey {
	var kModN btcec.ModNScalar
	kModN.SetByteSlice(padTo32(k))
	var result btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&kModN, &result)
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y)
}

func scalarMultPoint(k *big.Int, point *btcec.PublicKey) *btcec.PublicKey {
	var kModN btcec.ModNScalar
	kModN.SetByteSlice(padTo32(k))
	var jp, result btcec.JacobianPoint
	point.AsJacobian(&jp)
	btcec.ScalarMultNonConst(&kModN, &jp, &result)
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y)
}

func pointSub(a, b *btcec.PublicKey) *btcec.PublicKey {
	var aj, bj, negB, result btcec.JacobianPoint
	a.AsJacobian(&aj)
	b.AsJacobian(&negB)
	negB.Y.Negate(1)
	negB.Y.Normalize()
	bj = negB
	btcec.AddNonConst(&aj, &bj, &result)
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y)
}

// padTo32 returns k's big-endian bytes, left-padded/truncated into a 32-byte
// buffer suitable for ModNScalar.SetByteSlice, taking k mod n first so
// oversized sums (e.g. the verifier's raw sig scalar) reduce correctly.
func padTo32(k *big.Int) []byte {
	reduced := new(big.Int).Mod(k, curveOrder)
	b := reduced.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
