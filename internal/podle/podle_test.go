package podle

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return sk
}

func TestGenerateVerify_RoundTrip(t *testing.T) {
	sk := mustKey(t)

	commitment, err := Generate(0, sk)
	require.NoError(t, err)

	err = Verify(0, commitment, commitment.Commit)
	require.NoError(t, err)
}

func TestGenerate_IndexOutOfRange(t *testing.T) {
	sk := mustKey(t)

	tests := []struct {
		name  string
		index int
	}{
		{"negative", -1},
		{"too large", NumsCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.index, sk)
			require.Error(t, err)
		})
	}
}

func TestVerify_CommitMismatch(t *testing.T) {
	sk := mustKey(t)

	commitment, err := Generate(0, sk)
	require.NoError(t, err)

	var wrongFillCommit [32]byte
	copy(wrongFillCommit[:], "not-the-commitment-that-was-sent")

	err = Verify(0, commitment, wrongFillCommit)
	require.ErrorContains(t, err, "podle commitment mismatch")
}

func TestVerify_TamperedSigFails(t *testing.T) {
	sk := mustKey(t)

	commitment, err := Generate(0, sk)
	require.NoError(t, err)

	commitment.Sig.Add(commitment.Sig, commitment.Sig)
	err = Verify(0, commitment, commitment.Commit)
	require.ErrorContains(t, err, "podle verification failed")
}

func TestGenerate_SameKeySameIndex_ProducesSameCommit(t *testing.T) {
	// The replay-detection signal (spec §8 scenario 5) depends on the
	// commitment digest, not the one-time Schnorr-style proof, being
	// deterministic for a given (key, index) pair.
	sk := mustKey(t)

	first, err := Generate(0, sk)
	require.NoError(t, err)
	second, err := Generate(0, sk)
	require.NoError(t, err)

	require.Equal(t, first.Commit, second.Commit)
}

func TestGenerate_DifferentKeys_ProduceDifferentCommits(t *testing.T) {
	a, err := Generate(0, mustKey(t))
	require.NoError(t, err)
	b, err := Generate(0, mustKey(t))
	require.NoError(t, err)

	require.NotEqual(t, a.Commit, b.Commit)
}

func TestVerify_HigherIndexStillVerifiesLowerCommitment(t *testing.T) {
	// Per spec §4.3, a verifier scans every NUMS index up to its own claimed
	// index, so a Maker with a higher configured index still accepts a
	// commitment generated at a lower one.
	sk := mustKey(t)

	commitment, err := Generate(0, sk)
	require.NoError(t, err)

	err = Verify(5, commitment, commitment.Commit)
	require.NoError(t, err)
}
