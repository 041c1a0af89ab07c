// Package errs defines the protocol-level error taxonomy shared by every
// component in the coordinator. All are sentinel errors; call sites wrap
// them with fmt.Errorf("...: %w", err) to attach context, matching the
// teacher pack's wrapping convention.
package errs

import "errors"

var (
	// ErrTransport covers relay publish/subscribe failures.
	ErrTransport = errors.New("transport error")

	// ErrCrypto covers key derivation, encrypt/decrypt, or signature failures.
	ErrCrypto = errors.New("crypto error")

	// ErrPodleCommitMismatch is returned when a revealed commitment does not
	// match the digest stored for the round.
	ErrPodleCommitMismatch = errors.New("podle commitment mismatch")

	// ErrPodleVerifyFailed is returned when no NUMS index up to the claimed
	// one reproduces the claimed challenge hash.
	ErrPodleVerifyFailed = errors.New("podle verification failed")

	// ErrNoMatchingUtxo means the wallet has nothing eligible to offer or spend.
	ErrNoMatchingUtxo = errors.New("no matching utxo")

	// ErrInsufficientFunds means the taker cannot fund amount + fees.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotEnoughMakers means offer discovery produced too few candidates.
	ErrNotEnoughMakers = errors.New("not enough makers")

	// ErrMakersFailedToRespond means fewer than minimum_makers replied with IoAuth.
	ErrMakersFailedToRespond = errors.New("makers failed to respond")

	// ErrFeeEstimationFailed means the wallet adapter returned no fee rate.
	ErrFeeEstimationFailed = errors.New("fee estimation failed")

	// ErrFeesTooHigh is the taker-side guard in the §4.5 verifier.
	ErrFeesTooHigh = errors.New("fees too high")

	// ErrVerifyFailed means the §4.5 verifier returned verified=false.
	ErrVerifyFailed = errors.New("verification failed")

	// ErrTakerFailedToSendTransaction is the maker's 300s Pledged timeout.
	ErrTakerFailedToSendTransaction = errors.New("taker failed to send transaction")

	// ErrInvalidCredentials surfaces adapter authn/authz failures.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBadInput surfaces malformed caller input.
	ErrBadInput = errors.New("bad input")

	// ErrDecode surfaces wire/JSON decode failures.
	ErrDecode = errors.New("decode error")

	// ErrEmptyPSBTSet is returned by Combine when given zero PSBTs, replacing
	// the source's unwrap-the-first-and-fold panic with a typed error.
	ErrEmptyPSBTSet = errors.New("no psbts to combine")

	// ErrConflictingWitness is returned by Combine when two PSBTs sign the
	// same input with different witness data.
	ErrConflictingWitness = errors.New("conflicting witness data for input")
)

// IsAny reports whether err wraps any of the given sentinels.
func IsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
