package txbuild

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/wallet"
)

// FinalizeAndBroadcast finalizes every input of a fully-signed PSBT (via the
// wallet adapter, which fills final_script_witness from the accumulated
// partial signatures), extracts the raw transaction, and broadcasts it.
func FinalizeAndBroadcast(ctx context.Context, adapter wallet.Adapter, p *psbt.Packet) (string, error) {
	finalized, err := adapter.FinalizePSBT(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%w: finalize psbt: %v", errs.ErrCrypto, err)
	}

	if !psbt.IsFinalized(finalized) {
		return "", fmt.Errorf("%w: psbt not fully finalized", errs.ErrVerifyFailed)
	}

	tx, err := psbt.Extract(finalized)
	if err != nil {
		return "", fmt.Errorf("%w: extract final tx: %v", errs.ErrDecode, err)
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("%w: serialize final tx: %v", errs.ErrDecode, err)
	}

	txid, err := adapter.Broadcast(ctx, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("%w: broadcast: %v", errs.ErrTransport, err)
	}
	return txid, nil
}
