// Package walletrpc implements wallet.Adapter against a Bitcoin Core wallet
// over JSON-RPC, grounded on the teacher's internal/bitcoin/client.go
// connection and fee-estimation discipline.
package walletrpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/wallet"
)

// Config is the Bitcoin Core RPC endpoint and credentials.
type Config struct {
	Host string
	User string
	Pass string
}

// Client is a wallet.Adapter backed by a single Bitcoin Core wallet.
type Client struct {
	rpc *rpcclient.Client
	cfg Config
}

// Connect dials cfg.Host and verifies the connection, matching the
// teacher's NewClient block-count handshake.
func Connect(cfg Config) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	log.Printf("[walletrpc] connecting to %s...", cfg.Host)
	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connect rpc: %v", errs.ErrTransport, err)
	}
	if _, err := rpc.GetBlockCount(); err != nil {
		rpc.Shutdown()
		return nil, fmt.Errorf("%w: rpc handshake: %v", errs.ErrTransport, err)
	}
	return &Client{rpc: rpc, cfg: cfg}, nil
}

func (c *Client) Shutdown() { c.rpc.Shutdown() }

func (c *Client) ListUnspent(ctx context.Context) ([]wallet.UTXO, error) {
	results, err := c.rpc.ListUnspent()
	if err != nil {
		return nil, fmt.Errorf("%w: listunspent: %v", errs.ErrTransport, err)
	}
	out := make([]wallet.UTXO, 0, len(results))
	for _, r := range results {
		script, err := hex.DecodeString(r.ScriptPubKey)
		if err != nil {
			continue
		}
		amt, err := btcutil.NewAmount(r.Amount)
		if err != nil {
			continue
		}
		out = append(out, wallet.UTXO{
			Txid:          r.TxID,
			Vout:          r.Vout,
			Value:         int64(amt),
			ScriptPubKey:  script,
			Address:       r.Address,
			Confirmations: int64(r.Confirmations),
		})
	}
	return out, nil
}

func (c *Client) NewAddress(ctx context.Context, purpose wallet.AddressPurpose) (string, error) {
	label, err := json.Marshal(string(purpose))
	if err != nil {
		return "", err
	}
	addrType, err := json.Marshal("bech32")
	if err != nil {
		return "", err
	}
	raw, err := c.rpc.RawRequest("getnewaddress", []json.RawMessage{label, addrType})
	if err != nil {
		return "", fmt.Errorf("%w: getnewaddress: %v", errs.ErrTransport, err)
	}
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", fmt.Errorf("%w: decode getnewaddress result: %v", errs.ErrDecode, err)
	}
	return addr, nil
}

func (c *Client) GetBalance(ctx context.Context, minConfirmations int64) (int64, error) {
	utxos, err := c.ListUnspent(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range utxos {
		if u.Confirmations >= minConfirmations {
			total += u.Value
		}
	}
	return total, nil
}

func (c *Client) GetTxOut(ctx context.Context, txid string, vout uint32) (int64, error) {
	hash, err := chainhashFromString(txid)
	if err != nil {
		return 0, err
	}
	result, err := c.rpc.GetTxOut(hash, vout, true)
	if err != nil {
		return 0, fmt.Errorf("%w: gettxout: %v", errs.ErrTransport, err)
	}
	if result == nil {
		return 0, fmt.Errorf("%w: output %s:%d is spent or unknown", errs.ErrBadInput, txid, vout)
	}
	amt, err := btcutil.NewAmount(result.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: parse gettxout amount: %v", errs.ErrDecode, err)
	}
	return int64(amt), nil
}

// SignPSBT delegates to Bitcoin Core's walletprocesspsbt, which fills
// partial signatures for every input the wallet can sign.
func (c *Client) SignPSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	b64, err := packetToBase64(p)
	if err != nil {
		return nil, err
	}
	param, err := json.Marshal(b64)
	if err != nil {
		return nil, err
	}
	raw, err := c.rpc.RawRequest("walletprocesspsbt", []json.RawMessage{param})
	if err != nil {
		return nil, fmt.Errorf("%w: walletprocesspsbt: %v", errs.ErrCrypto, err)
	}
	var resp struct {
		PSBT     string `json:"psbt"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode walletprocesspsbt result: %v", errs.ErrDecode, err)
	}
	return packetFromBase64(resp.PSBT)
}

// FinalizePSBT delegates to Bitcoin Core's finalizepsbt.
func (c *Client) FinalizePSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	b64, err := packetToBase64(p)
	if err != nil {
		return nil, err
	}
	param, err := json.Marshal(b64)
	if err != nil {
		return nil, err
	}
	raw, err := c.rpc.RawRequest("finalizepsbt", []json.RawMessage{param})
	if err != nil {
		return nil, fmt.Errorf("%w: finalizepsbt: %v", errs.ErrCrypto, err)
	}
	var resp struct {
		PSBT     string `json:"psbt"`
		Hex      string `json:"hex"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode finalizepsbt result: %v", errs.ErrDecode, err)
	}
	if resp.PSBT == "" {
		return nil, fmt.Errorf("%w: finalizepsbt did not complete", errs.ErrVerifyFailed)
	}
	return packetFromBase64(resp.PSBT)
}

func (c *Client) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	param, err := json.Marshal(hex.EncodeToString(rawTx))
	if err != nil {
		return "", err
	}
	raw, err := c.rpc.RawRequest("sendrawtransaction", []json.RawMessage{param})
	if err != nil {
		return "", fmt.Errorf("%w: sendrawtransaction: %v", errs.ErrTransport, err)
	}
	var txid string
	if err := json.Unmarshal(raw, &txid); err != nil {
		return "", fmt.Errorf("%w: decode sendrawtransaction result: %v", errs.ErrDecode, err)
	}
	return txid, nil
}

// EstimateSmartFee follows the teacher's CONSERVATIVE -> ECONOMICAL ->
// mempool-floor fallback chain, converting BTC/kvB to sat/kvB.
func (c *Client) EstimateSmartFee(ctx context.Context, confTarget int) (int64, error) {
	conservative := btcjson.EstimateModeConservative
	if fee, err := c.estimateSmartFeeByMode(confTarget, &conservative); err == nil && fee > 0 {
		return btcPerKvbToSatPerKvb(fee), nil
	}
	economical := btcjson.EstimateModeEconomical
	if fee, err := c.estimateSmartFeeByMode(confTarget, &economical); err == nil && fee > 0 {
		return btcPerKvbToSatPerKvb(fee), nil
	}
	floor, err := c.mempoolFeeFloor()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrFeeEstimationFailed, err)
	}
	if floor <= 0 {
		return 0, errs.ErrFeeEstimationFailed
	}
	return btcPerKvbToSatPerKvb(floor), nil
}

func (c *Client) estimateSmartFeeByMode(confTarget int, mode *btcjson.EstimateSmartFeeMode) (float64, error) {
	res, err := c.rpc.EstimateSmartFee(int64(confTarget), mode)
	if err != nil {
		return 0, err
	}
	if res == nil || res.FeeRate == nil || !isFinitePositive(*res.FeeRate) {
		return 0, nil
	}
	return *res.FeeRate, nil
}

func (c *Client) mempoolFeeFloor() (float64, error) {
	raw, err := c.rpc.RawRequest("getmempoolinfo", nil)
	if err != nil {
		return 0, err
	}
	var info struct {
		MempoolMinFee float64 `json:"mempoolminfee"`
		MinRelayTxFee float64 `json:"minrelaytxfee"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return 0, err
	}
	floor := info.MempoolMinFee
	if info.MinRelayTxFee > floor {
		floor = info.MinRelayTxFee
	}
	if !isFinitePositive(floor) {
		return 0, nil
	}
	return floor, nil
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func btcPerKvbToSatPerKvb(btcPerKvb float64) int64 {
	amt, err := btcutil.NewAmount(btcPerKvb)
	if err != nil {
		return 0
	}
	return int64(amt)
}

func packetToBase64(p *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return "", fmt.Errorf("%w: serialize psbt: %v", errs.ErrDecode, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func packetFromBase64(s string) (*psbt.Packet, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode psbt base64: %v", errs.ErrDecode, err)
	}
	p, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fmt.Errorf("%w: parse psbt: %v", errs.ErrDecode, err)
	}
	return p, nil
}

func chainhashFromString(s string) (*chainhash.Hash, error) {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return nil, fmt.Errorf("%w: parse txid: %v", errs.ErrBadInput, err)
	}
	return h, nil
}
