// Package maker implements the Maker role's state machine (spec §4.6):
// publish/replace offers, accept a fill, authenticate the taker's PoDLE
// commitment, pledge inputs, sign the assembled PSBT, and republish.
package maker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/podle"
	"github.com/rawblock/nostrdizer/internal/relay"
	"github.com/rawblock/nostrdizer/internal/store"
	"github.com/rawblock/nostrdizer/internal/txbuild"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/rawblock/nostrdizer/internal/wire"
)

// State names the Maker's position in the spec §4.6 cycle.
type State int

const (
	StateIdle State = iota
	StateOfferPublished
	StateFilled
	StateAuthenticated
	StatePledged
	StateSigned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOfferPublished:
		return "OfferPublished"
	case StateFilled:
		return "Filled"
	case StateAuthenticated:
		return "Authenticated"
	case StatePledged:
		return "Pledged"
	case StateSigned:
		return "Signed"
	default:
		return "Unknown"
	}
}

const (
	authTimeout    = 300 * time.Second
	signTimeout    = 300 * time.Second
	republishEvery = 600 * time.Second
)

// Config is the operator-set policy for a Maker instance (spec §6 run-maker flags).
type Config struct {
	AbsFee        int64
	RelFee        float64
	MinSize       int64
	MaxSize       int64
	WillBroadcast bool
	PodleIndex    int
	NetParams     *chaincfg.Params
}

// Maker drives one Maker instance's round-local state for its lifetime.
// Single-threaded cooperative event loop: the only suspension points are
// relay.Client.NextEvent and the wallet Adapter calls.
type Maker struct {
	id      types.Identity
	relay   relay.Client
	wallet  wallet.Adapter
	store   store.Store
	cfg     Config
	state   State

	absOffer      types.Offer
	relOffer      types.Offer
	offerEventIDs []string
	subID         string

	// round-local state, discarded at round end
	fillCommitment [32]byte
	takerPub       string
	filledOfferID  uint32
	fillAmount     int64
	ioAuth         types.IoAuth
}

// New constructs a Maker ready to run.
func New(id types.Identity, r relay.Client, w wallet.Adapter, st store.Store, cfg Config) *Maker {
	return &Maker{id: id, relay: r, wallet: w, store: st, cfg: cfg, state: StateIdle}
}

// State returns the Maker's current state, for the control-plane API to report.
func (m *Maker) State() State { return m.state }

// Run drives the Idle -> ... -> Idle cycle until ctx is cancelled.
func (m *Maker) Run(ctx context.Context) error {
	if err := m.publishOffers(ctx); err != nil {
		return err
	}

	republishTimer := time.NewTimer(republishEvery)
	defer republishTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.shutdown(ctx)
		case <-republishTimer.C:
			if m.state == StateOfferPublished {
				if err := m.publishOffers(ctx); err != nil {
					log.Printf("[Maker] republish failed: %v", err)
				}
			}
			republishTimer.Reset(republishEvery)
		default:
		}

		delivery, err := m.relay.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return m.shutdown(ctx)
			}
			log.Printf("[Maker] relay error, staying Idle: %v", err)
			continue
		}
		if delivery.EOSE {
			continue
		}

		if err := m.handleEvent(ctx, delivery.Event); err != nil {
			log.Printf("[Maker] round failed (%v), returning to Idle", err)
			m.resetRound()
			if pubErr := m.publishOffers(ctx); pubErr != nil {
				log.Printf("[Maker] re-publish after failure error: %v", pubErr)
			}
		}
	}
}

func (m *Maker) publishOffers(ctx context.Context) error {
	now := nowUnix()

	m.absOffer = types.Offer{
		Kind: types.OfferKindAbsolute, OfferID: 1,
		MinSize: m.cfg.MinSize, MaxSize: m.cfg.MaxSize, CJFeeAbs: m.cfg.AbsFee,
		MakerPub: m.id.PubKeyHex(),
	}
	m.relOffer = types.Offer{
		Kind: types.OfferKindRelative, OfferID: 2,
		MinSize: m.cfg.MinSize, MaxSize: m.cfg.MaxSize, CJFeeRel: m.cfg.RelFee,
		MakerPub: m.id.PubKeyHex(),
	}

	m.offerEventIDs = m.offerEventIDs[:0]
	for _, o := range []types.Offer{m.absOffer, m.relOffer} {
		if err := o.Validate(); err != nil {
			return err
		}
		payload, err := wire.Encode(wire.EventOffer, wire.OfferToPayload(o))
		if err != nil {
			return err
		}
		ev, err := wire.NewEvent(m.id, wire.EventKindForOffer(o), nil, string(payload), now)
		if err != nil {
			return err
		}
		if err := m.relay.PublishReplaceable(ctx, ev); err != nil {
			return fmt.Errorf("%w: publish offer: %v", errs.ErrTransport, err)
		}
		m.offerEventIDs = append(m.offerEventIDs, ev.ID)
	}

	subID, err := m.relay.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindFill}, PTag: m.id.PubKeyHex()})
	if err != nil {
		return fmt.Errorf("%w: subscribe fills: %v", errs.ErrTransport, err)
	}
	m.subID = subID
	m.state = StateOfferPublished
	return nil
}

func (m *Maker) handleEvent(ctx context.Context, e wire.RawEvent) error {
	switch m.state {
	case StateOfferPublished:
		return m.onFill(ctx, e)
	case StateFilled:
		return m.onAuth(ctx, e)
	case StatePledged:
		return m.onUnsignedCJ(ctx, e)
	default:
		return nil // stray event for a state that doesn't expect one
	}
}

func (m *Maker) onFill(ctx context.Context, e wire.RawEvent) error {
	plaintext, err := wire.VerifyAndDecrypt(m.id, e)
	if err != nil {
		return err
	}
	env, err := wire.Decode(plaintext)
	if err != nil {
		return err
	}
	if env.EventType != wire.EventFill {
		return nil
	}
	var fp wire.FillPayload
	if err := wire.DecodePayload(env, &fp); err != nil {
		return err
	}
	if fp.OfferID != m.absOffer.OfferID && fp.OfferID != m.relOffer.OfferID {
		return nil
	}

	commit, err := decodeHexCommit(fp.Commitment)
	if err != nil {
		return err
	}

	// Retract offers for the duration of this round.
	for _, id := range m.offerEventIDs {
		if err := m.relay.Delete(ctx, id); err != nil {
			log.Printf("[Maker] failed to retract offer %s: %v", id, err)
		}
	}

	m.fillCommitment = commit
	m.takerPub = e.PubKey
	m.filledOfferID = fp.OfferID
	m.fillAmount = fp.Amount
	m.state = StateFilled

	if m.store != nil {
		_ = m.store.RecordFillCommitment(ctx, m.takerPub, commit)
	}

	authSubID, err := m.relay.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindAuth}, PTag: m.id.PubKeyHex(), Authors: []string{m.takerPub}})
	if err != nil {
		return fmt.Errorf("%w: subscribe auth: %v", errs.ErrTransport, err)
	}
	m.subID = authSubID
	return m.awaitAuth(ctx)
}

func (m *Maker) awaitAuth(ctx context.Context) error {
	deadline := time.Now().Add(authTimeout)
	for time.Now().Before(deadline) {
		subCtx, cancel := context.WithDeadline(ctx, deadline)
		d, err := m.relay.NextEvent(subCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: auth wait timed out", errs.ErrPodleVerifyFailed)
		}
		if d.EOSE {
			continue
		}
		return m.onAuth(ctx, d.Event)
	}
	return fmt.Errorf("%w: auth wait timed out", errs.ErrPodleVerifyFailed)
}

func (m *Maker) onAuth(ctx context.Context, e wire.RawEvent) error {
	plaintext, err := wire.VerifyAndDecrypt(m.id, e)
	if err != nil {
		return err
	}
	env, err := wire.Decode(plaintext)
	if err != nil {
		return err
	}
	if env.EventType != wire.EventAuth {
		return nil
	}
	var ap wire.AuthPayload
	if err := wire.DecodePayload(env, &ap); err != nil {
		return err
	}
	commitment, index, err := decodeAuthPayload(ap)
	if err != nil {
		return err
	}

	if err := podle.Verify(index, commitment, m.fillCommitment); err != nil {
		return err
	}

	m.state = StateAuthenticated
	return m.sendIoAuth(ctx)
}

func (m *Maker) sendIoAuth(ctx context.Context) error {
	utxos, err := m.wallet.ListUnspent(ctx)
	if err != nil {
		return fmt.Errorf("%w: list unspent: %v", errs.ErrNoMatchingUtxo, err)
	}

	var selected []types.UTXORef
	var total int64
	for _, u := range utxos {
		if total >= m.fillAmount {
			break
		}
		hash, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			return fmt.Errorf("%w: utxo txid: %v", errs.ErrNoMatchingUtxo, err)
		}
		selected = append(selected, types.UTXORef{
			Outpoint: btcwire.OutPoint{Hash: *hash, Index: u.Vout},
			Witness:  types.WitnessUTXO{Value: u.Value, PkScript: u.ScriptPubKey},
		})
		total += u.Value
	}
	if total < m.fillAmount {
		return errs.ErrNoMatchingUtxo
	}

	cjAddr, err := m.wallet.NewAddress(ctx, wallet.PurposeCoinjoin)
	if err != nil {
		return err
	}
	changeAddr, err := m.wallet.NewAddress(ctx, wallet.PurposeChange)
	if err != nil {
		return err
	}

	m.ioAuth = types.IoAuth{UTXOs: selected, CoinjoinAddress: cjAddr, ChangeAddress: changeAddr}

	payload := toIoAuthPayload(m.ioAuth)
	raw, err := wire.Encode(wire.EventMakerInputs, payload)
	if err != nil {
		return err
	}
	ev, err := wire.NewDirectedEvent(m.id, wire.KindIoAuth, m.takerPub, raw, nowUnix())
	if err != nil {
		return err
	}
	if err := m.relay.PublishEphemeral(ctx, ev); err != nil {
		return fmt.Errorf("%w: publish ioauth: %v", errs.ErrTransport, err)
	}

	m.state = StatePledged
	return m.awaitUnsignedCJ(ctx)
}

func (m *Maker) awaitUnsignedCJ(ctx context.Context) error {
	deadline := time.Now().Add(signTimeout)
	subCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		d, err := m.relay.NextEvent(subCtx)
		if err != nil {
			return errs.ErrTakerFailedToSendTransaction
		}
		if d.EOSE {
			continue
		}
		return m.onUnsignedCJ(ctx, d.Event)
	}
}

func (m *Maker) onUnsignedCJ(ctx context.Context, e wire.RawEvent) error {
	plaintext, err := wire.VerifyAndDecrypt(m.id, e)
	if err != nil {
		return err
	}
	env, err := wire.Decode(plaintext)
	if err != nil {
		return err
	}
	if env.EventType != wire.EventUnsignedCJ {
		return nil
	}
	var up wire.UnsignedCJPayload
	if err := wire.DecodePayload(env, &up); err != nil {
		return err
	}

	packet, err := txbuild.PacketFromBase64(up.PSBT)
	if err != nil {
		return err
	}

	myScript := makerOwnedScripts(m.ioAuth)
	policy := types.FeePolicy{
		AbsFeeMin: m.cfg.AbsFee,
		RelFeeMin: m.cfg.RelFee,
		MinSize:   m.cfg.MinSize,
		MaxSize:   m.cfg.MaxSize,
	}
	info, err := txbuild.Verify(packet, m.fillAmount, txbuild.RoleMaker, myScript, policy)
	if err != nil {
		return err
	}
	if !info.Verified {
		return errs.ErrVerifyFailed
	}

	signed, err := m.wallet.SignPSBT(ctx, packet)
	if err != nil {
		return fmt.Errorf("%w: sign psbt: %v", errs.ErrCrypto, err)
	}
	m.state = StateSigned

	signedB64, err := txbuild.PacketToBase64(signed)
	if err != nil {
		return err
	}
	sp := wire.SignedCJPayload{PSBT: signedB64}
	raw, err := wire.Encode(wire.EventSignedCJ, sp)
	if err != nil {
		return err
	}
	ev, err := wire.NewDirectedEvent(m.id, wire.KindSignedCJ, m.takerPub, raw, nowUnix())
	if err != nil {
		return err
	}
	if err := m.relay.PublishEphemeral(ctx, ev); err != nil {
		return fmt.Errorf("%w: publish signed cj: %v", errs.ErrTransport, err)
	}

	if m.store != nil {
		_ = m.store.RecordRoundCompleted(ctx, m.id.PubKeyHex(), m.filledOfferID, info.MakerFee)
	}

	m.resetRound()
	return m.publishOffers(ctx)
}

func (m *Maker) resetRound() {
	m.fillCommitment = [32]byte{}
	m.takerPub = ""
	m.filledOfferID = 0
	m.fillAmount = 0
	m.ioAuth = types.IoAuth{}
	m.state = StateIdle
}

func (m *Maker) shutdown(ctx context.Context) error {
	if m.subID != "" {
		_ = m.relay.Unsubscribe(ctx, m.subID)
	}
	return nil
}

func decodeHexCommit(s string) ([32]byte, error) {
	return decodeHex32(s)
}

func makerOwnedScripts(io types.IoAuth) txbuild.MineScript {
	owned := make(map[string]bool, len(io.UTXOs))
	for _, u := range io.UTXOs {
		owned[string(u.Witness.PkScript)] = true
	}
	return func(pkScript []byte) bool { return owned[string(pkScript)] }
}

func toIoAuthPayload(io types.IoAuth) wire.IoAuthPayload {
	p := wire.IoAuthPayload{
		CoinjoinAddress: io.CoinjoinAddress,
		ChangeAddress:   io.ChangeAddress,
		MakerAuthPub:    io.MakerAuthPub,
		BitcoinSig:      io.BitcoinSig,
	}
	for _, u := range io.UTXOs {
		p.UTXOs = append(p.UTXOs, wire.UTXOPayload{
			Txid:            u.Outpoint.Hash.String(),
			Vout:            u.Outpoint.Index,
			WitnessValue:    u.Witness.Value,
			WitnessPkScript: hexEncode(u.Witness.PkScript),
		})
	}
	return p
}

func nowUnix() int64 { return timeNow().Unix() }

var timeNow = time.Now
