// Package taker implements the Taker role's state machine (spec §4.7):
// discover offers, select the cheapest matching Makers, fill and
// authenticate with PoDLE, collect IoAuth with partial-failure tolerance,
// assemble and verify the PSBT, then combine, finalize, and broadcast.
package taker

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/podle"
	"github.com/rawblock/nostrdizer/internal/relay"
	"github.com/rawblock/nostrdizer/internal/txbuild"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/rawblock/nostrdizer/internal/wire"
)

// State names the Taker's position in the spec §4.7 cycle.
type State int

const (
	StateComposing State = iota
	StateDiscovering
	StateMatching
	StateFilling
	StateCollecting
	StateAssembled
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateComposing:
		return "Composing"
	case StateDiscovering:
		return "Discovering"
	case StateMatching:
		return "Matching"
	case StateFilling:
		return "Filling"
	case StateCollecting:
		return "Collecting"
	case StateAssembled:
		return "Assembled"
	case StateFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

const (
	collectingTimeout = 60 * time.Second
	fallbackTopUpWait = 15 * time.Second
	offerDiscoverWait = 3 * time.Second
	podleIndex        = 0 // fixed NUMS index for a fresh commitment; see DESIGN.md
)

// Params is the operator-supplied request (spec §6 send-transaction).
type Params struct {
	Amount         int64
	NumberOfMakers int // if 0, uniform random in [3,9)
	MinimumMakers  int // caller-set policy; if 0, New uses 1
	NetParams      *chaincfg.Params
}

// Taker drives one Taker round from Composing to Finalized.
type Taker struct {
	id     types.Identity
	relay  relay.Client
	wallet wallet.Adapter
	params Params

	state State

	selected     []types.NormalizedOffer
	ioauths      map[string]types.IoAuth // maker pub -> pledge
	fillCommit   [32]byte
	authCommit   types.AuthCommitment
	ownedScripts map[string]bool
}

// New constructs a Taker ready to run one round.
func New(id types.Identity, r relay.Client, w wallet.Adapter, p Params) *Taker {
	if p.NumberOfMakers == 0 {
		p.NumberOfMakers = 3 + rand.Intn(6) // uniform in [3,9)
	}
	if p.MinimumMakers == 0 {
		p.MinimumMakers = 1 // weak default; operators should set this explicitly
	}
	return &Taker{id: id, relay: r, wallet: w, params: p, ioauths: make(map[string]types.IoAuth)}
}

// State returns the Taker's current state, for the control-plane API.
func (t *Taker) State() State { return t.state }

// Run executes one full Composing -> Finalized round and returns the
// broadcast txid on success.
func (t *Taker) Run(ctx context.Context) (string, error) {
	t.state = StateComposing
	eligible, err := t.wallet.GetBalance(ctx, 2)
	if err != nil {
		return "", fmt.Errorf("%w: get eligible balance: %v", errs.ErrBadInput, err)
	}
	if eligible < t.params.Amount {
		return "", errs.ErrInsufficientFunds
	}

	t.state = StateDiscovering
	offers, err := t.discoverOffers(ctx)
	if err != nil {
		return "", err
	}

	t.state = StateMatching
	matched := t.matchAndNormalize(offers)
	if len(matched) < t.params.MinimumMakers {
		return "", errs.ErrNotEnoughMakers
	}

	ac, err := podle.Generate(podleIndex, t.id.PrivKey)
	if err != nil {
		return "", err
	}
	t.authCommit = ac
	t.fillCommit = ac.Commit

	t.state = StateFilling
	working := matched
	if len(working) > t.params.NumberOfMakers {
		working = working[:t.params.NumberOfMakers]
	}
	t.selected = working
	if err := t.fillAndAuth(ctx, working); err != nil {
		return "", err
	}

	t.state = StateCollecting
	if err := t.collectIoAuths(ctx, matched); err != nil {
		return "", err
	}

	t.state = StateAssembled
	result, err := t.assemble(ctx)
	if err != nil {
		return "", err
	}
	if err := t.publishUnsigned(ctx, result); err != nil {
		return "", err
	}

	txid, err := t.collectSignaturesAndBroadcast(ctx, result)
	if err != nil {
		return "", err
	}
	t.state = StateFinalized
	return txid, nil
}

func (t *Taker) discoverOffers(ctx context.Context) ([]types.Offer, error) {
	subID, err := t.relay.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindAbsoluteOffer, wire.KindRelativeOffer}})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe offers: %v", errs.ErrTransport, err)
	}
	defer func() { _ = t.relay.Unsubscribe(ctx, subID) }()

	subCtx, cancel := context.WithTimeout(ctx, offerDiscoverWait)
	defer cancel()

	var offers []types.Offer
	for {
		d, err := t.relay.NextEvent(subCtx)
		if err != nil {
			break // discovery window elapsed
		}
		if d.EOSE {
			continue
		}
		if o, ok := decodeOfferEvent(d.Event); ok {
			offers = append(offers, o)
		}
	}
	return offers, nil
}

// matchAndNormalize filters offers by min_size<A<max_size, normalizes
// relative fees to absolute for amount A, dedupes by maker pubkey (keeping
// the cheapest per maker), and sorts ascending by absolute cj_fee.
func (t *Taker) matchAndNormalize(offers []types.Offer) []types.NormalizedOffer {
	cheapestByMaker := make(map[string]types.NormalizedOffer)

	for _, o := range offers {
		if !(o.MinSize < t.params.Amount && t.params.Amount < o.MaxSize) {
			continue
		}
		n := types.NormalizeOffer(o, t.params.Amount)
		if existing, ok := cheapestByMaker[n.MakerPub]; !ok || n.AbsCJFee < existing.AbsCJFee {
			cheapestByMaker[n.MakerPub] = n
		}
	}

	out := make([]types.NormalizedOffer, 0, len(cheapestByMaker))
	for _, n := range cheapestByMaker {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AbsCJFee != out[j].AbsCJFee {
			return out[i].AbsCJFee < out[j].AbsCJFee
		}
		return poolDepthScore(out[i], t.params.Amount) > poolDepthScore(out[j], t.params.Amount)
	})
	return out
}

func (t *Taker) fillAndAuth(ctx context.Context, targets []types.NormalizedOffer) error {
	for _, n := range targets {
		fillPayload := wire.FillPayload{
			OfferID:            n.OfferID,
			Amount:             t.params.Amount,
			TakerEncryptionPub: t.id.PubKeyHex(),
			Commitment:         hex.EncodeToString(t.fillCommit[:]),
		}
		raw, err := wire.Encode(wire.EventFill, fillPayload)
		if err != nil {
			return err
		}
		ev, err := wire.NewDirectedEvent(t.id, wire.KindFill, n.MakerPub, raw, time.Now().Unix())
		if err != nil {
			return err
		}
		if err := t.relay.PublishEphemeral(ctx, ev); err != nil {
			log.Printf("[Taker] fill publish to %s failed: %v", n.MakerPub, err)
			continue
		}

		araw, err := wire.Encode(wire.EventAuth, wire.AuthCommitmentToPayload(t.authCommit))
		if err != nil {
			return err
		}
		aev, err := wire.NewDirectedEvent(t.id, wire.KindAuth, n.MakerPub, araw, time.Now().Unix())
		if err != nil {
			return err
		}
		if err := t.relay.PublishEphemeral(ctx, aev); err != nil {
			log.Printf("[Taker] auth publish to %s failed: %v", n.MakerPub, err)
		}
	}
	return nil
}

// collectIoAuths subscribes for IoAuth from the selected Makers and waits up
// to 60s with at least MinimumMakers responders, with a 15s fallback top-up
// from the remaining matched (but not yet solicited) offers.
func (t *Taker) collectIoAuths(ctx context.Context, matched []types.NormalizedOffer) error {
	subID, err := t.relay.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindIoAuth}, PTag: t.id.PubKeyHex()})
	if err != nil {
		return fmt.Errorf("%w: subscribe ioauth: %v", errs.ErrTransport, err)
	}
	defer func() { _ = t.relay.Unsubscribe(ctx, subID) }()

	deadline := time.Now().Add(collectingTimeout)
	topUpDeadline := time.Now().Add(fallbackTopUpWait)
	toppedUp := false

	soliciting := make(map[string]bool, len(t.selected))
	for _, s := range t.selected {
		soliciting[s.MakerPub] = true
	}

	for time.Now().Before(deadline) && len(t.ioauths) < len(t.selected) {
		if !toppedUp && time.Now().After(topUpDeadline) {
			t.topUpWorkingSet(ctx, matched, soliciting)
			toppedUp = true
		}

		waitUntil := deadline
		if !toppedUp {
			waitUntil = topUpDeadline
		}
		waitCtx, cancel := context.WithDeadline(ctx, waitUntil)
		d, err := t.relay.NextEvent(waitCtx)
		cancel()
		if err != nil {
			if !toppedUp && ctx.Err() == nil && !time.Now().Before(waitUntil) {
				continue // top-up window reached with Makers still missing
			}
			break
		}
		if d.EOSE {
			continue
		}
		makerPub, ioa, ok := t.decodeIoAuth(d.Event)
		if ok && soliciting[makerPub] {
			t.ioauths[makerPub] = ioa
		}
	}

	if len(t.ioauths) < t.params.MinimumMakers {
		return errs.ErrMakersFailedToRespond
	}
	return nil
}

// topUpWorkingSet solicits additional not-yet-tried matching offers when
// fewer than all selected Makers have responded after 15s, per spec §4.7's
// lower-cost fallback path.
func (t *Taker) topUpWorkingSet(ctx context.Context, matched []types.NormalizedOffer, soliciting map[string]bool) {
	for _, n := range matched {
		if soliciting[n.MakerPub] {
			continue
		}
		soliciting[n.MakerPub] = true
		t.selected = append(t.selected, n)
		if err := t.fillAndAuth(ctx, []types.NormalizedOffer{n}); err != nil {
			log.Printf("[Taker] top-up fill to %s failed: %v", n.MakerPub, err)
		}
	}
}

func (t *Taker) decodeIoAuth(e wire.RawEvent) (string, types.IoAuth, bool) {
	plaintext, err := wire.VerifyAndDecrypt(t.id, e)
	if err != nil {
		return "", types.IoAuth{}, false
	}
	env, err := wire.Decode(plaintext)
	if err != nil || env.EventType != wire.EventMakerInputs {
		return "", types.IoAuth{}, false
	}
	var p wire.IoAuthPayload
	if err := wire.DecodePayload(env, &p); err != nil {
		return "", types.IoAuth{}, false
	}
	io, err := fromIoAuthPayload(p)
	if err != nil {
		return "", types.IoAuth{}, false
	}
	return e.PubKey, io, true
}

func (t *Taker) assemble(ctx context.Context) (*txbuild.BuildResult, error) {
	var makerInputs []txbuild.MakerInput
	for _, s := range t.selected {
		ioa, ok := t.ioauths[s.MakerPub]
		if !ok {
			continue // didn't respond in time; excluded from this round
		}
		makerInputs = append(makerInputs, txbuild.MakerInput{Offer: s, IoAuth: ioa})
	}
	if len(makerInputs) < t.params.MinimumMakers {
		return nil, errs.ErrMakersFailedToRespond
	}

	utxos, err := t.wallet.ListUnspent(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list unspent: %v", errs.ErrNoMatchingUtxo, err)
	}
	cjAddr, err := t.wallet.NewAddress(ctx, wallet.PurposeCoinjoin)
	if err != nil {
		return nil, err
	}
	changeAddr, err := t.wallet.NewAddress(ctx, wallet.PurposeChange)
	if err != nil {
		return nil, err
	}
	feeRate, err := t.wallet.EstimateSmartFee(ctx, 1)
	if err != nil {
		log.Printf("[Taker] fee estimation failed, using fallback rate: %v", err)
		feeRate = 0
	}

	t.ownedScripts = make(map[string]bool, len(utxos)+2)
	for _, u := range utxos {
		t.ownedScripts[string(u.ScriptPubKey)] = true
	}
	if s, err := txbuild.AddrToScript(cjAddr, t.params.NetParams); err == nil {
		t.ownedScripts[string(s)] = true
	}
	if s, err := txbuild.AddrToScript(changeAddr, t.params.NetParams); err == nil {
		t.ownedScripts[string(s)] = true
	}

	return txbuild.Build(txbuild.BuildParams{
		Amount:          t.params.Amount,
		Makers:          makerInputs,
		TakerUTXOs:      utxos,
		TakerCJAddr:     cjAddr,
		TakerChangeAddr: changeAddr,
		NetParams:       t.params.NetParams,
		FeeRateSatKvB:   feeRate,
	})
}

func (t *Taker) publishUnsigned(ctx context.Context, result *txbuild.BuildResult) error {
	b64, err := txbuild.PacketToBase64(result.Packet)
	if err != nil {
		return err
	}
	raw, err := wire.Encode(wire.EventUnsignedCJ, wire.UnsignedCJPayload{PSBT: b64})
	if err != nil {
		return err
	}
	for _, s := range t.selected {
		if _, ok := t.ioauths[s.MakerPub]; !ok {
			continue
		}
		ev, err := wire.NewDirectedEvent(t.id, wire.KindUnsignedCJ, s.MakerPub, raw, time.Now().Unix())
		if err != nil {
			return err
		}
		if err := t.relay.PublishEphemeral(ctx, ev); err != nil {
			return fmt.Errorf("%w: publish unsigned cj to %s: %v", errs.ErrTransport, s.MakerPub, err)
		}
	}
	return nil
}

func (t *Taker) collectSignaturesAndBroadcast(ctx context.Context, result *txbuild.BuildResult) (string, error) {
	participating := 0
	for _, s := range t.selected {
		if _, ok := t.ioauths[s.MakerPub]; ok {
			participating++
		}
	}

	subID, err := t.relay.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindSignedCJ}, PTag: t.id.PubKeyHex()})
	if err != nil {
		return "", fmt.Errorf("%w: subscribe signed cj: %v", errs.ErrTransport, err)
	}
	defer func() { _ = t.relay.Unsubscribe(ctx, subID) }()

	deadline := time.Now().Add(collectingTimeout)
	packets := []*psbt.Packet{result.Packet}
	for len(packets) < participating+1 && time.Now().Before(deadline) {
		waitCtx, cancel := context.WithDeadline(ctx, deadline)
		d, err := t.relay.NextEvent(waitCtx)
		cancel()
		if err != nil {
			break
		}
		if d.EOSE {
			continue
		}
		if p, ok := t.decodeSignedCJ(d.Event); ok {
			packets = append(packets, p)
		}
	}
	if len(packets) < participating+1 {
		return "", errs.ErrMakersFailedToRespond
	}

	combined, err := txbuild.Combine(packets)
	if err != nil {
		return "", err
	}

	mine := func(pkScript []byte) bool { return t.ownedScripts[string(pkScript)] }
	policy := types.FeePolicy{
		AbsFeeMax:       1 << 62, // Verify's RoleTaker branch bounds total fees via MaxFeeRatio
		RelFeeMax:       1,
		AbsMiningFeeMax: 1 << 62,
	}
	info, err := txbuild.Verify(combined, t.params.Amount, txbuild.RoleTaker, mine, policy)
	if err != nil {
		return "", err
	}
	if !info.Verified {
		return "", errs.ErrVerifyFailed
	}

	signed, err := t.wallet.SignPSBT(ctx, combined)
	if err != nil {
		return "", fmt.Errorf("%w: taker co-sign: %v", errs.ErrCrypto, err)
	}

	return txbuild.FinalizeAndBroadcast(ctx, t.wallet, signed)
}

func (t *Taker) decodeSignedCJ(e wire.RawEvent) (*psbt.Packet, bool) {
	plaintext, err := wire.VerifyAndDecrypt(t.id, e)
	if err != nil {
		return nil, false
	}
	env, err := wire.Decode(plaintext)
	if err != nil || env.EventType != wire.EventSignedCJ {
		return nil, false
	}
	var p wire.SignedCJPayload
	if err := wire.DecodePayload(env, &p); err != nil {
		return nil, false
	}
	packet, err := txbuild.PacketFromBase64(p.PSBT)
	if err != nil {
		return nil, false
	}
	return packet, true
}
