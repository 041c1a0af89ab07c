// Command nostrdizer is the operator-facing CLI for running a Taker or
// Maker round and inspecting wallet/offer state, grounded on the teacher's
// cmd/engine/main.go env-driven bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rawblock/nostrdizer/internal/api"
	"github.com/rawblock/nostrdizer/internal/config"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/maker"
	"github.com/rawblock/nostrdizer/internal/relay"
	"github.com/rawblock/nostrdizer/internal/store"
	"github.com/rawblock/nostrdizer/internal/taker"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/rawblock/nostrdizer/internal/walletrpc"
	"github.com/rawblock/nostrdizer/internal/wire"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: nostrdizer <list-unspent|get-eligible-balance|list-offers|send-transaction|run-maker|new-identity> [flags]")
	}

	var err error
	switch os.Args[1] {
	case "list-unspent":
		err = cmdListUnspent()
	case "get-eligible-balance":
		err = cmdEligibleBalance()
	case "list-offers":
		err = cmdListOffers()
	case "send-transaction":
		err = cmdSendTransaction(os.Args[2:])
	case "run-maker":
		err = cmdRunMaker(os.Args[2:])
	case "new-identity":
		err = cmdNewIdentity()
	default:
		log.Fatalf("unknown subcommand %q", os.Args[1])
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the internal/errs taxonomy to a process exit code, per
// spec.md §6.3.
func exitCodeFor(err error) int {
	switch {
	case errs.IsAny(err, errs.ErrInsufficientFunds, errs.ErrNoMatchingUtxo):
		return 2
	case errs.IsAny(err, errs.ErrNotEnoughMakers, errs.ErrMakersFailedToRespond):
		return 3
	case errs.IsAny(err, errs.ErrVerifyFailed, errs.ErrFeesTooHigh, errs.ErrPodleVerifyFailed, errs.ErrPodleCommitMismatch):
		return 4
	case errs.IsAny(err, errs.ErrTransport, errs.ErrCrypto, errs.ErrDecode, errs.ErrInvalidCredentials, errs.ErrBadInput):
		return 5
	default:
		return 1
	}
}

func netParams() *chaincfg.Params {
	switch config.GetEnvOrDefault("BITCOIN_NETWORK", "mainnet") {
	case "testnet":
		return &chaincfg.TestNet3Params
	case "regtest":
		return &chaincfg.RegressionNetParams
	case "signet":
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

func newWalletAdapter() (wallet.Adapter, func(), error) {
	host := config.GetEnvOrDefault("RPC_URL", "localhost:8332")
	user := config.RequireEnv("RPC_USERNAME")
	pass := config.RequireEnv("RPC_PASSWORD")

	client, err := walletrpc.Connect(walletrpc.Config{Host: host, User: user, Pass: pass})
	if err != nil {
		return nil, nil, fmt.Errorf("connect wallet rpc: %w", err)
	}
	return client, func() { client.Shutdown() }, nil
}

func newIdentity() (types.Identity, error) {
	if mnemonic := os.Getenv("SECRET_MNEMONIC"); mnemonic != "" {
		return types.IdentityFromMnemonic(mnemonic, os.Getenv("SECRET_MNEMONIC_PASSPHRASE"))
	}
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Println("SECRET_KEY not set, generating an ephemeral identity for this run")
		return types.NewIdentity()
	}
	return types.IdentityFromHex(secret)
}

func newRelayClient() (relay.Client, error) {
	relays := config.GetEnvOrDefault("NOSTR_RELAYS", "")
	if relays == "" {
		return nil, fmt.Errorf("%w: NOSTR_RELAYS is not set", errs.ErrBadInput)
	}
	urls := strings.Split(relays, ",")
	return relay.Dial(strings.TrimSpace(urls[0]))
}

func maybeStartControlPlane(mk *maker.Maker, tk *taker.Taker, st store.Store) {
	addr := os.Getenv("API_LISTEN_ADDR")
	if addr == "" {
		return
	}
	hub := api.NewHub()
	go hub.Run()
	h := api.NewHandler(mk, tk, st, hub)
	r := api.SetupRouter(h)
	go func() {
		log.Printf("control-plane API listening on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Printf("control-plane API stopped: %v", err)
		}
	}()
}

func newStore() store.Store {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return store.NewMemory()
	}
	pg, err := store.Connect(context.Background(), dsn)
	if err != nil {
		log.Printf("warning: failed to connect to postgres, falling back to in-memory store: %v", err)
		return store.NewMemory()
	}
	return pg
}

func cmdListUnspent() error {
	w, shutdown, err := newWalletAdapter()
	if err != nil {
		return err
	}
	defer shutdown()

	utxos, err := w.ListUnspent(context.Background())
	if err != nil {
		return err
	}
	for _, u := range utxos {
		fmt.Printf("%s:%d\t%d sats\t%s\t%d confs\n", u.Txid, u.Vout, u.Value, u.Address, u.Confirmations)
	}
	return nil
}

func cmdEligibleBalance() error {
	w, shutdown, err := newWalletAdapter()
	if err != nil {
		return err
	}
	defer shutdown()

	bal, err := w.GetBalance(context.Background(), 2)
	if err != nil {
		return err
	}
	fmt.Printf("%d sats\n", bal)
	return nil
}

func cmdListOffers() error {
	r, err := newRelayClient()
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := r.Subscribe(ctx, relay.Filter{Kinds: []int{wire.KindAbsoluteOffer, wire.KindRelativeOffer}}); err != nil {
		return err
	}

	for {
		d, err := r.NextEvent(ctx)
		if err != nil {
			return nil // context deadline: discovery window closed
		}
		if d.EOSE {
			continue
		}
		env, err := wire.Decode([]byte(d.Event.Content))
		if err != nil || env.EventType != wire.EventOffer {
			continue
		}
		var p wire.OfferPayload
		if err := wire.DecodePayload(env, &p); err != nil {
			continue
		}
		offer, err := wire.PayloadToOffer(p, d.Event.PubKey)
		if err != nil {
			continue
		}
		fmt.Printf("maker=%s id=%d kind=%d min=%d max=%d\n",
			offer.MakerPub, offer.OfferID, offer.Kind, offer.MinSize, offer.MaxSize)
	}
}

// cmdNewIdentity prints a fresh BIP39 mnemonic and its derived pubkey, for
// an operator to save as SECRET_MNEMONIC ahead of run-maker/send-transaction.
func cmdNewIdentity() error {
	id, mnemonic, err := types.NewMnemonicIdentity()
	if err != nil {
		return err
	}
	fmt.Printf("mnemonic: %s\npubkey: %s\n", mnemonic, id.PubKeyHex())
	return nil
}

func cmdSendTransaction(args []string) error {
	fs := flag.NewFlagSet("send-transaction", flag.ExitOnError)
	amount := fs.Int64("send-amount", 0, "amount to coinjoin, in satoshis")
	numMakers := fs.Int("number-of-makers", 0, "number of makers to use (default: uniform random in [3,9))")
	minMakers := fs.Int("minimum-makers", 0, "minimum number of makers required to proceed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *amount <= 0 {
		return fmt.Errorf("%w: --send-amount must be positive", errs.ErrBadInput)
	}

	id, err := newIdentity()
	if err != nil {
		return err
	}
	r, err := newRelayClient()
	if err != nil {
		return err
	}
	defer r.Close()
	w, shutdown, err := newWalletAdapter()
	if err != nil {
		return err
	}
	defer shutdown()

	tk := taker.New(id, r, w, taker.Params{
		Amount:         *amount,
		NumberOfMakers: *numMakers,
		MinimumMakers:  *minMakers,
		NetParams:      netParams(),
	})

	st := newStore()
	defer st.Close()
	maybeStartControlPlane(nil, tk, st)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	txid, err := tk.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("broadcast txid: %s\n", txid)
	return nil
}

func cmdRunMaker(args []string) error {
	fs := flag.NewFlagSet("run-maker", flag.ExitOnError)
	absFee := fs.Int64("abs-fee", config.GetEnvInt64OrDefault("MAKER_ABS_FEE", 0), "absolute coinjoin fee, in satoshis")
	relFee := fs.Float64("rel-fee", config.GetEnvFloatOrDefault("MAKER_REL_FEE", 0.0003), "relative coinjoin fee, as a fraction of amount")
	minSize := fs.Int64("minsize", config.GetEnvInt64OrDefault("MAKER_MINSIZE", 100000), "minimum coinjoin amount accepted, in satoshis")
	maxSize := fs.Int64("maxsize", config.GetEnvInt64OrDefault("MAKER_MAXSIZE", 100000000), "maximum coinjoin amount accepted, in satoshis")
	willBroadcast := fs.Bool("will-broadcast", config.GetEnvBoolOrDefault("WILL_BROADCAST", false), "whether this maker will relay the final signed transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := newIdentity()
	if err != nil {
		return err
	}
	r, err := newRelayClient()
	if err != nil {
		return err
	}
	defer r.Close()
	w, shutdown, err := newWalletAdapter()
	if err != nil {
		return err
	}
	defer shutdown()

	st := newStore()
	defer st.Close()

	mk := maker.New(id, r, w, st, maker.Config{
		AbsFee:        *absFee,
		RelFee:        *relFee,
		MinSize:       *minSize,
		MaxSize:       *maxSize,
		WillBroadcast: *willBroadcast,
		PodleIndex:    0,
		NetParams:     netParams(),
	})

	maybeStartControlPlane(mk, nil, st)

	log.Printf("maker running: pubkey=%s abs-fee=%d rel-fee=%g minsize=%d maxsize=%d will-broadcast=%v",
		id.PubKeyHex(), *absFee, *relFee, *minSize, *maxSize, *willBroadcast)
	return mk.Run(context.Background())
}
