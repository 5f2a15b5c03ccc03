package state_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/genesis"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/ardanlabs/powledger/foundation/ledger/state"
	"github.com/ardanlabs/powledger/foundation/ledger/storage/memory"
	"github.com/ardanlabs/powledger/foundation/ledger/wallet"
	"github.com/shopspring/decimal"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newLedger(t *testing.T, difficulty uint) *state.State {
	gen := genesis.Default()
	gen.Difficulty = difficulty

	s, err := state.New(state.Config{Genesis: gen})
	ifErrFailNow(t, err)

	return s
}

func newWallet(t *testing.T) *wallet.Wallet {
	w, err := wallet.New(signature.Secp256k1{})
	ifErrFailNow(t, err)

	return w
}

// =============================================================================

func Test_EndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to send money between identities.")
	{
		t.Logf("\tTest 0:\tWhen starting a fresh ledger.")
		{
			ledger := newLedger(t, database.DefaultDifficulty)

			if ledger.Length() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould start with only the genesis link, got %d.", failed, ledger.Length())
			}
			t.Logf("\t%s\tTest 0:\tShould start with only the genesis link.", success)

			genesisLink := ledger.LatestLink()
			if !genesisLink.IsGenesis() || genesisLink.Record.Payee != "satoshi" || !genesisLink.Record.Amount.Equal(decimal.NewFromInt(100)) {
				t.Fatalf("\t%s\tTest 0:\tShould hold the bootstrap record, got %s.", failed, genesisLink.Record)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the bootstrap record.", success)

			a, b, c := newWallet(t), newWallet(t), newWallet(t)

			link, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(20), b.PublicKey())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to send 20 from A to B: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to send 20 from A to B.", success)

			tip := ledger.LatestLink()
			switch {
			case ledger.Length() != 2:
				t.Fatalf("\t%s\tTest 0:\tShould have two links, got %d.", failed, ledger.Length())
			case tip.Hash() != link.Hash():
				t.Fatalf("\t%s\tTest 0:\tShould return the new tip.", failed)
			case !tip.Record.Amount.Equal(decimal.NewFromInt(20)):
				t.Fatalf("\t%s\tTest 0:\tShould record the amount 20, got %s.", failed, tip.Record.Amount)
			case tip.Record.Payer != a.PublicKey() || tip.Record.Payee != b.PublicKey():
				t.Fatalf("\t%s\tTest 0:\tShould record A as payer and B as payee.", failed)
			case tip.PrevHash != genesisLink.Hash():
				t.Fatalf("\t%s\tTest 0:\tShould chain the tip to the genesis link.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have a second link chained to genesis.", success)

			prev := tip
			if _, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(30), c.PublicKey()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to send 30 from A to C: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to send 30 from A to C.", success)

			tip = ledger.LatestLink()
			if ledger.Length() != 3 || tip.PrevHash != prev.Hash() || tip.Record.Payee != c.PublicKey() {
				t.Fatalf("\t%s\tTest 0:\tShould have a third link chained to the second.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have a third link chained to the second.", success)

			links, err := ledger.QueryLinksByNumber(0, state.QueryLatest)
			ifErrFailNow(t, err)

			for i := 1; i < len(links); i++ {
				if links[i].Link.PrevHash != links[i-1].Hash {
					t.Fatalf("\t%s\tTest 0:\tShould have link %d chained to link %d.", failed, i, i-1)
				}
				if err := links[i].Link.ValidatePOW(database.DefaultDifficulty); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould have a solved nonce in link %d: %v", failed, i, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould have every link chained and solved.", success)

			if err := ledger.Verify(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the whole ledger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the whole ledger.", success)
		}
	}
}

func Test_SignatureGate(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t, 1)

	a, b := newWallet(t), newWallet(t)

	record := database.NewRecord(decimal.NewFromInt(20), a.PublicKey(), b.PublicKey())
	other := database.NewRecord(decimal.NewFromInt(2000), a.PublicKey(), b.PublicKey())

	sig, err := a.Sign(other)
	ifErrFailNow(t, err)

	tt := []struct {
		name      string
		publicKey string
		sig       []byte
	}{
		{"different-bytes", a.PublicKey(), sig},
		{"wrong-key", b.PublicKey(), mustSign(t, a, record)},
		{"empty-signature", a.PublicKey(), nil},
	}

	for _, tst := range tt {
		before := ledger.Length()

		_, err := ledger.Append(ctx, record, tst.publicKey, tst.sig)
		if !errors.Is(err, state.ErrInvalidSignature) {
			t.Fatalf("%s: Should fail with an invalid signature, got %v", tst.name, err)
		}

		if ledger.Length() != before {
			t.Fatalf("%s: Should leave the ledger unchanged, got %d exp %d", tst.name, ledger.Length(), before)
		}
	}
}

func Test_PayerSignature(t *testing.T) {
	ctx := context.Background()
	a, b := newWallet(t), newWallet(t)

	// B signs a record that claims A is paying.
	record := database.NewRecord(decimal.NewFromInt(5), a.PublicKey(), b.PublicKey())
	sig := mustSign(t, b, record)

	loose := newLedger(t, 1)
	if _, err := loose.Append(ctx, record, b.PublicKey(), sig); err != nil {
		t.Fatalf("Should accept any valid signer by default: %s", err)
	}

	gen := genesis.Default()
	gen.Difficulty = 1
	strict, err := state.New(state.Config{Genesis: gen, RequirePayerSignature: true})
	ifErrFailNow(t, err)

	if _, err := strict.Append(ctx, record, b.PublicKey(), sig); !errors.Is(err, state.ErrPayerMismatch) {
		t.Fatalf("Should reject a signer that is not the payer: %v", err)
	}

	if strict.Length() != 1 {
		t.Fatalf("Should leave the ledger unchanged, got %d", strict.Length())
	}
}

func Test_AppendMonotonicity(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t, 2)
	a, b := newWallet(t), newWallet(t)

	for i := 1; i <= 4; i++ {
		before, err := ledger.QueryLinksByAccount("")
		ifErrFailNow(t, err)

		_, err = a.SendMoney(ctx, ledger, decimal.NewFromInt(int64(i)), b.PublicKey())
		ifErrFailNow(t, err)

		after, err := ledger.QueryLinksByAccount("")
		ifErrFailNow(t, err)

		if len(after) != len(before)+1 {
			t.Fatalf("Should grow by exactly one link, got %d exp %d", len(after), len(before)+1)
		}

		for j := range before {
			if before[j].Hash != after[j].Hash {
				t.Fatalf("Should never alter existing link %d.", j)
			}
		}
	}
}

func Test_CancelAndConcurrentReads(t *testing.T) {
	started := make(chan struct{}, 1)
	ev := func(v string, args ...any) {
		if strings.Contains(v, "MINING: started") {
			select {
			case started <- struct{}{}:
			default:
			}
		}
	}

	// A difficulty this high will not be solved before the cancel.
	gen := genesis.Default()
	gen.Difficulty = 16

	ledger, err := state.New(state.Config{Genesis: gen, EvHandler: ev})
	ifErrFailNow(t, err)

	a, b := newWallet(t), newWallet(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() {
		_, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(1), b.PublicKey())
		result <- err
	}()

	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatalf("Should start mining.")
	}

	// Reads are not blocked by the append in progress.
	for i := 0; i < 10; i++ {
		if ledger.Length() != 1 || !ledger.LatestLink().IsGenesis() {
			t.Fatalf("Should read the ledger while mining.")
		}
	}

	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Should stop with a cancelled error, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Should stop mining after the cancel.")
	}

	if ledger.Length() != 1 {
		t.Fatalf("Should leave the ledger unchanged after a cancel, got %d", ledger.Length())
	}
}

func Test_TamperDetection(t *testing.T) {
	ctx := context.Background()
	strg := memory.New()

	gen := genesis.Default()
	gen.Difficulty = 2

	ledger, err := state.New(state.Config{Genesis: gen, Storage: strg})
	ifErrFailNow(t, err)

	a, b := newWallet(t), newWallet(t)
	for i := 0; i < 3; i++ {
		_, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(10), b.PublicKey())
		ifErrFailNow(t, err)
	}

	tampers := map[string]func(l *database.Link){
		"amount": func(l *database.Link) { l.Record.Amount = decimal.NewFromInt(1_000_000) },
		"payee":  func(l *database.Link) { l.Record.Payee = a.PublicKey() },
		"time":   func(l *database.Link) { l.TimeStamp-- },
	}

	for name, tamper := range tampers {
		forged := memory.New()
		for i := uint64(0); i < strg.Count(); i++ {
			link, err := strg.GetLink(i)
			ifErrFailNow(t, err)

			if i == 1 {
				tamper(&link)
			}
			ifErrFailNow(t, forged.Write(link))
		}

		_, err := state.New(state.Config{Genesis: gen, Storage: forged})
		if !errors.Is(err, state.ErrChainBroken) || !strings.Contains(err.Error(), "link[2]") {
			t.Fatalf("%s: Should detect the tampered link breaks link 2: %v", name, err)
		}
	}

	// An untouched copy still verifies.
	cpy := memory.New()
	for i := uint64(0); i < strg.Count(); i++ {
		link, err := strg.GetLink(i)
		ifErrFailNow(t, err)
		ifErrFailNow(t, cpy.Write(link))
	}

	if _, err := state.New(state.Config{Genesis: gen, Storage: cpy}); err != nil {
		t.Fatalf("Should load a valid ledger: %s", err)
	}
}

func Test_Queries(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t, 1)
	a, b, c := newWallet(t), newWallet(t), newWallet(t)

	_, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(1), b.PublicKey())
	ifErrFailNow(t, err)
	_, err = b.SendMoney(ctx, ledger, decimal.NewFromInt(2), c.PublicKey())
	ifErrFailNow(t, err)

	links, err := ledger.QueryLinksByAccount(a.PublicKey())
	ifErrFailNow(t, err)
	if len(links) != 1 || links[0].Number != 1 {
		t.Fatalf("Should find the one link for A, got %d", len(links))
	}

	links, err = ledger.QueryLinksByAccount(b.PublicKey())
	ifErrFailNow(t, err)
	if len(links) != 2 {
		t.Fatalf("Should find both links for B, got %d", len(links))
	}

	links, err = ledger.QueryLinksByNumber(state.QueryLatest, state.QueryLatest)
	ifErrFailNow(t, err)
	if len(links) != 1 || links[0].Number != 2 {
		t.Fatalf("Should find only the latest link, got %d", len(links))
	}

	if _, err := ledger.QueryLinksByNumber(5, 7); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("Should not find links past the end: %v", err)
	}

	if _, err := ledger.LinkByNumber(9); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("Should not find a link past the end: %v", err)
	}

	if ledger.SchemeName() != "secp256k1" {
		t.Fatalf("Should default to the secp256k1 scheme, got %s", ledger.SchemeName())
	}

	ifErrFailNow(t, ledger.Shutdown())
}

func Test_RSALedger(t *testing.T) {
	ctx := context.Background()

	gen := genesis.Default()
	gen.Difficulty = 1
	gen.Scheme = "rsa"

	ledger, err := state.New(state.Config{Genesis: gen})
	ifErrFailNow(t, err)

	a, err := wallet.New(signature.RSA{})
	ifErrFailNow(t, err)

	if _, err := a.SendMoney(ctx, ledger, decimal.NewFromInt(20), "satoshi"); err != nil {
		t.Fatalf("Should accept an RSA signed record: %s", err)
	}

	// A secp256k1 identity can not be verified by an RSA ledger.
	b := newWallet(t)
	if _, err := b.SendMoney(ctx, ledger, decimal.NewFromInt(20), "satoshi"); !errors.Is(err, state.ErrInvalidSignature) {
		t.Fatalf("Should reject a record signed with another scheme: %v", err)
	}

	if ledger.Length() != 2 {
		t.Fatalf("Should have two links, got %d", ledger.Length())
	}
}

// =============================================================================

func mustSign(t *testing.T, w *wallet.Wallet, record database.Record) []byte {
	sig, err := w.Sign(record)
	ifErrFailNow(t, err)

	return sig
}
