package database_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/shopspring/decimal"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_RecordBytes(t *testing.T) {
	record := database.NewRecord(decimal.NewFromInt(20), "alice", "bob")

	data, err := record.Bytes()
	if err != nil {
		t.Fatalf("Should be able to serialize the record: %s", err)
	}

	exp := `{"amount":"20","payer":"alice","payee":"bob"}`
	if string(data) != exp {
		t.Logf("got: %s", data)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the canonical form of the record.")
	}

	negative := database.NewRecord(decimal.NewFromInt(-5), "alice", "bob")
	if _, err := negative.Bytes(); err != nil {
		t.Fatalf("Should be able to serialize a negative amount: %s", err)
	}
}

func Test_LinkHash(t *testing.T) {
	record := database.NewRecord(decimal.NewFromInt(100), "genesis", "satoshi")

	link, err := database.NewLink(signature.ZeroHash, record, database.WithNonce(42), database.WithTimeStamp(1_700_000_000_000))
	if err != nil {
		t.Fatalf("Should be able to construct a link: %s", err)
	}

	if link.Nonce != 42 || link.TimeStamp != 1_700_000_000_000 {
		t.Fatalf("Should honor the nonce and timestamp options, got %d %d", link.Nonce, link.TimeStamp)
	}

	if !link.IsGenesis() {
		t.Fatalf("Should recognize a link with the zero hash as genesis.")
	}

	h1 := link.Hash()
	h2 := link.Hash()
	if h1 != h2 {
		t.Logf("got: %s", h2)
		t.Logf("exp: %s", h1)
		t.Fatalf("Should get back the same hash twice.")
	}

	tampers := map[string]func(l *database.Link){
		"prev":      func(l *database.Link) { l.PrevHash = "0x01" },
		"amount":    func(l *database.Link) { l.Record.Amount = decimal.NewFromInt(1000) },
		"payer":     func(l *database.Link) { l.Record.Payer = "mallory" },
		"payee":     func(l *database.Link) { l.Record.Payee = "mallory" },
		"nonce":     func(l *database.Link) { l.Nonce++ },
		"timestamp": func(l *database.Link) { l.TimeStamp++ },
	}

	for name, tamper := range tampers {
		cpy := link
		tamper(&cpy)
		if cpy.Hash() == h1 {
			t.Fatalf("Should get a different hash when changing the %s field.", name)
		}
	}
}

func Test_NewLinkDefaults(t *testing.T) {
	record := database.NewRecord(decimal.NewFromInt(1), "a", "b")

	before := uint64(time.Now().UTC().UnixMilli())
	link, err := database.NewLink("0xabc", record)
	if err != nil {
		t.Fatalf("Should be able to construct a link: %s", err)
	}
	after := uint64(time.Now().UTC().UnixMilli())

	if link.Nonce > 999_999_999 {
		t.Fatalf("Should choose a nonce seed in range, got %d", link.Nonce)
	}

	if link.TimeStamp < before || link.TimeStamp > after {
		t.Fatalf("Should default the timestamp to now, got %d, exp [%d, %d]", link.TimeStamp, before, after)
	}

	if link.IsGenesis() {
		t.Fatalf("Should not treat a chained link as genesis.")
	}
}

func Test_IsSolved(t *testing.T) {
	tt := []struct {
		difficulty uint
		hash       string
		solved     bool
	}{
		{4, "0000a1b2c3d4e5f60718293a4b5c6d7e", true},
		{4, "000fa1b2c3d4e5f60718293a4b5c6d7e", false},
		{0, "ffffa1b2c3d4e5f60718293a4b5c6d7e", true},
		{1, "0fffa1b2c3d4e5f60718293a4b5c6d7e", true},
		{4, "000", false},
		{33, "00000000000000000000000000000000", false},
	}

	for _, tst := range tt {
		if got := database.IsSolved(tst.difficulty, tst.hash); got != tst.solved {
			t.Fatalf("Should get %v for difficulty %d and hash %s, got %v", tst.solved, tst.difficulty, tst.hash, got)
		}
	}
}

func Test_Mine(t *testing.T) {
	seeds := []uint64{0, 1, 12345, 999_999_999}

	t.Log("Given the need to find a proof of work solution.")
	{
		for testID, seed := range seeds {
			t.Logf("\tTest %d:\tWhen mining from seed %d.", testID, seed)
			{
				solution, err := database.Mine(context.Background(), seed, database.DefaultDifficulty, nil)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine a solution: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to mine a solution.", success, testID)

				if solution == 0 {
					t.Fatalf("\t%s\tTest %d:\tShould start the search at one.", failed, testID)
				}

				hash := signature.FastHash([]byte(strconv.FormatUint(seed+solution, 10)))
				if hash[:4] != "0000" {
					t.Fatalf("\t%s\tTest %d:\tShould find a solution with four leading zeros, got %s", failed, testID, hash)
				}
				t.Logf("\t%s\tTest %d:\tShould find a solution with four leading zeros.", success, testID)

				// The first solution is the one returned, nothing earlier
				// satisfies the difficulty.
				for s := uint64(1); s < solution; s++ {
					hash := signature.FastHash([]byte(strconv.FormatUint(seed+s, 10)))
					if database.IsSolved(database.DefaultDifficulty, hash) {
						t.Fatalf("\t%s\tTest %d:\tShould return the first solution, %d also solves.", failed, testID, s)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould return the first solution.", success, testID)
			}
		}
	}
}

func Test_MineCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := database.Mine(ctx, 0, database.DefaultDifficulty, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Should stop mining when the context is cancelled: %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := database.Mine(ctx, 0, 20, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Should stop mining when the deadline passes: %v", err)
	}

	if _, err := database.Mine(context.Background(), 0, 33, nil); err == nil {
		t.Fatalf("Should reject a difficulty larger than the hash.")
	}
}

func Test_POW(t *testing.T) {
	genesis, err := database.NewLink(signature.ZeroHash, database.NewRecord(decimal.NewFromInt(100), "genesis", "satoshi"))
	if err != nil {
		t.Fatalf("Should be able to construct the genesis link: %s", err)
	}

	var events int
	ev := func(v string, args ...any) { events++ }

	record := database.NewRecord(decimal.NewFromInt(20), "alice", "bob")
	link, err := database.POW(context.Background(), genesis, record, database.DefaultDifficulty, ev)
	if err != nil {
		t.Fatalf("Should be able to mine a link: %s", err)
	}

	if events == 0 {
		t.Fatalf("Should raise events while mining.")
	}

	if link.PrevHash != genesis.Hash() {
		t.Fatalf("Should chain the link to the previous link.")
	}

	if err := link.ValidatePOW(database.DefaultDifficulty); err != nil {
		t.Fatalf("Should store a nonce that solves the proof of work: %s", err)
	}

	if err := database.ValidateLink(link, genesis, database.DefaultDifficulty, nil); err != nil {
		t.Fatalf("Should validate the mined link: %s", err)
	}

	other := database.NewRecord(decimal.NewFromInt(1), "x", "y")
	stranger, err := database.NewLink(signature.ZeroHash, other)
	if err != nil {
		t.Fatalf("Should be able to construct another link: %s", err)
	}

	if err := database.ValidateLink(link, stranger, database.DefaultDifficulty, nil); !errors.Is(err, database.ErrChainBroken) {
		t.Fatalf("Should detect a link chained to a different parent: %v", err)
	}

	// The fast hash of "0" is cfcd208495d565ef66e7dff9f98764da.
	link.Nonce = 0
	if err := link.ValidatePOW(database.DefaultDifficulty); !errors.Is(err, database.ErrInvalidPOW) {
		t.Fatalf("Should detect a nonce that does not solve the proof of work: %v", err)
	}
}

func Test_SignedRecord(t *testing.T) {
	record := database.NewRecord(decimal.NewFromInt(20), "alice", "bob")
	sig := []byte{0xde, 0xad, 0xbe, 0xef}

	sr := database.NewSignedRecord(record, "alice", sig)
	if sr.Signature != "0xdeadbeef" {
		t.Fatalf("Should hex encode the signature, got %s", sr.Signature)
	}

	got, err := sr.SignatureBytes()
	if err != nil {
		t.Fatalf("Should be able to decode the signature: %s", err)
	}

	if string(got) != string(sig) {
		t.Fatalf("Should get back the same signature bytes.")
	}

	sr.Signature = "deadbeef"
	if _, err := sr.SignatureBytes(); err == nil {
		t.Fatalf("Should reject a signature without the 0x prefix.")
	}
}
