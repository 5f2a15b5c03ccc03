// Package commands contains the functionality for the demo commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/ledger/genesis"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/ardanlabs/powledger/foundation/ledger/state"
	"github.com/ardanlabs/powledger/foundation/ledger/wallet"
	"github.com/shopspring/decimal"
)

// Run constructs a ledger and three identities, sends 20 from the first to
// the second and 30 from the first to the third, then prints the ledger and
// the result of verifying it.
func Run(ctx context.Context, w io.Writer, difficulty uint, scheme string, ev state.EventHandler) error {
	sch, err := signature.SchemeByName(scheme)
	if err != nil {
		return err
	}

	gen := genesis.Default()
	gen.Difficulty = difficulty
	gen.Scheme = sch.Name()

	st, err := state.New(state.Config{
		Genesis:   gen,
		Scheme:    sch,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	wallets := make([]*wallet.Wallet, 3)
	for i := range wallets {
		if wallets[i], err = wallet.New(sch); err != nil {
			return fmt.Errorf("creating wallet: %w", err)
		}
	}
	a, b, c := wallets[0], wallets[1], wallets[2]

	if _, err := a.SendMoney(ctx, st, decimal.NewFromInt(20), b.PublicKey()); err != nil {
		return fmt.Errorf("sending to B: %w", err)
	}

	if _, err := a.SendMoney(ctx, st, decimal.NewFromInt(30), c.PublicKey()); err != nil {
		return fmt.Errorf("sending to C: %w", err)
	}

	links, err := st.QueryLinksByNumber(0, state.QueryLatest)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n\n", data)

	if err := st.Verify(); err != nil {
		fmt.Fprintf(w, "Ledger INVALID: %s\n", err)
		return err
	}
	fmt.Fprintf(w, "Ledger verified: %d links\n", st.Length())

	return nil
}
