package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
)

// Mine searches for the solution of the specified seed and prints it with
// the fast digest that satisfies the difficulty.
func Mine(ctx context.Context, w io.Writer, seedArg string, difficulty uint) error {
	seed, err := strconv.ParseUint(seedArg, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing seed %q: %w", seedArg, err)
	}

	start := time.Now()

	solution, err := database.Mine(ctx, seed, difficulty, nil)
	if err != nil {
		return err
	}

	nonce := seed + solution
	fmt.Fprintf(w, "Seed: %d  Solution: %d  Nonce: %d\n", seed, solution, nonce)
	fmt.Fprintf(w, "Digest: %s\n", signature.FastHash([]byte(strconv.FormatUint(nonce, 10))))
	fmt.Fprintf(w, "Duration: %s\n", time.Since(start))

	return nil
}

// Hash prints the fast and strong digests of the text.
func Hash(w io.Writer, text string) error {
	fmt.Fprintf(w, "Fast:   %s\n", signature.FastHash([]byte(text)))
	fmt.Fprintf(w, "Strong: %s\n", signature.Hash(text))

	return nil
}
