package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/ledger/signature"
)

// DefaultDifficulty is the number of leading zero hex characters the fast
// hash of a solution must have. Four characters is 16 bits of work.
const DefaultDifficulty uint = 4

// maxDifficulty is the number of hex characters in a fast hash.
const maxDifficulty uint = 32

// Set of errors returned when validating links.
var (
	ErrChainBroken = errors.New("link is not chained to the previous link")
	ErrInvalidPOW  = errors.New("link does not satisfy the proof of work")
)

// =============================================================================

// POW constructs a new link chained to the previous link and performs the
// work to find a nonce that solves the proof of work puzzle. The candidate's
// random nonce is used as the seed for the search and the winning value is
// stored in the link so anyone can verify the work.
func POW(ctx context.Context, prevLink Link, record Record, difficulty uint, evHandler func(v string, args ...any)) (Link, error) {
	nl, err := NewLink(prevLink.Hash(), record)
	if err != nil {
		return Link{}, err
	}

	solution, err := Mine(ctx, nl.Nonce, difficulty, evHandler)
	if err != nil {
		return Link{}, err
	}

	nl.Nonce += solution

	return nl, nil
}

// Mine searches for the first solution s = 1, 2, 3, ... where the fast hash
// of seed+s satisfies the difficulty. The search has no limit and only ends
// early if the context is cancelled.
func Mine(ctx context.Context, seed uint64, difficulty uint, evHandler func(v string, args ...any)) (uint64, error) {
	ev := safe(evHandler)

	if difficulty > maxDifficulty {
		return 0, fmt.Errorf("difficulty %d is greater than %d", difficulty, maxDifficulty)
	}

	ev("database: Mine: MINING: started: seed[%d] difficulty[%d]", seed, difficulty)
	defer ev("database: Mine: MINING: completed")

	for solution := uint64(1); ; solution++ {
		if solution%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", solution)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED: attempts[%d]", solution-1)
			return 0, ctx.Err()
		}

		hash := fastHashNonce(seed + solution)
		if !IsSolved(difficulty, hash) {
			continue
		}

		ev("database: Mine: MINING: SOLVED: hash[%s] attempts[%d]", hash, solution)

		return solution, nil
	}
}

// IsSolved checks the hash to make sure it complies with the proof of work
// rules. We need to match a difficulty number of leading 0's.
func IsSolved(difficulty uint, hash string) bool {
	const match = "00000000000000000000000000000000"

	if difficulty > maxDifficulty || uint(len(hash)) < difficulty {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// =============================================================================

// ValidatePOW checks the nonce stored in the link solves the proof of work.
func (l Link) ValidatePOW(difficulty uint) error {
	hash := fastHashNonce(l.Nonce)
	if !IsSolved(difficulty, hash) {
		return fmt.Errorf("%w: nonce %d hashes to %s", ErrInvalidPOW, l.Nonce, hash)
	}

	return nil
}

// ValidateLink takes a link and validates it follows the previous link in
// the ledger.
func ValidateLink(link Link, prevLink Link, difficulty uint, evHandler func(v string, args ...any)) error {
	ev := safe(evHandler)

	ev("database: ValidateLink: validate: link[%s]: check: prev hash does match previous link", link.Record)

	if prevHash := prevLink.Hash(); link.PrevHash != prevHash {
		return fmt.Errorf("%w: got %s, exp %s", ErrChainBroken, link.PrevHash, prevHash)
	}

	ev("database: ValidateLink: validate: link[%s]: check: nonce has been solved", link.Record)

	return link.ValidatePOW(difficulty)
}

// safe returns an event handler that can be called when nil was provided.
func safe(evHandler func(v string, args ...any)) func(v string, args ...any) {
	return func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}
}

// fastHashNonce returns the fast hash of the decimal string form of the nonce.
func fastHashNonce(nonce uint64) string {
	return signature.FastHash([]byte(strconv.FormatUint(nonce, 10)))
}
