package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
)

// Verify walks the whole ledger recalculating every hash. It returns an
// error naming the first link that is not chained to its predecessor or
// does not satisfy the proof of work.
func (s *State) Verify() error {
	s.evHandler("state: Verify: started")
	defer s.evHandler("state: Verify: completed")

	var prevLink database.Link

	iter := s.storage.ForEach()
	for link, num, err := iter.Next(); !iter.Done(); link, num, err = iter.Next() {
		if err != nil {
			return err
		}

		if num == 0 {
			if !link.IsGenesis() {
				return fmt.Errorf("link[0]: %w: genesis link has a previous hash", ErrChainBroken)
			}
			prevLink = link
			continue
		}

		if err := database.ValidateLink(link, prevLink, s.genesis.Difficulty, s.evHandler); err != nil {
			return fmt.Errorf("link[%d]: %w", num, err)
		}

		prevLink = link
	}

	return nil
}
