package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/genesis"
)

// QueryLatest represents to query the latest link in the ledger.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// Genesis returns a copy of the genesis settings.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// SchemeName returns the name of the signature scheme records are
// verified with.
func (s *State) SchemeName() string {
	return s.scheme.Name()
}

// Length returns the number of links in the ledger, including genesis. This
// does not wait for an append in progress.
func (s *State) Length() uint64 {
	return s.storage.Count()
}

// LatestLink returns the tip of the ledger.
func (s *State) LatestLink() database.Link {
	link, _, err := s.storage.Latest()
	if err != nil {
		s.evHandler("state: LatestLink: ERROR: %s", err)
	}

	return link
}

// LinkByNumber returns the link at the specified position.
func (s *State) LinkByNumber(num uint64) (database.Link, error) {
	return s.storage.GetLink(num)
}

// QueryLinksByNumber returns the set of links based on link numbers.
func (s *State) QueryLinksByNumber(from uint64, to uint64) ([]database.LinkData, error) {
	latest := s.storage.Count() - 1

	if from == QueryLatest {
		from = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	if from > to {
		return nil, fmt.Errorf("%w: range %d to %d", ErrNotFound, from, to)
	}

	out := make([]database.LinkData, 0, to-from+1)
	for i := from; i <= to; i++ {
		link, err := s.storage.GetLink(i)
		if err != nil {
			return nil, err
		}
		out = append(out, database.NewLinkData(i, link))
	}

	return out, nil
}

// QueryLinksByAccount returns the set of links whose record has the account
// as payer or payee. If the account is empty, all links are returned.
func (s *State) QueryLinksByAccount(account string) ([]database.LinkData, error) {
	var out []database.LinkData

	iter := s.storage.ForEach()
	for link, num, err := iter.Next(); !iter.Done(); link, num, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if account == "" || link.Record.Payer == account || link.Record.Payee == account {
			out = append(out, database.NewLinkData(num, link))
		}
	}

	return out, nil
}
