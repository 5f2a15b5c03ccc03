package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
)

// Append verifies the record was signed by the provided public key, mines
// a new link for it, and adds the link to the end of the ledger. Only one
// append runs at a time. If the context is cancelled while mining, the
// ledger is left unchanged.
func (s *State) Append(ctx context.Context, record database.Record, publicKey string, sig []byte) (database.Link, error) {
	s.evHandler("state: Append: started: record[%s]", record)
	defer s.evHandler("state: Append: completed")

	if err := s.validateRecord(record, publicKey, sig); err != nil {
		s.evHandler("state: Append: ERROR: %s", err)
		return database.Link{}, err
	}

	// Reading the tip through writing the new link must happen as one unit.
	s.mu.Lock()
	defer s.mu.Unlock()

	tip, num, err := s.storage.Latest()
	if err != nil {
		return database.Link{}, err
	}

	s.evHandler("state: Append: MINING: perform POW: prev[%d]", num)

	link, err := database.POW(ctx, tip, record, s.genesis.Difficulty, s.evHandler)
	if err != nil {
		return database.Link{}, fmt.Errorf("mining link: %w", err)
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Link{}, ctx.Err()
	}

	if err := s.storage.Write(link); err != nil {
		return database.Link{}, fmt.Errorf("writing link: %w", err)
	}

	s.evHandler("viewer: link[%d]: hash[%s] prev[%s] record[%s]", num+1, link.Hash(), link.PrevHash, record)

	return link, nil
}

// =============================================================================

// validateRecord checks the signature was produced over the canonical form
// of the record by the private key of the public key provided.
func (s *State) validateRecord(record database.Record, publicKey string, sig []byte) error {
	if s.payerMustSig && record.Payer != publicKey {
		return ErrPayerMismatch
	}

	data, err := record.Bytes()
	if err != nil {
		return fmt.Errorf("serializing record: %w", err)
	}

	if err := s.scheme.Verify(publicKey, data, sig); err != nil {
		return fmt.Errorf("verifying record: %w", err)
	}

	return nil
}
