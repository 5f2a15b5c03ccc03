// Package state is the core API for the ledger and implements all the
// rules for appending and querying links.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/genesis"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/ardanlabs/powledger/foundation/ledger/storage/memory"
)

// Set of errors returned by the state api.
var (
	ErrInvalidSignature = signature.ErrInvalidSignature
	ErrPayerMismatch    = errors.New("signer is not the payer of the record")
	ErrChainBroken      = database.ErrChainBroken
	ErrInvalidPOW       = database.ErrInvalidPOW
	ErrNotFound         = database.ErrNotFound
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of appending links.
type EventHandler func(v string, args ...any)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the ledger.
type Storage interface {
	Write(link database.Link) error
	GetLink(num uint64) (database.Link, error)
	Latest() (database.Link, uint64, error)
	Count() uint64
	ForEach() database.Iterator
	Close() error
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis genesis.Genesis

	// Scheme is used to verify signatures. When nil, the scheme named in the
	// genesis settings is used.
	Scheme signature.Scheme

	// Storage holds the links. When nil, links are kept in memory.
	Storage Storage

	// RequirePayerSignature rejects records not signed by their payer. The
	// default accepts a signature from any key over the record.
	RequirePayerSignature bool

	EvHandler EventHandler
}

// State manages the ledger.
type State struct {
	mu sync.Mutex

	genesis      genesis.Genesis
	scheme       signature.Scheme
	storage      Storage
	payerMustSig bool
	evHandler    EventHandler
}

// New constructs a new ledger. If the storage is empty, the genesis link is
// written as the first link.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	scheme := cfg.Scheme
	if scheme == nil {
		var err error
		if scheme, err = signature.SchemeByName(cfg.Genesis.Scheme); err != nil {
			return nil, err
		}
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}

	state := State{
		genesis:      cfg.Genesis,
		scheme:       scheme,
		storage:      strg,
		payerMustSig: cfg.RequirePayerSignature,
		evHandler:    ev,
	}

	// A ledger always starts with the genesis link.
	if strg.Count() == 0 {
		link, err := database.NewLink(signature.ZeroHash, cfg.Genesis.Record(), cfg.Genesis.LinkOptions()...)
		if err != nil {
			return nil, fmt.Errorf("constructing genesis link: %w", err)
		}

		if err := strg.Write(link); err != nil {
			return nil, fmt.Errorf("writing genesis link: %w", err)
		}

		ev("state: New: genesis link created: hash[%s]", link.Hash())

		return &state, nil
	}

	// Links provided by the storage need to be validated first.
	if err := state.Verify(); err != nil {
		return nil, fmt.Errorf("validating existing links: %w", err)
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Wait for any append in progress to finish.
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}
