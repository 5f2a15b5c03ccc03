// Package memory implements the ability to read and write links to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
)

// Memory represents the storage implementation for reading and storing
// links in memory using a slice. This implements the state.Storage
// interface.
type Memory struct {
	mu    sync.RWMutex
	links []database.Link
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write appends the specified link to the end of the ledger.
func (m *Memory) Write(link database.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.links) == 0 && !link.IsGenesis() {
		return errors.New("first link must be the genesis link")
	}

	m.links = append(m.links, link)

	return nil
}

// GetLink returns the link at the specified position. Position 0 is the
// genesis link.
func (m *Memory) GetLink(num uint64) (database.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num >= uint64(len(m.links)) {
		return database.Link{}, fmt.Errorf("%w: number %d", database.ErrNotFound, num)
	}

	return m.links[num], nil
}

// Latest returns the last link written and its position.
func (m *Memory) Latest() (database.Link, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := len(m.links)
	if l == 0 {
		return database.Link{}, 0, fmt.Errorf("%w: ledger is empty", database.ErrNotFound)
	}

	return m.links[l-1], uint64(l - 1), nil
}

// Count returns the number of links stored.
func (m *Memory) Count() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.links))
}

// ForEach returns an iterator to walk through all the links
// starting with the genesis link.
func (m *Memory) ForEach() database.Iterator {
	return &iterator{storage: m}
}

// =============================================================================

// iterator represents the iteration implementation for walking
// through and reading links in memory. This implements the database
// Iterator interface.
type iterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current link number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next link and its position.
func (it *iterator) Next() (database.Link, uint64, error) {
	if it.eoc {
		return database.Link{}, 0, errors.New("end of chain")
	}

	num := it.current
	link, err := it.storage.GetLink(num)
	if err != nil {
		it.eoc = true
		return database.Link{}, 0, err
	}

	it.current++

	return link, num, nil
}

// Done returns the end of chain value.
func (it *iterator) Done() bool {
	return it.eoc
}
