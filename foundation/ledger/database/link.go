package database

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/ardanlabs/powledger/foundation/ledger/signature"
)

// ErrNotFound is returned when a link does not exist at the requested
// position in the ledger.
var ErrNotFound = errors.New("link not found")

// maxNonceSeed is the upper bound for a randomly chosen nonce seed.
const maxNonceSeed = 999_999_999

// Link represents a single record chained to the link before it.
type Link struct {
	PrevHash  string `json:"prev_hash"` // Hash of the previous link in the ledger.
	Record    Record `json:"record"`    // The record being added to the ledger.
	Nonce     uint64 `json:"nonce"`     // Value identified to solve the proof of work.
	TimeStamp uint64 `json:"timestamp"` // Time the link was created in milliseconds.
}

// LinkOption represents a function that overrides a default when
// constructing a link.
type LinkOption func(l *Link)

// WithNonce sets the nonce instead of choosing a random one.
func WithNonce(nonce uint64) LinkOption {
	return func(l *Link) {
		l.Nonce = nonce
	}
}

// WithTimeStamp sets the timestamp instead of using the current time.
func WithTimeStamp(timeStamp uint64) LinkOption {
	return func(l *Link) {
		l.TimeStamp = timeStamp
	}
}

// NewLink constructs a candidate link. The nonce defaults to a random value
// and the timestamp to the current time.
func NewLink(prevHash string, record Record, options ...LinkOption) (Link, error) {
	nonce, err := randomNonce()
	if err != nil {
		return Link{}, err
	}

	l := Link{
		PrevHash:  prevHash,
		Record:    record,
		Nonce:     nonce,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}

	for _, option := range options {
		option(&l)
	}

	return l, nil
}

// Hash returns the unique hash for the link. The hash is recalculated on
// every call so changing any field changes the result.
func (l Link) Hash() string {
	return signature.Hash(l)
}

// IsGenesis reports whether this is the first link of a ledger.
func (l Link) IsGenesis() bool {
	return l.PrevHash == signature.ZeroHash
}

// =============================================================================

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the links of a ledger.
type Iterator interface {
	Next() (Link, uint64, error)
	Done() bool
}

// =============================================================================

// LinkData represents what is returned to callers that need the hash
// alongside the link, such as the web api.
type LinkData struct {
	Number uint64 `json:"number"`
	Hash   string `json:"hash"`
	Link   Link   `json:"link"`
}

// NewLinkData constructs the value to serialize for a link at the specified
// position in the ledger.
func NewLinkData(number uint64, link Link) LinkData {
	return LinkData{
		Number: number,
		Hash:   link.Hash(),
		Link:   link,
	}
}

// =============================================================================

// randomNonce chooses a random starting point in [0, maxNonceSeed].
func randomNonce() (uint64, error) {
	nBig, err := rand.Int(rand.Reader, big.NewInt(maxNonceSeed+1))
	if err != nil {
		return 0, err
	}

	return nBig.Uint64(), nil
}
