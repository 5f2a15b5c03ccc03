// Package signature provides helper functions for handling the ledger
// digest and signature needs.
package signature

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is used as the previous hash
// of the genesis link.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// ErrInvalidSignature is returned when a signature does not verify against
// the public key and data provided.
var ErrInvalidSignature = errors.New("invalid signature")

// =============================================================================

// Scheme represents the behavior required by any asymmetric signature
// algorithm the ledger can use to authorize records.
type Scheme interface {
	Name() string
	GenerateKey() (PrivateKey, error)
	Verify(publicKey string, data []byte, sig []byte) error
}

// PrivateKey represents a signing credential produced by a Scheme.
type PrivateKey interface {
	PublicKey() string
	Sign(data []byte) ([]byte, error)
}

// SchemeByName returns the scheme registered under the specified name. An
// empty name selects the default secp256k1 scheme.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case "", Secp256k1{}.Name():
		return Secp256k1{}, nil
	case RSA{}.Name():
		return RSA{}, nil
	}

	return nil, fmt.Errorf("unknown signature scheme %q", name)
}

// =============================================================================

// Hash returns a unique string for the value. This is the strong digest used
// to link records together.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// FastHash returns the hex encoded md5 digest of the data. This is the
// cheap digest used by the proof of work search.
func FastHash(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}
