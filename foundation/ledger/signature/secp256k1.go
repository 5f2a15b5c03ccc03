package signature

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ledgerStamp is mixed into every hash that gets signed. This will make it
// clear that the signature comes from this ledger.
const ledgerStamp = "\x19Ledger Signed Message:\n32"

// Secp256k1 implements the Scheme interface using the same elliptic curve
// Ethereum and Bitcoin use.
type Secp256k1 struct{}

// Name returns the name of the scheme.
func (Secp256k1) Name() string {
	return "secp256k1"
}

// GenerateKey constructs a new random private key.
func (Secp256k1) GenerateKey() (PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return NewECDSAKey(privateKey), nil
}

// Verify checks the signature was produced over the data by the private key
// associated with the hex encoded public key.
func (Secp256k1) Verify(publicKey string, data []byte, sig []byte) error {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("%w: decoding public key: %s", ErrInvalidSignature, err)
	}

	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature length %d", ErrInvalidSignature, len(sig))
	}

	// The recovery id is not part of the verification.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(pub, stamp(data), rs) {
		return ErrInvalidSignature
	}

	return nil
}

// =============================================================================

// ECDSAKey is a secp256k1 private key that implements the PrivateKey
// interface.
type ECDSAKey struct {
	key *ecdsa.PrivateKey
}

// NewECDSAKey wraps an existing private key.
func NewECDSAKey(key *ecdsa.PrivateKey) ECDSAKey {
	return ECDSAKey{key: key}
}

// LoadECDSAKey reads a hex encoded private key from the specified file.
func LoadECDSAKey(path string) (ECDSAKey, error) {
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return ECDSAKey{}, err
	}

	return NewECDSAKey(key), nil
}

// Save writes the hex encoded private key to the specified file.
func (k ECDSAKey) Save(path string) error {
	return crypto.SaveECDSA(path, k.key)
}

// PublicKey returns the hex encoded uncompressed public key.
func (k ECDSAKey) PublicKey() string {
	return hexutil.Encode(crypto.FromECDSAPub(&k.key.PublicKey))
}

// Sign produces a 65 byte [R|S|V] signature of the stamped data.
func (k ECDSAKey) Sign(data []byte) ([]byte, error) {
	return crypto.Sign(stamp(data), k.key)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	dataHash := crypto.Keccak256(data)

	// Hash the stamp and dataHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256([]byte(ledgerStamp), dataHash)
}
