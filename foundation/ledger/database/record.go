// Package database handles the values that make up the ledger: the records
// being transferred, the links that chain them together, and the proof of
// work required before a link can be appended.
package database

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// Record is the transfer of an amount from one identity to another. No
// bounds are placed on the amount and no balance is checked.
type Record struct {
	Amount decimal.Decimal `json:"amount"` // Quantity being transferred. May be zero or negative.
	Payer  string          `json:"payer" validate:"required"` // Public key of the identity sending the amount.
	Payee  string          `json:"payee" validate:"required"` // Public key of the identity receiving the amount.
}

// NewRecord constructs a new record.
func NewRecord(amount decimal.Decimal, payer string, payee string) Record {
	return Record{
		Amount: amount,
		Payer:  payer,
		Payee:  payee,
	}
}

// Bytes returns the canonical serialized form of the record. These are the
// bytes an identity signs and the form hashed inside a link.
func (r Record) Bytes() ([]byte, error) {
	return json.Marshal(r)
}

// String implements the fmt.Stringer interface for logging.
func (r Record) String() string {
	return fmt.Sprintf("%s->%s:%s", short(r.Payer), short(r.Payee), r.Amount)
}

// short trims long public keys down to something readable in logs.
func short(key string) string {
	const size = 10

	if len(key) <= size {
		return key
	}

	return key[:size]
}

// =============================================================================

// SignedRecord is a record with the signature of the identity authorizing
// it. This is how clients like a wallet submit records to a node.
type SignedRecord struct {
	Record    Record `json:"record"`
	PublicKey string `json:"public_key" validate:"required"` // Key the signature is verified with.
	Signature string `json:"signature" validate:"required"`  // Hex encoded signature of the canonical record.
}

// NewSignedRecord constructs a signed record for submission.
func NewSignedRecord(record Record, publicKey string, sig []byte) SignedRecord {
	return SignedRecord{
		Record:    record,
		PublicKey: publicKey,
		Signature: hexutil.Encode(sig),
	}
}

// SignatureBytes decodes the hex encoded signature.
func (sr SignedRecord) SignatureBytes() ([]byte, error) {
	return hexutil.Decode(sr.Signature)
}
