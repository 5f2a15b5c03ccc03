// Package wallet provides an identity that can sign records and submit
// them to a ledger.
package wallet

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/shopspring/decimal"
)

// Appender represents the behavior of a ledger that accepts signed records.
type Appender interface {
	Append(ctx context.Context, record database.Record, publicKey string, sig []byte) (database.Link, error)
}

// Wallet holds the key pair for an identity.
type Wallet struct {
	key signature.PrivateKey
}

// New constructs a wallet with a newly generated key from the scheme.
func New(scheme signature.Scheme) (*Wallet, error) {
	key, err := scheme.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromKey(key), nil
}

// FromKey constructs a wallet for an existing private key.
func FromKey(key signature.PrivateKey) *Wallet {
	return &Wallet{key: key}
}

// PublicKey returns the public key that identifies this wallet.
func (w *Wallet) PublicKey() string {
	return w.key.PublicKey()
}

// Sign signs the canonical form of the record.
func (w *Wallet) Sign(record database.Record) ([]byte, error) {
	data, err := record.Bytes()
	if err != nil {
		return nil, err
	}

	return w.key.Sign(data)
}

// SendMoney builds a record paying the amount to the payee from this wallet,
// signs it, and appends it to the ledger.
func (w *Wallet) SendMoney(ctx context.Context, ledger Appender, amount decimal.Decimal, payee string) (database.Link, error) {
	record := database.NewRecord(amount, w.PublicKey(), payee)

	sig, err := w.Sign(record)
	if err != nil {
		return database.Link{}, fmt.Errorf("signing record: %w", err)
	}

	return ledger.Append(ctx, record, w.PublicKey(), sig)
}
