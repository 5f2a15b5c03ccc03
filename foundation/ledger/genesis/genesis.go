// Package genesis maintains access to the genesis settings that bootstrap
// a new ledger.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/shopspring/decimal"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date       time.Time       `json:"date"`       // Time of the genesis link. Zero means the ledger start time.
	Difficulty uint            `json:"difficulty"` // How difficult it needs to be to solve the work problem.
	Scheme     string          `json:"scheme"`     // Signature scheme identities must use.
	Amount     decimal.Decimal `json:"amount"`     // Amount recorded in the bootstrap record.
	Payer      string          `json:"payer"`      // Payer of the bootstrap record.
	Payee      string          `json:"payee"`      // Bootstrap identity receiving the amount.
	Nonce      uint64          `json:"nonce"`      // Nonce for the genesis link. Zero means random.
}

// Default returns the settings used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Difficulty: database.DefaultDifficulty,
		Scheme:     "secp256k1",
		Amount:     decimal.NewFromInt(100),
		Payer:      "genesis",
		Payee:      "satoshi",
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Fields missing from the file
// keep their default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file %s: %w", path, err)
	}

	return genesis, nil
}

// Record returns the bootstrap record the genesis link holds.
func (g Genesis) Record() database.Record {
	return database.NewRecord(g.Amount, g.Payer, g.Payee)
}

// LinkOptions returns the options required to construct the genesis link
// from these settings.
func (g Genesis) LinkOptions() []database.LinkOption {
	var options []database.LinkOption

	if !g.Date.IsZero() {
		options = append(options, database.WithTimeStamp(uint64(g.Date.UTC().UnixMilli())))
	}

	if g.Nonce != 0 {
		options = append(options, database.WithNonce(g.Nonce))
	}

	return options
}
