package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents one ticker's aggregated position in the ledger.
// There is exactly one row per distinct ticker; repeated buys fold into
// the same row through the weighted-average cost basis.
type Holding struct {
	ID             uuid.UUID
	Ticker         string          // normalized symbol, unique key
	SharesOwned    decimal.Decimal // strictly positive for any persisted holding
	CostBasis      decimal.Decimal // weighted-average price paid per share
	LastKnownPrice decimal.Decimal // set on buy and on refresh
	PercentChange  decimal.Decimal // derived from CostBasis and LastKnownPrice
}

// NormalizeTicker maps a free-text symbol to its canonical ledger key.
// Applied uniformly on every action so repository keys and price lookups
// never diverge by case.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Validate ensures the holding adheres to ledger rules.
// Returns an error if validation fails.
func (h *Holding) Validate() error {
	if h.Ticker == "" {
		return errors.New("holding ticker cannot be empty")
	}

	if h.Ticker != NormalizeTicker(h.Ticker) {
		return errors.New("holding ticker must be normalized")
	}

	// A holding whose shares reach zero is pruned from the ledger, so a
	// persisted holding always owns a positive share count.
	if h.SharesOwned.LessThanOrEqual(decimal.Zero) {
		return errors.New("holding must own a positive number of shares")
	}

	if h.CostBasis.LessThanOrEqual(decimal.Zero) {
		return errors.New("holding cost basis must be positive")
	}

	return nil
}

// InvestedCapital returns the capital tied up in this holding at cost
// (shares owned times weighted-average price paid).
func (h *Holding) InvestedCapital() decimal.Decimal {
	return h.SharesOwned.Mul(h.CostBasis)
}
