package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// HoldingRepository defines the interface for holding persistence operations.
// Writes have full-replace semantics: the entire holding set is rewritten
// atomically, so a reader never observes a half-written set.
type HoldingRepository interface {
	// LoadAll retrieves every holding in store insertion order.
	LoadAll(ctx context.Context) ([]*Holding, error)

	// Find retrieves a holding by its normalized ticker.
	// Returns (nil, nil) when the ticker is not tracked.
	Find(ctx context.Context, ticker string) (*Holding, error)

	// SaveAll atomically replaces the entire holding set.
	SaveAll(ctx context.Context, holdings []*Holding) error
}

// SummaryRepository defines the interface for portfolio summary persistence.
// The summary is a singleton record with the same full-replace semantics
// as the holding set.
type SummaryRepository interface {
	// Load retrieves the persisted summary.
	// Returns (nil, nil) when no summary has been written yet.
	Load(ctx context.Context) (*PortfolioSummary, error)

	// Save atomically replaces the persisted summary.
	Save(ctx context.Context, summary *PortfolioSummary) error
}

// PriceSource defines the interface to the external market data collaborator.
type PriceSource interface {
	// LookupHistorical returns the closing price on the nearest available
	// trading date at or after the given date. Returns ErrPriceUnavailable
	// when the market was never open for the ticker in that window.
	LookupHistorical(ctx context.Context, ticker string, date time.Time) (decimal.Decimal, error)

	// LookupLatest returns the most recent closing price as of the last
	// completed trading session.
	LookupLatest(ctx context.Context, ticker string) (decimal.Decimal, error)

	// LookupLatestBatch returns latest closing prices for a set of tickers
	// in one round trip. A ticker absent from the result is equivalent to
	// ErrPriceUnavailable for that ticker.
	LookupLatestBatch(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error)
}
