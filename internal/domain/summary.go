package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSummary is the portfolio-wide aggregate view.
// It is a projection of the current holding set: destroyed and fully
// recomputed on every ledger action, never incrementally updated, so it
// can never drift from the holdings it summarizes.
type PortfolioSummary struct {
	HoldingCount         int
	TotalInvested        decimal.Decimal // sum of shares * cost basis over all holdings
	TotalShares          decimal.Decimal
	AveragePricePerShare decimal.Decimal // TotalInvested / TotalShares, zero when no shares
	OverallPercentGrowth decimal.Decimal // aggregate growth, not an average of per-holding percentages
	UpdatedAt            time.Time
}
