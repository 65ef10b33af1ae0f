// Package summary implements the portfolio-wide aggregate view.
package summary

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Recompute builds the portfolio summary from scratch over the current
// holding set. There is deliberately no incremental update path: a full
// recomputation on every ledger action guarantees the summary can never
// drift from the holdings.
//
// Over an empty holding set every field is zero, so the summary is
// always renderable.
func Recompute(holdings []*domain.Holding) *domain.PortfolioSummary {
	s := &domain.PortfolioSummary{
		HoldingCount:         len(holdings),
		TotalInvested:        decimal.Zero,
		TotalShares:          decimal.Zero,
		AveragePricePerShare: decimal.Zero,
		OverallPercentGrowth: decimal.Zero,
		UpdatedAt:            time.Now(),
	}

	totalBasis := decimal.Zero
	totalGain := decimal.Zero
	for _, h := range holdings {
		s.TotalInvested = s.TotalInvested.Add(h.InvestedCapital())
		s.TotalShares = s.TotalShares.Add(h.SharesOwned)
		totalBasis = totalBasis.Add(h.CostBasis)
		totalGain = totalGain.Add(h.LastKnownPrice.Sub(h.CostBasis))
	}

	if s.TotalShares.IsPositive() {
		s.AveragePricePerShare = s.TotalInvested.Div(s.TotalShares)
	}

	// Growth is aggregated across holdings, not an average of the
	// per-holding percentages.
	if totalBasis.IsPositive() {
		s.OverallPercentGrowth = totalGain.Div(totalBasis).Mul(hundred)
	}

	return s
}
