// Package costbasis implements the pure cost-basis rules of the ledger:
// weighted-average cost basis on buy, share-count reduction on sell, and
// the percent-change calculation. No I/O happens here.
package costbasis

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ApplyBuy folds a purchase into an existing position and returns the
// updated holding. The input holding is never mutated.
//
// With no existing position the purchase price becomes the cost basis.
// Otherwise the new basis is the weighted average:
//
//	(owned*basis + bought*price) / (owned + bought)
func ApplyBuy(existing *domain.Holding, shares, price decimal.Decimal) (*domain.Holding, error) {
	if shares.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: share count must be positive, got %s", domain.ErrInvalidTransaction, shares)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: purchase price must be positive, got %s", domain.ErrInvalidTransaction, price)
	}

	if existing == nil {
		return &domain.Holding{
			SharesOwned: shares,
			CostBasis:   price,
		}, nil
	}

	newShares := existing.SharesOwned.Add(shares)
	newBasis := existing.SharesOwned.Mul(existing.CostBasis).
		Add(shares.Mul(price)).
		Div(newShares)

	updated := *existing
	updated.SharesOwned = newShares
	updated.CostBasis = newBasis
	return &updated, nil
}

// ApplySell reduces the position by the sold share count and returns the
// updated holding. The cost basis is unchanged: selling does not alter
// the average price paid for the remaining shares. A sell that would
// take the position negative is rejected; the ledger does not short.
func ApplySell(existing *domain.Holding, shares decimal.Decimal) (*domain.Holding, error) {
	if existing == nil {
		return nil, domain.ErrNoSuchHolding
	}
	if shares.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: share count must be positive, got %s", domain.ErrInvalidTransaction, shares)
	}
	if shares.GreaterThan(existing.SharesOwned) {
		return nil, fmt.Errorf("%w: cannot sell %s shares of %s, only %s owned",
			domain.ErrInsufficientShares, shares, existing.Ticker, existing.SharesOwned)
	}

	updated := *existing
	updated.SharesOwned = existing.SharesOwned.Sub(shares)
	return &updated, nil
}

// PercentChange returns the relative difference between the current price
// and the cost basis, expressed as a percentage.
func PercentChange(costBasis, currentPrice decimal.Decimal) (decimal.Decimal, error) {
	if costBasis.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: percent change against a zero cost basis", domain.ErrDivisionUndefined)
	}
	return currentPrice.Sub(costBasis).Div(costBasis).Mul(hundred), nil
}
