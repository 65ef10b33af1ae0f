// Package ledger implements the orchestrator that sequences price lookups,
// cost-basis computations and repository writes for one user action at a
// time. All in-process state is transient: the ledger itself lives in the
// repositories.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/volodymyr-data/investment-tracker/internal/domain"
	"github.com/volodymyr-data/investment-tracker/internal/usecase/costbasis"
	"github.com/volodymyr-data/investment-tracker/internal/usecase/summary"
)

// Service handles ledger actions (buy, sell, refresh)
type Service struct {
	HoldingRepo domain.HoldingRepository
	SummaryRepo domain.SummaryRepository
	PriceSource domain.PriceSource
	log         logrus.FieldLogger
}

// NewService creates a new ledger Service instance
func NewService(
	holdingRepo domain.HoldingRepository,
	summaryRepo domain.SummaryRepository,
	priceSource domain.PriceSource,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		HoldingRepo: holdingRepo,
		SummaryRepo: summaryRepo,
		PriceSource: priceSource,
		log:         log,
	}
}

// Buy records a purchase of shares of a ticker on a given date.
// Logic: look up the closing price on the purchase date and the latest
// price, fold the purchase into any existing position via the weighted
// average, and replace the holding set. The purchase price, not the
// latest price, enters the cost basis.
func (s *Service) Buy(ctx context.Context, ticker string, purchaseDate time.Time, shares decimal.Decimal) (*domain.Holding, error) {
	ticker = domain.NormalizeTicker(ticker)
	log := s.log.WithFields(logrus.Fields{"action": "buy", "ticker": ticker, "shares": shares})

	purchasePrice, err := s.PriceSource.LookupHistorical(ctx, ticker, purchaseDate)
	if err != nil {
		return nil, s.finish(ctx, fmt.Errorf("failed to look up purchase price for %s: %w", ticker, err))
	}

	currentPrice, err := s.PriceSource.LookupLatest(ctx, ticker)
	if err != nil {
		return nil, s.finish(ctx, fmt.Errorf("failed to look up latest price for %s: %w", ticker, err))
	}

	existing, err := s.HoldingRepo.Find(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding %s: %w", ticker, err)
	}

	updated, err := costbasis.ApplyBuy(existing, shares, purchasePrice)
	if err != nil {
		return nil, s.finish(ctx, err)
	}
	if existing == nil {
		updated.ID = uuid.New()
		updated.Ticker = ticker
	}

	updated.LastKnownPrice = currentPrice
	change, err := costbasis.PercentChange(updated.CostBasis, currentPrice)
	if err != nil {
		return nil, s.finish(ctx, err)
	}
	updated.PercentChange = change

	if err := updated.Validate(); err != nil {
		return nil, s.finish(ctx, fmt.Errorf("%w: %v", domain.ErrInvalidTransaction, err))
	}

	if err := s.saveMerged(ctx, updated); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"purchase_price": purchasePrice,
		"cost_basis":     updated.CostBasis,
	}).Info("buy recorded")

	return updated, s.finish(ctx, nil)
}

// Sell reduces a position by the given share count. The cost basis of
// the remaining shares is unchanged. Selling a ticker the ledger does
// not track, or more shares than owned, fails without mutating state.
func (s *Service) Sell(ctx context.Context, ticker string, shares decimal.Decimal) (*domain.Holding, error) {
	ticker = domain.NormalizeTicker(ticker)
	log := s.log.WithFields(logrus.Fields{"action": "sell", "ticker": ticker, "shares": shares})

	existing, err := s.HoldingRepo.Find(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding %s: %w", ticker, err)
	}
	if existing == nil {
		return nil, s.finish(ctx, fmt.Errorf("%w: %s is not in the ledger and cannot be shorted", domain.ErrNoSuchHolding, ticker))
	}

	updated, err := costbasis.ApplySell(existing, shares)
	if err != nil {
		return nil, s.finish(ctx, err)
	}

	if err := s.saveMerged(ctx, updated); err != nil {
		return nil, err
	}

	if updated.SharesOwned.IsZero() {
		log.Info("position closed and removed from ledger")
	} else {
		log.WithField("remaining", updated.SharesOwned).Info("sell recorded")
	}

	return updated, s.finish(ctx, nil)
}

// Refresh overwrites the last known price of every holding with the
// latest closing price, using one batched lookup, and recomputes each
// percent change. Share counts and cost bases are untouched, so running
// it twice with no price movement is a no-op.
func (s *Service) Refresh(ctx context.Context) ([]*domain.Holding, error) {
	holdings, err := s.HoldingRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	if len(holdings) == 0 {
		return holdings, s.finish(ctx, nil)
	}

	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}

	prices, err := s.PriceSource.LookupLatestBatch(ctx, tickers)
	if err != nil {
		return nil, s.finish(ctx, fmt.Errorf("failed to look up latest prices: %w", err))
	}

	for _, h := range holdings {
		price, ok := prices[h.Ticker]
		if !ok {
			// Equivalent to the price being unavailable for this ticker:
			// keep the previous price rather than failing the whole refresh.
			s.log.WithField("ticker", h.Ticker).Warn("no latest price returned, keeping previous price")
			continue
		}

		change, err := costbasis.PercentChange(h.CostBasis, price)
		if err != nil {
			return nil, s.finish(ctx, err)
		}
		h.LastKnownPrice = price
		h.PercentChange = change
	}

	if err := s.HoldingRepo.SaveAll(ctx, holdings); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}

	s.log.WithField("holdings", len(holdings)).Info("prices refreshed")

	return holdings, s.finish(ctx, nil)
}

// ListHoldings retrieves the current holding set in store order.
func (s *Service) ListHoldings(ctx context.Context) ([]*domain.Holding, error) {
	return s.HoldingRepo.LoadAll(ctx)
}

// GetSummary retrieves the persisted portfolio summary. If no summary
// has been persisted yet, one is computed live from the holdings.
func (s *Service) GetSummary(ctx context.Context) (*domain.PortfolioSummary, error) {
	sum, err := s.SummaryRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if sum != nil {
		return sum, nil
	}

	holdings, err := s.HoldingRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return summary.Recompute(holdings), nil
}

// saveMerged replaces the holding set with the updated holding merged in
// (insert-or-replace by ticker). A position whose shares reached zero is
// pruned rather than kept as a zero-count row.
func (s *Service) saveMerged(ctx context.Context, updated *domain.Holding) error {
	holdings, err := s.HoldingRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load holdings: %w", err)
	}

	merged := make([]*domain.Holding, 0, len(holdings)+1)
	replaced := false
	for _, h := range holdings {
		if h.Ticker == updated.Ticker {
			replaced = true
			if updated.SharesOwned.IsZero() {
				continue
			}
			merged = append(merged, updated)
			continue
		}
		merged = append(merged, h)
	}
	if !replaced && !updated.SharesOwned.IsZero() {
		merged = append(merged, updated)
	}

	if err := s.HoldingRepo.SaveAll(ctx, merged); err != nil {
		return fmt.Errorf("failed to save holdings: %w", err)
	}
	return nil
}

// finish is the unconditional terminal step of every ledger action: it
// recomputes the summary over the current holding set and persists it,
// then returns the action's own outcome. It runs even when the action
// failed with a recoverable error, so summary staleness never outlives
// one action. Only a store failure, which prevents persisting anything,
// takes precedence over the action error.
func (s *Service) finish(ctx context.Context, actionErr error) error {
	holdings, err := s.HoldingRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load holdings for summary: %w", err)
	}

	if err := s.SummaryRepo.Save(ctx, summary.Recompute(holdings)); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return actionErr
}
