package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volodymyr-data/investment-tracker/internal/domain"
	"github.com/volodymyr-data/investment-tracker/internal/usecase/ledger"
)

// In-memory fakes with the same full-replace contract as the postgres
// adapter, so the whole buy/sell/refresh pipeline runs without external
// services.

type memoryHoldingRepo struct {
	holdings []*domain.Holding
}

func (r *memoryHoldingRepo) LoadAll(_ context.Context) ([]*domain.Holding, error) {
	out := make([]*domain.Holding, len(r.holdings))
	for i, h := range r.holdings {
		copied := *h
		out[i] = &copied
	}
	return out, nil
}

func (r *memoryHoldingRepo) Find(_ context.Context, ticker string) (*domain.Holding, error) {
	for _, h := range r.holdings {
		if h.Ticker == ticker {
			copied := *h
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryHoldingRepo) SaveAll(_ context.Context, holdings []*domain.Holding) error {
	replaced := make([]*domain.Holding, len(holdings))
	for i, h := range holdings {
		copied := *h
		replaced[i] = &copied
	}
	r.holdings = replaced
	return nil
}

type memorySummaryRepo struct {
	summary   *domain.PortfolioSummary
	saveCount int
}

func (r *memorySummaryRepo) Load(_ context.Context) (*domain.PortfolioSummary, error) {
	return r.summary, nil
}

func (r *memorySummaryRepo) Save(_ context.Context, summary *domain.PortfolioSummary) error {
	r.summary = summary
	r.saveCount++
	return nil
}

// scriptedPriceSource serves fixed closing prices per ticker and date.
type scriptedPriceSource struct {
	historical map[string]map[string]decimal.Decimal // ticker -> date -> close
	latest     map[string]decimal.Decimal
}

func (p *scriptedPriceSource) LookupHistorical(_ context.Context, ticker string, date time.Time) (decimal.Decimal, error) {
	if prices, ok := p.historical[ticker]; ok {
		if price, ok := prices[date.Format("2006-01-02")]; ok {
			return price, nil
		}
	}
	return decimal.Zero, domain.ErrPriceUnavailable
}

func (p *scriptedPriceSource) LookupLatest(_ context.Context, ticker string) (decimal.Decimal, error) {
	if price, ok := p.latest[ticker]; ok {
		return price, nil
	}
	return decimal.Zero, domain.ErrPriceUnavailable
}

func (p *scriptedPriceSource) LookupLatestBatch(_ context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, t := range tickers {
		if price, ok := p.latest[t]; ok {
			out[t] = price
		}
	}
	return out, nil
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// TestLedgerLifecycle walks one position through its whole life: two
// buys averaging into a single holding, a partial sell, and a price
// refresh, with the summary recomputed after every step.
func TestLedgerLifecycle(t *testing.T) {
	ctx := context.Background()

	prices := &scriptedPriceSource{
		historical: map[string]map[string]decimal.Decimal{
			"AAA": {
				"2026-01-05": dec("100"),
				"2026-02-02": dec("120"),
			},
		},
		latest: map[string]decimal.Decimal{"AAA": dec("120")},
	}
	holdingRepo := &memoryHoldingRepo{}
	summaryRepo := &memorySummaryRepo{}
	svc := ledger.NewService(holdingRepo, summaryRepo, prices, testLogger())

	// Buy 10 shares of AAA at 100 into an empty ledger
	h, err := svc.Buy(ctx, "aaa", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), dec("10"))
	require.NoError(t, err)
	assert.Equal(t, "AAA", h.Ticker)
	assert.True(t, h.SharesOwned.Equal(dec("10")))
	assert.True(t, h.CostBasis.Equal(dec("100")))

	require.NotNil(t, summaryRepo.summary)
	assert.Equal(t, 1, summaryRepo.summary.HoldingCount)
	assert.True(t, summaryRepo.summary.TotalInvested.Equal(dec("1000")))

	// Buy 10 more at 120: basis becomes (10*100 + 10*120)/20 = 110
	h, err = svc.Buy(ctx, "AAA", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), dec("10"))
	require.NoError(t, err)
	assert.True(t, h.SharesOwned.Equal(dec("20")))
	assert.True(t, h.CostBasis.Equal(dec("110")), "expected basis 110, got %s", h.CostBasis)

	// Sell 5: shares drop, basis stays
	h, err = svc.Sell(ctx, "AAA", dec("5"))
	require.NoError(t, err)
	assert.True(t, h.SharesOwned.Equal(dec("15")))
	assert.True(t, h.CostBasis.Equal(dec("110")))

	// The market moves to 132; refresh picks it up
	prices.latest["AAA"] = dec("132")
	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.True(t, refreshed[0].LastKnownPrice.Equal(dec("132")))
	assert.True(t, refreshed[0].PercentChange.Equal(dec("20")),
		"expected +20%%, got %s", refreshed[0].PercentChange)

	// Summary reflects the final state: 15 shares at basis 110
	sum := summaryRepo.summary
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.HoldingCount)
	assert.True(t, sum.TotalInvested.Equal(dec("1650")))
	assert.True(t, sum.TotalShares.Equal(dec("15")))
	assert.True(t, sum.AveragePricePerShare.Equal(dec("110")))
	assert.True(t, sum.OverallPercentGrowth.Equal(dec("20")))

	// One summary write per ledger action
	assert.Equal(t, 4, summaryRepo.saveCount)
}

func TestSellUntrackedTickerLeavesLedgerIntact(t *testing.T) {
	ctx := context.Background()

	prices := &scriptedPriceSource{
		historical: map[string]map[string]decimal.Decimal{
			"AAA": {"2026-01-05": dec("100")},
		},
		latest: map[string]decimal.Decimal{"AAA": dec("100")},
	}
	holdingRepo := &memoryHoldingRepo{}
	summaryRepo := &memorySummaryRepo{}
	svc := ledger.NewService(holdingRepo, summaryRepo, prices, testLogger())

	_, err := svc.Buy(ctx, "AAA", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), dec("10"))
	require.NoError(t, err)
	savesBefore := summaryRepo.saveCount

	// Selling a ticker that was never bought cannot short
	_, err = svc.Sell(ctx, "ZZZ", dec("5"))
	assert.ErrorIs(t, err, domain.ErrNoSuchHolding)

	// Ledger unchanged, summary still recomputed and persisted
	holdings, err := svc.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAA", holdings[0].Ticker)
	assert.True(t, holdings[0].SharesOwned.Equal(dec("10")))
	assert.Equal(t, savesBefore+1, summaryRepo.saveCount)
}

func TestSellEntirePositionPrunesHolding(t *testing.T) {
	ctx := context.Background()

	prices := &scriptedPriceSource{
		historical: map[string]map[string]decimal.Decimal{
			"AAA": {"2026-01-05": dec("100")},
		},
		latest: map[string]decimal.Decimal{"AAA": dec("100")},
	}
	holdingRepo := &memoryHoldingRepo{}
	summaryRepo := &memorySummaryRepo{}
	svc := ledger.NewService(holdingRepo, summaryRepo, prices, testLogger())

	_, err := svc.Buy(ctx, "AAA", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), dec("10"))
	require.NoError(t, err)

	_, err = svc.Sell(ctx, "AAA", dec("10"))
	require.NoError(t, err)

	holdings, err := svc.ListHoldings(ctx)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	// The summary degrades to all zeros without dividing by zero
	sum := summaryRepo.summary
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.HoldingCount)
	assert.True(t, sum.AveragePricePerShare.IsZero())
	assert.True(t, sum.OverallPercentGrowth.IsZero())
}
