package summary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}

func TestRecompute_EmptyHoldingSet(t *testing.T) {
	// No division-by-zero may propagate: all fields come out zero
	s := Recompute(nil)

	assert.Equal(t, 0, s.HoldingCount)
	assert.True(t, s.TotalInvested.IsZero())
	assert.True(t, s.TotalShares.IsZero())
	assert.True(t, s.AveragePricePerShare.IsZero())
	assert.True(t, s.OverallPercentGrowth.IsZero())
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestRecompute_SingleHolding(t *testing.T) {
	holdings := []*domain.Holding{
		{
			Ticker:         "AAA",
			SharesOwned:    dec("15"),
			CostBasis:      dec("110"),
			LastKnownPrice: dec("132"),
		},
	}

	s := Recompute(holdings)

	assert.Equal(t, 1, s.HoldingCount)
	assertDecimal(t, dec("1650"), s.TotalInvested)
	assertDecimal(t, dec("15"), s.TotalShares)
	assertDecimal(t, dec("110"), s.AveragePricePerShare)
	assertDecimal(t, dec("20"), s.OverallPercentGrowth)
}

func TestRecompute_MultipleHoldings(t *testing.T) {
	holdings := []*domain.Holding{
		{
			Ticker:         "AAA",
			SharesOwned:    dec("10"),
			CostBasis:      dec("100"),
			LastKnownPrice: dec("110"),
		},
		{
			Ticker:         "BBB",
			SharesOwned:    dec("20"),
			CostBasis:      dec("50"),
			LastKnownPrice: dec("45"),
		},
	}

	s := Recompute(holdings)

	assert.Equal(t, 2, s.HoldingCount)
	// 10*100 + 20*50
	assertDecimal(t, dec("2000"), s.TotalInvested)
	assertDecimal(t, dec("30"), s.TotalShares)
	assertDecimal(t, dec("2000").Div(dec("30")), s.AveragePricePerShare)
}

func TestRecompute_GrowthIsAggregatedNotAveraged(t *testing.T) {
	// AAA grew 10% (+10 on 100), BBB fell 10% (-5 on 50). The average of
	// the per-holding percentages would be 0; the aggregate growth is
	// (10 - 5) / (100 + 50) * 100 = 3.33...%
	holdings := []*domain.Holding{
		{
			Ticker:         "AAA",
			SharesOwned:    dec("1"),
			CostBasis:      dec("100"),
			LastKnownPrice: dec("110"),
		},
		{
			Ticker:         "BBB",
			SharesOwned:    dec("1"),
			CostBasis:      dec("50"),
			LastKnownPrice: dec("45"),
		},
	}

	s := Recompute(holdings)

	expected := dec("5").Div(dec("150")).Mul(dec("100"))
	assertDecimal(t, expected, s.OverallPercentGrowth)
	assert.False(t, s.OverallPercentGrowth.IsZero())
}
