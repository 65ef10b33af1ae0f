package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

// summaryRepository implements domain.SummaryRepository
type summaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) domain.SummaryRepository {
	return &summaryRepository{db: db}
}

// Load retrieves the persisted summary, or (nil, nil) when none has been
// written yet.
func (r *summaryRepository) Load(ctx context.Context) (*domain.PortfolioSummary, error) {
	query := `
		SELECT holding_count, total_invested, total_shares, average_price_per_share, overall_percent_growth, updated_at
		FROM portfolio_summary
		WHERE id = 1
	`

	var s domain.PortfolioSummary
	var investedStr, sharesStr, avgStr, growthStr string

	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.HoldingCount,
		&investedStr,
		&sharesStr,
		&avgStr,
		&growthStr,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("failed to load summary", err)
	}

	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{investedStr, &s.TotalInvested},
		{sharesStr, &s.TotalShares},
		{avgStr, &s.AveragePricePerShare},
		{growthStr, &s.OverallPercentGrowth},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, storeErr("failed to parse decimal column", err)
		}
		*field.dest = d
	}

	return &s, nil
}

// Save atomically replaces the singleton summary row.
func (r *summaryRepository) Save(ctx context.Context, summary *domain.PortfolioSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_summary`); err != nil {
		return storeErr("failed to clear summary", err)
	}

	query := `
		INSERT INTO portfolio_summary (id, holding_count, total_invested, total_shares, average_price_per_share, overall_percent_growth, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		summary.HoldingCount,
		summary.TotalInvested.String(),
		summary.TotalShares.String(),
		summary.AveragePricePerShare.String(),
		summary.OverallPercentGrowth.String(),
		summary.UpdatedAt,
	)
	if err != nil {
		return storeErr("failed to insert summary", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit summary", err)
	}
	return nil
}
