package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// storeErr maps a driver failure onto the ledger's fatal store error.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

// LoadAll retrieves every holding in store insertion order.
func (r *holdingRepository) LoadAll(ctx context.Context) ([]*domain.Holding, error) {
	query := `
		SELECT id, ticker, shares_owned, cost_basis, last_price, percent_change
		FROM my_investments
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("failed to query holdings", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate holdings", err)
	}

	return holdings, nil
}

// Find retrieves a holding by its normalized ticker, or (nil, nil) when
// the ticker is not tracked.
func (r *holdingRepository) Find(ctx context.Context, ticker string) (*domain.Holding, error) {
	query := `
		SELECT id, ticker, shares_owned, cost_basis, last_price, percent_change
		FROM my_investments
		WHERE ticker = $1
	`

	h, err := scanHolding(r.db.QueryRowContext(ctx, query, ticker))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// SaveAll atomically replaces the entire holding set. The delete and the
// inserts share one transaction, so a concurrent reader sees either the
// previous set or the new one, never a partial write.
func (r *holdingRepository) SaveAll(ctx context.Context, holdings []*domain.Holding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM my_investments`); err != nil {
		return storeErr("failed to clear holdings", err)
	}

	query := `
		INSERT INTO my_investments (id, ticker, shares_owned, cost_basis, last_price, percent_change, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, h := range holdings {
		_, err := tx.ExecContext(ctx, query,
			h.ID,
			h.Ticker,
			h.SharesOwned.String(),
			h.CostBasis.String(),
			h.LastKnownPrice.String(),
			h.PercentChange.String(),
			i,
		)
		if err != nil {
			return storeErr(fmt.Sprintf("failed to insert holding %s", h.Ticker), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit holdings", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHolding(row scanner) (*domain.Holding, error) {
	var h domain.Holding
	var sharesStr, basisStr, priceStr, changeStr string

	err := row.Scan(
		&h.ID,
		&h.Ticker,
		&sharesStr,
		&basisStr,
		&priceStr,
		&changeStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeErr("failed to scan holding", err)
	}

	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{sharesStr, &h.SharesOwned},
		{basisStr, &h.CostBasis},
		{priceStr, &h.LastKnownPrice},
		{changeStr, &h.PercentChange},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, storeErr("failed to parse decimal column", err)
		}
		*field.dest = d
	}

	return &h, nil
}
