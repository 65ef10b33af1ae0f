package postgres

import (
	"context"
	"fmt"
)

// The store holds two independent collections: the holding rows and the
// singleton summary row. Both are only ever read and rewritten in full.
const schema = `
CREATE TABLE IF NOT EXISTS my_investments (
    id             UUID PRIMARY KEY,
    ticker         TEXT NOT NULL UNIQUE,
    shares_owned   DECIMAL NOT NULL,
    cost_basis     DECIMAL NOT NULL,
    last_price     DECIMAL NOT NULL,
    percent_change DECIMAL NOT NULL,
    position       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio_summary (
    id                      SMALLINT PRIMARY KEY CHECK (id = 1),
    holding_count           INTEGER NOT NULL,
    total_invested          DECIMAL NOT NULL,
    total_shares            DECIMAL NOT NULL,
    average_price_per_share DECIMAL NOT NULL,
    overall_percent_growth  DECIMAL NOT NULL,
    updated_at              TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the store's tables if they do not exist yet.
// Idempotent, so it runs unconditionally on startup.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
