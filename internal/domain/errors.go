package domain

import "errors"

// Ledger error taxonomy. All are matched with errors.Is; adapters and
// use cases wrap them with context using fmt.Errorf and %w.
var (
	// ErrInvalidTransaction is returned for a buy or sell with a
	// non-positive share count or price.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInsufficientShares is returned when a sell exceeds the shares
	// owned. Selling more than owned is illegal, not a short position.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrNoSuchHolding is returned for a sell or lookup on a ticker the
	// ledger does not track.
	ErrNoSuchHolding = errors.New("no such holding")

	// ErrPriceUnavailable is returned when the price source has no data
	// for the requested ticker and date window.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrDivisionUndefined is returned when a percent change is requested
	// against a zero cost basis.
	ErrDivisionUndefined = errors.New("division undefined")

	// ErrStoreUnavailable wraps repository I/O failures. Unlike the
	// errors above it is fatal for the action: no mutation is committed
	// and no partial state is observable.
	ErrStoreUnavailable = errors.New("store unavailable")
)
