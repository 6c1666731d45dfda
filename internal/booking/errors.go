package booking

import "errors"

var (
	// ErrDataUnavailable means an upstream rule or pricing source could
	// not be fetched. Callers must surface degraded availability, never
	// assume "nothing is blocked".
	ErrDataUnavailable = errors.New("availability data unavailable")

	// ErrNotReady means the catalog snapshot has not completed its first
	// load; resolution must not run against partial data.
	ErrNotReady = errors.New("catalog not ready")

	// ErrDateBlocked and ErrTimeBlocked reject a selection invalidated
	// by the current rule set.
	ErrDateBlocked = errors.New("selected date is not bookable")
	ErrTimeBlocked = errors.New("selected time is not bookable")

	// ErrIncompletePricingData is fatal to quote generation: missing
	// pricing inputs must block checkout rather than undercharge.
	ErrIncompletePricingData = errors.New("incomplete pricing data")

	// ErrInvalidQuantity rejects a bad add-on or guest input; the caller
	// can re-prompt and retry.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
