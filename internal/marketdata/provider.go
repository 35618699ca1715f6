// Package marketdata provides access to historical instrument prices.
package marketdata

import (
	"context"
	"errors"
	"time"

	"fund-momentum-lab/internal/domain"
)

// ErrNoData is returned when a provider has no observations for an
// instrument in the requested range. Callers treat it as a recoverable
// per-instrument condition, not a run failure.
var ErrNoData = errors.New("no price data for instrument")

// Provider fetches the monthly price history of a single instrument.
type Provider interface {
	// FetchMonthly returns monthly observations within [from, to), ordered
	// by date ascending, one observation per calendar month. The provider
	// normalizes prices to "adjusted close, else close" so the analysis
	// core never branches on provider-specific shapes.
	FetchMonthly(ctx context.Context, ticker string, from, to time.Time) ([]domain.PriceObservation, error)
}
