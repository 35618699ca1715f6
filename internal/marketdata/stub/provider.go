// Package stub provides a fixed in-memory price provider for tests and
// offline fixture runs.
package stub

import (
	"context"
	"time"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/marketdata"
)

// Provider returns pre-seeded observations. Implements marketdata.Provider.
type Provider struct {
	series map[string][]domain.PriceObservation
	errs   map[string]error
}

// NewProvider creates a stub provider over the given observations.
func NewProvider(obs []domain.PriceObservation) *Provider {
	p := &Provider{
		series: make(map[string][]domain.PriceObservation),
		errs:   make(map[string]error),
	}
	for _, o := range obs {
		p.series[o.Ticker] = append(p.series[o.Ticker], o)
	}
	return p
}

// FailTicker makes fetches for ticker return err.
func (p *Provider) FailTicker(ticker string, err error) {
	p.errs[ticker] = err
}

// FetchMonthly returns seeded observations within [from, to).
// Returns copies to prevent mutation.
func (p *Provider) FetchMonthly(_ context.Context, ticker string, from, to time.Time) ([]domain.PriceObservation, error) {
	if err := p.errs[ticker]; err != nil {
		return nil, err
	}

	var result []domain.PriceObservation
	for _, o := range p.series[ticker] {
		if !o.Date.Before(from) && o.Date.Before(to) {
			result = append(result, o)
		}
	}
	if len(result) == 0 {
		return nil, marketdata.ErrNoData
	}
	return result, nil
}

var _ marketdata.Provider = (*Provider)(nil)

// MonthlySeries builds observations for ticker starting at start, one per
// month, from the given prices. Convenience for fixtures.
func MonthlySeries(ticker string, start time.Time, prices []float64) []domain.PriceObservation {
	obs := make([]domain.PriceObservation, len(prices))
	for i, price := range prices {
		obs[i] = domain.PriceObservation{
			Ticker:   ticker,
			Date:     start.AddDate(0, i, 0),
			AdjClose: price,
		}
	}
	return obs
}
