package main

import (
	"math"
	"time"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/marketdata/stub"
)

// fixtureObservations builds six years of deterministic monthly prices for
// every ticker. Each instrument gets its own drift plus a phase-shifted
// wobble so tertile membership keeps changing from month to month, which
// exercises the transition table.
func fixtureObservations(tickers []string, start time.Time) []domain.PriceObservation {
	const months = 72

	var obs []domain.PriceObservation
	for i, ticker := range tickers {
		drift := 0.002 + 0.001*float64(i)
		prices := make([]float64, months)
		price := 100.0
		for m := 0; m < months; m++ {
			prices[m] = price
			wobble := 0.03 * math.Sin(float64(m+i*2)/3.0)
			price *= 1 + drift + wobble
		}
		obs = append(obs, stub.MonthlySeries(ticker, start, prices)...)
	}
	return obs
}
