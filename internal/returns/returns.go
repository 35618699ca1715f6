// Package returns derives fractional-change tables from a price table.
package returns

import (
	"time"

	"fund-momentum-lab/internal/domain"
)

// TrailingYearMonths is the lookback for the trailing annual return.
const TrailingYearMonths = 12

// Compute derives a return table from prices with the given lag:
// cell[t] = price[t]/price[t-lag] - 1 per column. A cell is missing when
// either operand is missing (absent in, absent out). Rows whose cells are
// all missing are dropped, so an instrument with fewer than lag+1
// observations contributes no rows on its own.
func Compute(prices *domain.Table, lag int) *domain.Table {
	if prices.Empty() || lag < 1 {
		return domain.NewTable(nil, nil)
	}

	nRows := len(prices.Dates)
	nCols := len(prices.Tickers)

	var dates []time.Time
	var rows [][]*float64

	for t := lag; t < nRows; t++ {
		row := make([]*float64, nCols)
		any := false
		for c := 0; c < nCols; c++ {
			cur := prices.At(t, c)
			prev := prices.At(t-lag, c)
			if cur == nil || prev == nil {
				continue
			}
			ret := *cur / *prev - 1
			row[c] = &ret
			any = true
		}
		if !any {
			continue
		}
		dates = append(dates, prices.Dates[t])
		rows = append(rows, row)
	}

	out := domain.NewTable(dates, prices.Tickers)
	out.Cells = rows
	if rows == nil {
		out.Cells = [][]*float64{}
	}
	return out
}

// Monthly is Compute with lag 1.
func Monthly(prices *domain.Table) *domain.Table {
	return Compute(prices, 1)
}

// Trailing is Compute with the trailing annual lag.
func Trailing(prices *domain.Table) *domain.Table {
	return Compute(prices, TrailingYearMonths)
}
