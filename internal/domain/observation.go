package domain

import "time"

// PriceObservation is one monthly adjusted closing price for one instrument.
// Corresponds to price_observations table in ClickHouse.
type PriceObservation struct {
	Ticker   string    // instrument identifier, e.g. "ISF.L"
	Date     time.Time // month bucket, UTC midnight
	AdjClose float64   // dividend/split-adjusted close (falls back to close)
}
