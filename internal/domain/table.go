package domain

import "time"

// Table is a date-by-instrument matrix of optional values.
// Rows are keyed by a strictly increasing monthly date index, columns by
// ticker in a stable configured order. A nil cell marks a missing
// observation; every derivation over a Table propagates nil cells
// (absent in, absent out) rather than erroring.
type Table struct {
	Dates   []time.Time  // row index, strictly increasing, UTC midnight
	Tickers []string     // column index, stable order
	Cells   [][]*float64 // Cells[row][col], nil = missing

	colIndex map[string]int
}

// NewTable creates a Table with the given indexes and all cells missing.
func NewTable(dates []time.Time, tickers []string) *Table {
	cells := make([][]*float64, len(dates))
	for i := range cells {
		cells[i] = make([]*float64, len(tickers))
	}
	return &Table{
		Dates:   dates,
		Tickers: tickers,
		Cells:   cells,
		colIndex: func() map[string]int {
			m := make(map[string]int, len(tickers))
			for i, t := range tickers {
				m[t] = i
			}
			return m
		}(),
	}
}

// At returns the cell at (row, col). Nil means missing.
func (t *Table) At(row, col int) *float64 {
	return t.Cells[row][col]
}

// Set stores a value at (row, col).
func (t *Table) Set(row, col int, v float64) {
	t.Cells[row][col] = &v
}

// ColumnIndex returns the column position of ticker, or -1 if absent.
func (t *Table) ColumnIndex(ticker string) int {
	if t.colIndex == nil {
		t.colIndex = make(map[string]int, len(t.Tickers))
		for i, tk := range t.Tickers {
			t.colIndex[tk] = i
		}
	}
	if i, ok := t.colIndex[ticker]; ok {
		return i
	}
	return -1
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || len(t.Dates) == 0 || len(t.Tickers) == 0
}

// RowAllMissing reports whether every cell in row is nil.
func (t *Table) RowAllMissing(row int) bool {
	for _, c := range t.Cells[row] {
		if c != nil {
			return false
		}
	}
	return true
}
