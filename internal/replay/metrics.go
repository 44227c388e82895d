package replay

import (
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/stock-replay/internal/types"
)

// Metrics are the point-in-time figures of one symbol at the cursor.
type Metrics struct {
	Price  float64
	Change float64
	// ChangePercent is 0 on day zero and None when the previous close is 0.
	ChangePercent optional.Option[float64]
	Volume        float64
	Date          string
}

// ComputeMetrics compares the record at cursor with the one before it.
// On day zero there is no previous record, so change and percent are 0 whatever the close.
// It returns None when cursor is outside the series.
func ComputeMetrics(series types.Series, cursor int) optional.Option[Metrics] {
	current, ok := series.At(cursor)
	if !ok {
		return optional.None[Metrics]()
	}

	previous := current
	if cursor > 0 {
		previous = series[cursor-1]
	}

	change := current.Close - previous.Close

	percent := optional.None[float64]()
	switch {
	case cursor == 0:
		percent = optional.Some(0.0)
	case previous.Close != 0:
		percent = optional.Some(change / previous.Close * 100)
	}

	return optional.Some(Metrics{
		Price:         current.Close,
		Change:        change,
		ChangePercent: percent,
		Volume:        current.Volume,
		Date:          current.Date,
	})
}

// SymbolMetrics pairs a symbol with its metrics at the cursor.
type SymbolMetrics struct {
	Symbol  string
	Metrics optional.Option[Metrics]
}

// SelectedMetrics returns the metrics of the first limit selected symbols in selection order.
// A limit of 0 or less means all.
func (s *Session) SelectedMetrics(limit int) []SymbolMetrics {
	symbols := s.selection
	if limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}

	out := make([]SymbolMetrics, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, SymbolMetrics{
			Symbol:  symbol,
			Metrics: ComputeMetrics(s.catalog.Series(symbol), s.cursor),
		})
	}

	return out
}
