// Package catalog loads per-symbol series into a read-only catalog.
package catalog

import (
	"sort"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Catalog holds every successfully loaded series. It is never mutated after New.
type Catalog struct {
	series   map[string]types.Series
	symbols  []string
	envelope types.DateEnvelope
	skipped  []*errors.SymbolError
}

// New builds a catalog from loaded series. Empty series are ignored.
// It fails with ErrCodeNoDataAvailable when nothing remains.
func New(series map[string]types.Series, skipped []*errors.SymbolError) (*Catalog, error) {
	c := &Catalog{
		series:   make(map[string]types.Series, len(series)),
		symbols:  make([]string, 0, len(series)),
		envelope: types.DateEnvelope{},
		skipped:  skipped,
	}

	for symbol, s := range series {
		if len(s) == 0 {
			continue
		}

		c.series[symbol] = s
		c.symbols = append(c.symbols, symbol)

		for _, record := range s {
			c.envelope = c.envelope.Extend(record.Date)
		}
	}

	if len(c.symbols) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataAvailable,
			"no stock data files could be loaded; check that <SYMBOL>.json files exist in the data source")
	}

	sort.Strings(c.symbols)

	sort.Slice(c.skipped, func(i, j int) bool {
		return c.skipped[i].Symbol < c.skipped[j].Symbol
	})

	return c, nil
}

// Symbols returns the available symbols in lexicographic order.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)

	return out
}

// Has reports whether symbol was loaded.
func (c *Catalog) Has(symbol string) bool {
	_, ok := c.series[symbol]

	return ok
}

// Series returns the series of symbol, or nil when it was not loaded.
func (c *Catalog) Series(symbol string) types.Series {
	return c.series[symbol]
}

// Len returns the number of records of symbol, 0 when it was not loaded.
func (c *Catalog) Len(symbol string) int {
	return len(c.series[symbol])
}

// Envelope returns the min and max date over all loaded series.
func (c *Catalog) Envelope() types.DateEnvelope {
	return c.envelope
}

// Skipped returns the reasons symbols were excluded, ordered by symbol.
func (c *Catalog) Skipped() []*errors.SymbolError {
	return c.skipped
}
