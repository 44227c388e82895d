package main

import (
	"time"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// exportCatalog writes every record of every loaded symbol to w and returns the output path.
func exportCatalog(c *catalog.Catalog, w writer.MarketDataWriter) (outputPath string, err error) {
	if err := w.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", closeErr)
		}
	}()

	for _, symbol := range c.Symbols() {
		for _, record := range c.Series(symbol) {
			day, err := time.Parse(types.DateLayout, record.Date)
			if err != nil {
				return "", errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid date %q for %s", record.Date, symbol)
			}

			bar := types.MarketData{
				Symbol: symbol,
				Time:   day,
				Open:   record.Open,
				High:   record.High,
				Low:    record.Low,
				Close:  record.Close,
				Volume: record.Volume,
			}

			if err := w.Write(bar); err != nil {
				return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write %s %s", symbol, record.Date)
			}
		}
	}

	outputPath, err = w.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize export", err)
	}

	return outputPath, nil
}
