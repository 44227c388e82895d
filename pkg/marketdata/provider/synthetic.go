package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// SyntheticConfig shapes the generated price path.
type SyntheticConfig struct {
	// InitialPrice is the close of the day before startDate.
	InitialPrice float64
	// Volatility is the daily standard deviation of returns (0.02 = 2%).
	Volatility float64
	// Drift is the mean daily return.
	Drift float64
	// VolumeBase is the average daily volume.
	VolumeBase float64
	// VolumeVariance is the relative volume spread (0.0 to 1.0).
	VolumeVariance float64
}

// DefaultSyntheticConfig returns a config resembling a large-cap stock.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		InitialPrice:   100.0,
		Volatility:     0.018,
		Drift:          0.0003,
		VolumeBase:     25_000_000,
		VolumeVariance: 0.4,
	}
}

// SyntheticClient generates weekday bars with a geometric Brownian motion.
// The path of a ticker is seeded from its name, so repeated downloads are identical.
// It serves offline demos and tests where no market data API is reachable.
type SyntheticClient struct {
	config SyntheticConfig
	writer writer.MarketDataWriter
}

// NewSyntheticClient creates a SyntheticClient with DefaultSyntheticConfig.
func NewSyntheticClient() *SyntheticClient {
	return NewSyntheticClientWithConfig(DefaultSyntheticConfig())
}

// NewSyntheticClientWithConfig creates a SyntheticClient with a custom config.
func NewSyntheticClientWithConfig(config SyntheticConfig) *SyntheticClient {
	return &SyntheticClient{config: config}
}

func (c *SyntheticClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *SyntheticClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (string, error) {
	return writeAll(c.writer, func() error {
		bars := c.Generate(ticker, startDate, endDate)

		for i, bar := range bars {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "synthetic download cancelled", err)
			}

			if err := c.writer.Write(bar); err != nil {
				return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write data", err)
			}

			reportProgress(onProgress, float64(i+1), float64(len(bars)), fmt.Sprintf("Generating %s", ticker))
		}

		return nil
	})
}

// Generate returns the bars of ticker for every weekday in [startDate, endDate].
func (c *SyntheticClient) Generate(ticker string, startDate time.Time, endDate time.Time) []types.MarketData {
	rng := rand.New(rand.NewSource(tickerSeed(ticker)))
	cfg := c.config

	// spread initial prices so tickers do not overlap on the chart
	price := cfg.InitialPrice * (0.5 + rng.Float64()*1.5)

	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)

	var bars []types.MarketData

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		open := price

		// Box-Muller transform for a standard normal sample
		u1 := 1 - rng.Float64()
		u2 := rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + cfg.Drift + cfg.Volatility*z)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(rng.Float64()*cfg.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(rng.Float64()*cfg.Volatility*open*0.5)

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := cfg.VolumeBase * (1.0 + (rng.Float64()*2-1)*cfg.VolumeVariance)
		if volume < 0 {
			volume = cfg.VolumeBase * 0.1
		}

		bars = append(bars, types.MarketData{
			Symbol: ticker,
			Time:   day,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(closePrice, 4),
			Volume: math.Round(volume),
		})

		price = closePrice
	}

	return bars
}

func tickerSeed(ticker string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))

	return int64(h.Sum64())
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
