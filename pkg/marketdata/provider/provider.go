package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon   ProviderType = "polygon"
	ProviderBinance   ProviderType = "binance"
	ProviderSynthetic ProviderType = "synthetic"
)

// OnDownloadProgress reports download progress. It may be nil.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads daily bars for one ticker at a time into a configured writer.
type Provider interface {
	// ConfigWriter configures the writer the next Download writes to.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download fetches daily bars of ticker between startDate and endDate inclusive
	// and returns the path the writer produced.
	// The context can be used to cancel the download operation.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// Polygon expects its API key as config; the other providers ignore config.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	case ProviderSynthetic:
		return NewSyntheticClient(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}

// writeAll runs the writer lifecycle around produce: Initialize, produce, Finalize, Close.
func writeAll(w writer.MarketDataWriter, produce func() error) (path string, err error) {
	if w == nil {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "no writer configured, call ConfigWriter first")
	}

	if err = w.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", cerr)
		}
	}()

	if err = produce(); err != nil {
		return "", err
	}

	path, err = w.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return path, nil
}
