package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/provider"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	// WriterJSON writes one <TICKER>.json payload per ticker, the format the replay dashboard loads.
	WriterJSON WriterType = "json"
	// WriterDuckDB writes one Parquet file per ticker.
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance synthetic"`
	WriterType    WriterType            `validate:"required,oneof=json duckdb"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// DownloadResult is the outcome of one ticker of a batch download.
type DownloadResult struct {
	Ticker string
	Path   string
	Err    error
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var providerConfig any
	if config.ProviderType == provider.ProviderPolygon {
		providerConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", config.ProviderType, err)
	}

	return newClient(config, marketProvider, validate, onProgress, log), nil
}

// NewClientWithProvider creates a client on top of an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	return newClient(config, marketProvider, validate, onProgress, log), nil
}

func newClient(config ClientConfig, marketProvider provider.Provider, validate *validator.Validate, onProgress provider.OnDownloadProgress, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		log:        log,
	}
}

// Download downloads one ticker and returns the written file path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	c.provider.ConfigWriter(marketWriter)

	path, err := c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, c.onProgress)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download of %s failed", params.Ticker)
	}

	return path, nil
}

// DownloadAll downloads tickers one after another. A failing ticker is logged and
// recorded in its result; the batch continues unless ctx is cancelled.
func (c *Client) DownloadAll(ctx context.Context, tickers []string, startDate, endDate time.Time) []DownloadResult {
	results := make([]DownloadResult, 0, len(tickers))

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			results = append(results, DownloadResult{Ticker: ticker, Err: err})

			continue
		}

		path, err := c.Download(ctx, DownloadParams{Ticker: ticker, StartDate: startDate, EndDate: endDate})
		if err != nil {
			c.log.Warn("Download failed", zap.String("ticker", ticker), zap.Error(err))
		} else {
			c.log.Info("Downloaded", zap.String("ticker", ticker), zap.String("path", path))
		}

		results = append(results, DownloadResult{Ticker: ticker, Path: path, Err: err})
	}

	return results
}

// setupWriter creates the writer configured for params.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
	}

	switch c.config.WriterType {
	case WriterJSON:
		return writer.NewJSONWriter(filepath.Join(c.config.DataPath, params.Ticker+".json"), params.Ticker), nil
	case WriterDuckDB:
		// TICKER_START_END.parquet
		outputFileName := fmt.Sprintf("%s_%s_%s.parquet",
			params.Ticker,
			params.StartDate.Format(types.DateLayout),
			params.EndDate.Format(types.DateLayout))

		return writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, outputFileName)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
