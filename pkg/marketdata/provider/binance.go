package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// binancePageSize is the default number of klines Binance returns per request.
const binancePageSize = 500

// BinanceKlinesService is the subset of the klines request builder the client uses.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client the client uses.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (s *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient downloads daily klines from the public Binance API.
type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.MarketDataWriter
}

// NewBinanceClient creates a BinanceClient. Public market data needs no credentials.
func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a BinanceClient on top of an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download pages through "1d" klines until the end date or a short page is reached.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (string, error) {
	return writeAll(c.writer, func() error {
		startMillis := startDate.UnixMilli()
		endMillis := endDate.UnixMilli()
		current := startMillis

		for {
			klines, err := c.apiClient.NewKlinesService().
				Symbol(ticker).
				Interval("1d").
				StartTime(current).
				EndTime(endMillis).
				Do(ctx)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", ticker)
			}

			if err := processKlines(c.writer, ticker, klines); err != nil {
				return err
			}

			reportProgress(onProgress, float64(current-startMillis), float64(endMillis-startMillis),
				fmt.Sprintf("Downloading %s klines from Binance", ticker))

			if len(klines) < binancePageSize {
				return nil
			}

			// next page starts right after the close of the last kline
			current = klines[len(klines)-1].CloseTime + 1
			if current >= endMillis {
				return nil
			}
		}
	})
}

// processKlines converts Binance klines to MarketData and writes them.
func processKlines(w writer.MarketDataWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		values, err := parseKlineValues(k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline for %s at %d", ticker, k.OpenTime)
		}

		err = w.Write(types.MarketData{
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write market data", err)
		}
	}

	return nil
}

func parseKlineValues(fields ...string) ([]float64, error) {
	values := make([]float64, len(fields))

	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}
