package provider

import (
	"context"
	"strconv"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
// Each Do call returns the next page; calls beyond the pages return nothing.
type mockBinanceAPIClient struct {
	pages     [][]*binance.Kline
	errs      []error
	callCount int
	requests  []mockBinanceKlinesService
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

type mockBinanceKlinesService struct {
	client   *mockBinanceAPIClient
	symbol   string
	interval string
	start    int64
	end      int64
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.symbol = symbol

	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.interval = interval

	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.start = startTime

	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.end = endTime

	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++
	m.client.requests = append(m.client.requests, *m)

	var err error
	if idx < len(m.client.errs) {
		err = m.client.errs[idx]
	}

	if idx < len(m.client.pages) {
		return m.client.pages[idx], err
	}

	return nil, err
}

func dailyKlines(start time.Time, n int) []*binance.Kline {
	klines := make([]*binance.Kline, n)

	for i := 0; i < n; i++ {
		open := start.AddDate(0, 0, i)
		price := strconv.FormatFloat(40000+float64(i), 'f', 2, 64)
		klines[i] = &binance.Kline{
			OpenTime:  open.UnixMilli(),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    "12.5",
			CloseTime: open.Add(24*time.Hour - time.Millisecond).UnixMilli(),
		}
	}

	return klines
}

type BinanceClientTestSuite struct {
	suite.Suite
	start time.Time
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.start = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient()
	suite.NoError(err)

	binanceClient, ok := client.(*BinanceClient)
	suite.Require().True(ok)
	suite.NotNil(binanceClient.apiClient)
}

func (suite *BinanceClientTestSuite) TestDownloadWithoutWriter() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.start.AddDate(0, 0, 5), nil)
	suite.Error(err)
}

func (suite *BinanceClientTestSuite) TestDownloadSinglePage() {
	api := &mockBinanceAPIClient{pages: [][]*binance.Kline{dailyKlines(suite.start, 3)}}
	w := &mockWriter{outputPath: "data/BTCUSDT.json"}
	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	path, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.start.AddDate(0, 0, 3), nil)
	suite.Require().NoError(err)
	suite.Equal("data/BTCUSDT.json", path)
	suite.Equal(1, api.callCount)
	suite.Equal("1d", api.requests[0].interval)
	suite.Equal("BTCUSDT", api.requests[0].symbol)

	suite.Require().Len(w.writtenData, 3)
	suite.Equal(40000.0, w.writtenData[0].Close)
	suite.Equal(12.5, w.writtenData[0].Volume)
	suite.Equal(suite.start, w.writtenData[0].Time)
}

func (suite *BinanceClientTestSuite) TestDownloadPagination() {
	first := dailyKlines(suite.start, binancePageSize)
	second := dailyKlines(suite.start.AddDate(0, 0, binancePageSize), 10)
	api := &mockBinanceAPIClient{pages: [][]*binance.Kline{first, second}}
	w := &mockWriter{}
	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	end := suite.start.AddDate(3, 0, 0)
	_, err := client.Download(context.Background(), "ETHUSDT", suite.start, end, nil)
	suite.Require().NoError(err)
	suite.Equal(2, api.callCount)
	suite.Equal(first[len(first)-1].CloseTime+1, api.requests[1].start)
	suite.Len(w.writtenData, binancePageSize+10)
}

func (suite *BinanceClientTestSuite) TestDownloadStopsAtEndTime() {
	pageEnd := suite.start.AddDate(0, 0, binancePageSize)
	api := &mockBinanceAPIClient{pages: [][]*binance.Kline{dailyKlines(suite.start, binancePageSize)}}
	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(&mockWriter{})

	_, err := client.Download(context.Background(), "ETHUSDT", suite.start, pageEnd.Add(-time.Hour), nil)
	suite.Require().NoError(err)
	suite.Equal(1, api.callCount)
}

func (suite *BinanceClientTestSuite) TestDownloadAPIError() {
	apiErr := errors.New(errors.ErrCodeUnknown, "invalid symbol")
	w := &mockWriter{}
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{errs: []error{apiErr}})
	client.ConfigWriter(w)

	_, err := client.Download(context.Background(), "NOPE", suite.start, suite.start.AddDate(0, 1, 0), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.ErrorIs(err, apiErr)
	suite.Equal(0, w.finalizeCallCount)
	suite.Equal(1, w.closeCallCount)
}

func (suite *BinanceClientTestSuite) TestProcessKlinesInvalidNumber() {
	klines := dailyKlines(suite.start, 1)
	klines[0].Close = "not-a-number"

	err := processKlines(&mockWriter{}, "BTCUSDT", klines)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestProcessKlinesWriteError() {
	err := processKlines(&mockWriter{writeErr: errors.New(errors.ErrCodeUnknown, "disk")}, "BTCUSDT", dailyKlines(suite.start, 2))
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}

func (suite *BinanceClientTestSuite) TestProgressCallback() {
	api := &mockBinanceAPIClient{pages: [][]*binance.Kline{dailyKlines(suite.start, 2)}}
	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(&mockWriter{})

	var messages []string

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.start.AddDate(0, 0, 2), func(_, _ float64, message string) {
		messages = append(messages, message)
	})
	suite.Require().NoError(err)
	suite.Equal([]string{"Downloading BTCUSDT klines from Binance"}, messages)
}
