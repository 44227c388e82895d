package provider

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	return m.aggs[m.index-1]
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) newClient(api PolygonAPIClient, w *mockWriter) *PolygonClient {
	client := NewPolygonClientWithAPI(api)
	client.SetProgressOutput(io.Discard)

	if w != nil {
		client.ConfigWriter(w)
	}

	return client
}

func (suite *PolygonClientTestSuite) agg(day int, closePrice float64) models.Agg {
	return models.Agg{
		Open:      closePrice - 1,
		High:      closePrice + 1,
		Low:       closePrice - 2,
		Close:     closePrice,
		Volume:    1_000_000,
		Timestamp: models.Millis(time.Date(2024, 1, day, 5, 0, 0, 0, time.UTC)),
	}
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient() {
	client, err := NewPolygonClient("test-api-key")
	suite.NoError(err)

	polygonClient, ok := client.(*PolygonClient)
	suite.Require().True(ok)
	suite.NotNil(polygonClient.apiClient)
	suite.Nil(polygonClient.writer)
}

func (suite *PolygonClientTestSuite) TestNewPolygonClientEmptyApiKey() {
	client, err := NewPolygonClient("")
	suite.Error(err)
	suite.Nil(client)
}

func (suite *PolygonClientTestSuite) TestDownloadWithoutWriter() {
	client := suite.newClient(&mockPolygonAPIClient{}, nil)

	_, err := client.Download(context.Background(), "AAPL", suite.start, suite.end, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "no writer configured")
}

func (suite *PolygonClientTestSuite) TestDownloadSuccess() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{
		suite.agg(2, 185.64),
		suite.agg(3, 184.25),
	}}}
	w := &mockWriter{outputPath: "data/AAPL.json"}
	client := suite.newClient(api, w)

	var progressCalls int

	path, err := client.Download(context.Background(), "AAPL", suite.start, suite.end, func(current, total float64, _ string) {
		progressCalls++
		suite.LessOrEqual(current, total)
	})
	suite.Require().NoError(err)
	suite.Equal("data/AAPL.json", path)
	suite.Equal(2, progressCalls)

	suite.Require().Len(w.writtenData, 2)
	suite.Equal("AAPL", w.writtenData[0].Symbol)
	suite.Equal(185.64, w.writtenData[0].Close)
	suite.InDelta(184.64, w.writtenData[0].Open, 1e-9)
	suite.Equal("2024-01-03", w.writtenData[1].Time.UTC().Format("2006-01-02"))

	suite.Require().NotNil(api.lastParams)
	suite.Equal(models.Day, api.lastParams.Timespan)
	suite.Equal(1, api.lastParams.Multiplier)
	suite.Equal("AAPL", api.lastParams.Ticker)
}

func (suite *PolygonClientTestSuite) TestDownloadNoBars() {
	w := &mockWriter{}
	client := suite.newClient(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}}, w)

	_, err := client.Download(context.Background(), "ZZZZ", suite.start, suite.end, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Equal(0, w.finalizeCallCount)
	suite.Equal(1, w.closeCallCount)
}

func (suite *PolygonClientTestSuite) TestDownloadIteratorError() {
	iterErr := errors.New(errors.ErrCodeUnknown, "rate limited")
	w := &mockWriter{}
	client := suite.newClient(&mockPolygonAPIClient{iterator: &mockPolygonIterator{
		aggs: []models.Agg{suite.agg(2, 10)},
		err:  iterErr,
	}}, w)

	_, err := client.Download(context.Background(), "AAPL", suite.start, suite.end, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.ErrorIs(err, iterErr)
}

func (suite *PolygonClientTestSuite) TestDownloadWriteError() {
	w := &mockWriter{writeErr: errors.New(errors.ErrCodeUnknown, "write failed"), writeErrAfterN: 1}
	client := suite.newClient(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{
		suite.agg(2, 10), suite.agg(3, 11), suite.agg(4, 12),
	}}}, w)

	_, err := client.Download(context.Background(), "AAPL", suite.start, suite.end, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
	suite.Len(w.writtenData, 1)
	suite.Equal(0, w.finalizeCallCount)
}

func (suite *PolygonClientTestSuite) TestDownloadFinalizeError() {
	w := &mockWriter{finalizeErr: errors.New(errors.ErrCodeUnknown, "finalize failed")}
	client := suite.newClient(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{suite.agg(2, 10)}}}, w)

	_, err := client.Download(context.Background(), "AAPL", suite.start, suite.end, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to finalize writer")
}
