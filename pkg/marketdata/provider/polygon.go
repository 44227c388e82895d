package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator the client uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client the client uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIAdapter struct {
	client *polygon.Client
}

func (a *polygonAPIAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonClient downloads daily aggregates from Polygon.io.
type PolygonClient struct {
	apiClient   PolygonAPIClient
	writer      writer.MarketDataWriter
	progressOut io.Writer
}

// NewPolygonClient creates a PolygonClient authenticated with apiKey.
func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonAPIAdapter{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient:   apiClient,
		writer:      nil,
		progressOut: os.Stderr,
	}
}

// SetProgressOutput redirects the terminal progress bar.
func (c *PolygonClient) SetProgressOutput(w io.Writer) {
	c.progressOut = w
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (string, error) {
	return writeAll(c.writer, func() error {
		totalDays := int(endDate.Sub(startDate).Hours()/24) + 1

		bar := progressbar.NewOptions(totalDays,
			progressbar.OptionSetWriter(c.progressOut),
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
			progressbar.OptionShowCount(),
		)

		//nolint:exhaustruct // third-party struct with many optional fields
		params := models.ListAggsParams{
			Ticker:     ticker,
			Multiplier: 1,
			Timespan:   models.Day,
			From:       models.Millis(startDate),
			To:         models.Millis(endDate),
		}.WithAdjusted(true).WithLimit(50000)

		iter := c.apiClient.ListAggs(ctx, params)

		count := 0

		for iter.Next() {
			agg := iter.Item()
			barTime := time.Time(agg.Timestamp)

			err := c.writer.Write(types.MarketData{
				Symbol: ticker,
				Time:   barTime,
				Open:   agg.Open,
				High:   agg.High,
				Low:    agg.Low,
				Close:  agg.Close,
				Volume: agg.Volume,
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write data", err)
			}

			count++
			daysElapsed := int(barTime.Sub(startDate).Hours() / 24)
			_ = bar.Set(daysElapsed)
			reportProgress(onProgress, float64(daysElapsed), float64(totalDays), fmt.Sprintf("Downloading %s", ticker))
		}

		if err := iter.Err(); err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", ticker)
		}

		_ = bar.Finish()

		if count == 0 {
			return errors.Newf(errors.ErrCodeMarketDataFetchFailed, "polygon returned no bars for %s", ticker)
		}

		return nil
	})
}
