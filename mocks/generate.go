package mocks

//go:generate mockgen -destination=./mock_fetcher.go -package=mocks github.com/rxtech-lab/stock-replay/internal/catalog Fetcher
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/stock-replay/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_writer.go -package=mocks github.com/rxtech-lab/stock-replay/pkg/marketdata/writer MarketDataWriter
