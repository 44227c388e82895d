package catalog

import (
	"context"
	"sync"

	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/normalizer"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of in-flight fetches.
const DefaultConcurrency = 8

// Loader fetches and normalizes every candidate symbol.
type Loader struct {
	fetcher     Fetcher
	log         *logger.Logger
	concurrency int
}

// NewLoader creates a loader. A concurrency below 1 uses DefaultConcurrency.
func NewLoader(fetcher Fetcher, log *logger.Logger, concurrency int) *Loader {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Loader{
		fetcher:     fetcher,
		log:         log,
		concurrency: concurrency,
	}
}

// Load fetches all symbols and builds the catalog. Per-symbol failures are
// recorded and skipped; only an empty result fails, with ErrCodeNoDataAvailable.
// Load returns once every fetch has finished.
func (l *Loader) Load(ctx context.Context, symbols []string) (*Catalog, error) {
	var (
		mu      sync.Mutex
		loaded  = make(map[string]types.Series, len(symbols))
		skipped []*errors.SymbolError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, symbol := range dedupe(symbols) {
		symbol := symbol
		g.Go(func() error {
			series, err := l.loadSymbol(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				l.log.Warn("Skipping symbol",
					zap.String("symbol", symbol),
					zap.Error(err),
				)

				skipped = append(skipped, errors.NewSymbolError(symbol, err))

				return nil
			}

			l.log.Debug("Loaded symbol",
				zap.String("symbol", symbol),
				zap.Int("records", len(series)),
			)

			loaded[symbol] = series

			return nil
		})
	}

	// Workers never return errors, skips are collected instead.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSymbolFetchFailed, "catalog load cancelled", err)
	}

	c, err := New(loaded, skipped)
	if err != nil {
		l.log.Error("No symbols could be loaded",
			zap.Int("candidates", len(symbols)),
			zap.Int("skipped", len(skipped)),
		)

		return nil, err
	}

	l.log.Info("Catalog loaded",
		zap.Int("symbols", len(c.Symbols())),
		zap.Int("skipped", len(skipped)),
		zap.String("start", c.Envelope().Start),
		zap.String("end", c.Envelope().End),
	)

	return c, nil
}

func (l *Loader) loadSymbol(ctx context.Context, symbol string) (types.Series, error) {
	data, err := l.fetcher.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	series, err := normalizer.NormalizeBytes(data)
	if err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "%s has no valid records", symbol)
	}

	return series, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
