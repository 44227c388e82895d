package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rxtech-lab/stock-replay/internal/config"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

// resolveDownloadConfig reads the optional config file and applies the flags on top.
// Without tickers from either source the default dashboard symbols are downloaded.
func resolveDownloadConfig(cmd *cli.Command) (marketdata.DownloadConfig, error) {
	cfg := marketdata.DefaultDownloadConfig()

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return marketdata.DownloadConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read %s", path)
		}

		cfg, err = marketdata.ParseDownloadConfig(data)
		if err != nil {
			return marketdata.DownloadConfig{}, err
		}
	}

	if cmd.IsSet("tickers") {
		cfg.Tickers = normalizeTickers(cmd.StringSlice("tickers"))
	}

	if len(cfg.Tickers) == 0 {
		cfg.Tickers = append([]string(nil), config.DefaultSymbols...)
	}

	if cmd.IsSet("provider") {
		cfg.Provider = provider.ProviderType(cmd.String("provider"))
	}

	if cmd.IsSet("writer") {
		cfg.Writer = marketdata.WriterType(cmd.String("writer"))
	}

	if cmd.IsSet("data") {
		cfg.DataPath = cmd.String("data")
	}

	if cmd.IsSet("period") {
		cfg.Period = cmd.String("period")
	}

	if cmd.IsSet("start") {
		cfg.StartDate = cmd.Timestamp("start").Format(types.DateLayout)
	}

	if cmd.IsSet("end") {
		cfg.EndDate = cmd.Timestamp("end").Format(types.DateLayout)
	}

	cfg.ApiKey = cmd.String("api-key")

	if err := cfg.Validate(); err != nil {
		return marketdata.DownloadConfig{}, err
	}

	return cfg, nil
}

// normalizeTickers upper-cases and trims tickers, dropping empty ones.
func normalizeTickers(input []string) []string {
	tickers := make([]string, 0, len(input))

	for _, t := range input {
		s := strings.TrimSpace(strings.ToUpper(t))
		if s != "" {
			tickers = append(tickers, s)
		}
	}

	return tickers
}

// runDownload downloads every ticker and prints one line per result.
// It fails only when no ticker could be downloaded.
func runDownload(ctx context.Context, client *marketdata.Client, cfg marketdata.DownloadConfig, now time.Time, out io.Writer) error {
	start, end, err := cfg.DateRange(now)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Downloading %d tickers from %s to %s using %s provider and %s writer\n",
		len(cfg.Tickers), start.Format(types.DateLayout), end.Format(types.DateLayout), cfg.Provider, cfg.Writer)

	failed := 0

	for _, result := range client.DownloadAll(ctx, cfg.Tickers, start, end) {
		if result.Err != nil {
			failed++

			fmt.Fprintf(out, "✗ %s: %v\n", result.Ticker, result.Err)

			continue
		}

		fmt.Fprintf(out, "✓ %s -> %s\n", result.Ticker, result.Path)
	}

	fmt.Fprintf(out, "Downloaded %d of %d tickers\n", len(cfg.Tickers)-failed, len(cfg.Tickers))

	if failed == len(cfg.Tickers) {
		return errors.New(errors.ErrCodeMarketDataFetchFailed, "no ticker could be downloaded")
	}

	return nil
}

// downloadAction parses the arguments, sets up the market data client, and starts the download.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveDownloadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(logger.Config{Level: cmd.String("log-level")})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	client, err := marketdata.NewClient(cfg.ToClientConfig(), nil, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	return runDownload(ctx, client, cfg, time.Now(), cmd.Root().Writer)
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := ""
		if info.RequiresAuth {
			auth = " (API key required)"
		}

		fmt.Fprintf(out, "%-10s %s: %s%s\n", info.Name, info.DisplayName, info.Description, auth)
	}

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := marketdata.DownloadConfigSchema()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download daily price history as <TICKER>.json files for the replay dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Download config file (YAML or JSON)",
			},
			&cli.StringSliceFlag{
				Name:    "tickers",
				Aliases: []string{"t"},
				Usage:   "Ticker symbols, comma separated. Defaults to the dashboard symbols",
			},
			&cli.StringFlag{
				Name:  "period",
				Usage: "Lookback ending at the end date, e.g. 2y, 6mo, 4wk, 30d or ytd",
				Value: marketdata.DefaultPeriod,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format. Overrides --period",
				Config: cli.TimestampConfig{
					Layouts: []string{types.DateLayout},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today",
				Config: cli.TimestampConfig{
					Layouts: []string{types.DateLayout},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (%s, %s)", marketdata.WriterJSON, marketdata.WriterDuckDB),
				Value:   string(marketdata.WriterJSON),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "./data",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Polygon API key",
				Sources: cli.EnvVars("POLYGON_API_KEY"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Action: downloadAction,
		Commands: []*cli.Command{
			{
				Name:   "providers",
				Usage:  "List the supported providers",
				Action: providersAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the download config file",
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
