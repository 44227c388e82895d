package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/config"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/replay"
	"github.com/rxtech-lab/stock-replay/internal/server"
	"github.com/rxtech-lab/stock-replay/internal/version"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/writer"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// sourceFlags select and tune where symbol documents are read from. They override replay.yaml.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file",
			Value:   config.FileName,
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Directory holding <SYMBOL>.json files",
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Base URL serving <SYMBOL>.json files",
		},
		&cli.StringSliceFlag{
			Name:  "symbols",
			Usage: "Candidate symbols to load (comma separated)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file of the dashboard",
		},
	}
}

func playFlags() []cli.Flag {
	return append(sourceFlags(),
		&cli.IntFlag{
			Name:    "speed",
			Aliases: []string{"s"},
			Usage:   fmt.Sprintf("Milliseconds per day (%d-%d, step %d)", replay.MinSpeedMs, replay.MaxSpeedMs, replay.SpeedStepMs),
		},
		&cli.StringSliceFlag{
			Name:  "select",
			Usage: "Symbols selected at start, in display order",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Play to the end without the dashboard, printing one line per day",
		},
		&cli.IntFlag{
			Name:  "from",
			Usage: "Day index to start headless playback from",
		},
	)
}

// resolveConfig loads the configuration file and applies command line overrides.
// The file is only required when --config was given explicitly.
func resolveConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.LoadOrDefault(cmd.String("config"), cmd.IsSet("config"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("data") {
		cfg.Source.Dir = cmd.String("data")
		cfg.Source.URL = ""
	}

	if cmd.IsSet("url") {
		cfg.Source.URL = cmd.String("url")
		cfg.Source.Dir = ""
	}

	if cmd.IsSet("symbols") {
		cfg.Symbols = cmd.StringSlice("symbols")
	}

	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}

	if cmd.IsSet("log-file") {
		cfg.Log.File = cmd.String("log-file")
	}

	if cmd.IsSet("speed") {
		cfg.Playback.SpeedMs = replay.ClampSpeed(int(cmd.Int("speed")))
	}

	if cmd.IsSet("select") {
		cfg.Playback.Select = cmd.StringSlice("select")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func sourceDescription(cfg config.Config) string {
	if cfg.Source.URL != "" {
		return cfg.Source.URL
	}

	return cfg.Source.Dir
}

func newLoadFunc(cfg config.Config, log *logger.Logger) LoadFunc {
	loader := catalog.NewLoader(cfg.Fetcher(), log, cfg.Source.Concurrency)
	symbols := cfg.Symbols

	return func(ctx context.Context) (*catalog.Catalog, error) {
		return loader.Load(ctx, symbols)
	}
}

// stderrLogger logs to stderr for commands that do not own the terminal.
func stderrLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.NewLogger(logger.Config{Level: cfg.Log.Level})
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("headless") {
		return headlessAction(ctx, cmd, cfg)
	}

	log, err := logger.NewLogger(cfg.LoggerConfig())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	model := NewModel(newLoadFunc(cfg, log), cfg.SessionOptions(), sourceDescription(cfg), len(cfg.Symbols), log)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

func headlessAction(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := stderrLogger(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	c, err := newLoadFunc(cfg, log)(ctx)
	if err != nil {
		return err
	}

	session := replay.NewSession(c, cfg.SessionOptions())
	session.SetCursor(int(cmd.Int("from")))

	err = runHeadless(ctx, session, cmd.Root().Writer, log)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.NewLogger(logger.Config{Level: cmd.String("log-level")})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	dir := cmd.String("data")
	srv := server.NewDataServer(catalog.NewDirFetcher(dir), log)

	if err := srv.Start(cmd.String("addr")); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Serving %s at %s\n", dir, srv.BaseURL())

	<-ctx.Done()

	return srv.Stop()
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := stderrLogger(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	c, err := newLoadFunc(cfg, log)(ctx)
	if err != nil {
		return err
	}

	path, err := exportCatalog(c, writer.NewDuckDBWriter(cmd.String("out")))
	if err != nil {
		return err
	}

	log.Info("Catalog exported", zap.String("path", path), zap.Int("symbols", len(c.Symbols())))
	fmt.Fprintf(cmd.Root().Writer, "Exported %d symbols to %s\n", len(c.Symbols()), path)

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func initAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s already exists, use --force to overwrite", path)
	}

	cfg := config.Default()

	content, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write %s", path)
	}

	fmt.Fprintf(cmd.Root().Writer, "Wrote %s\n", path)

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "replay",
		Usage:   "Replay historical daily stock prices in the terminal",
		Version: version.GetVersion(),
		Flags:   playFlags(),
		Action:  playAction,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "Open the replay dashboard (default)",
				Flags:  playFlags(),
				Action: playAction,
			},
			{
				Name:  "serve",
				Usage: "Serve <SYMBOL>.json files over HTTP at /data/<SYMBOL>.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Directory holding <SYMBOL>.json files",
						Value:   "./data",
					},
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8080",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Log level (debug, info, warn, error)",
						Value: "info",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "export",
				Usage: "Load the catalog and write every record to a Parquet file",
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output Parquet file",
						Value:   "catalog.parquet",
					},
				),
				Action: exportAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of " + config.FileName,
				Action: schemaAction,
			},
			{
				Name:  "init",
				Usage: "Write a default " + config.FileName,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path of the file to write",
						Value:   config.FileName,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: initAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
