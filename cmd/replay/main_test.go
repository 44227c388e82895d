package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/stock-replay/internal/config"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
)

type MainTestSuite struct {
	suite.Suite
	dir string
}

func TestMainSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (suite *MainTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

// resolve runs a command carrying the play flags and returns the resolved configuration.
func (suite *MainTestSuite) resolve(args ...string) (config.Config, error) {
	var (
		cfg        config.Config
		resolveErr error
	)

	cmd := &cli.Command{
		Name:  "replay",
		Flags: playFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, resolveErr = resolveConfig(cmd)

			return nil
		},
	}

	err := cmd.Run(context.Background(), append([]string{"replay"}, args...))
	suite.Require().NoError(err)

	return cfg, resolveErr
}

func (suite *MainTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.dir, config.FileName)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *MainTestSuite) TestDefaultsWithoutFile() {
	cfg, err := suite.resolve("--config", filepath.Join(suite.dir, "absent.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	cfg, err = suite.resolve()
	suite.Require().NoError(err)
	suite.Equal(config.Default(), cfg)
}

func (suite *MainTestSuite) TestFlagsOverrideFile() {
	path := suite.writeConfig(`
source:
  dir: ./from-file
playback:
  speedMs: 800
log:
  level: warn
`)

	cfg, err := suite.resolve(
		"--config", path,
		"--data", "./from-flag",
		"--speed", "340",
		"--select", "MSFT,AAPL",
		"--symbols", "AAPL,MSFT,TSLA",
		"--log-file", "debug.log",
	)
	suite.Require().NoError(err)

	suite.Equal("./from-flag", cfg.Source.Dir)
	suite.Empty(cfg.Source.URL)
	suite.Equal(300, cfg.Playback.SpeedMs)
	suite.Equal([]string{"MSFT", "AAPL"}, cfg.Playback.Select)
	suite.Equal([]string{"AAPL", "MSFT", "TSLA"}, cfg.Symbols)
	suite.Equal("warn", cfg.Log.Level)
	suite.Equal("debug.log", cfg.Log.File)
}

func (suite *MainTestSuite) TestURLFlagReplacesDir() {
	cfg, err := suite.resolve("--url", "http://localhost:8080/data")
	suite.Require().NoError(err)

	suite.Equal("http://localhost:8080/data", cfg.Source.URL)
	suite.Empty(cfg.Source.Dir)
	suite.Equal("http://localhost:8080/data", sourceDescription(cfg))
}

func (suite *MainTestSuite) TestInvalidOverride() {
	_, err := suite.resolve("--log-level", "verbose")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *MainTestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"replay"}, args...))

	return out.String(), err
}

func (suite *MainTestSuite) TestSchemaCommand() {
	out, err := suite.run("schema")
	suite.Require().NoError(err)

	suite.Contains(out, `"speedMs"`)
	suite.Contains(out, `"symbols"`)
}

func (suite *MainTestSuite) TestInitCommand() {
	path := filepath.Join(suite.dir, "replay.yaml")

	out, err := suite.run("init", "--config", path)
	suite.Require().NoError(err)
	suite.Contains(out, "Wrote "+path)

	cfg, err := config.Load(path)
	suite.Require().NoError(err)
	suite.Equal(config.Default(), cfg)

	_, err = suite.run("init", "--config", path)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = suite.run("init", "--config", path, "--force")
	suite.NoError(err)
}

func (suite *MainTestSuite) TestHeadlessPlay() {
	dataDir := filepath.Join(suite.dir, "data")
	suite.Require().NoError(os.Mkdir(dataDir, 0755))
	suite.Require().NoError(os.WriteFile(filepath.Join(dataDir, "AAA.json"),
		[]byte(`{"('Close', 'AAA')":{"1704153600000":10,"1704240000000":11}}`), 0644))

	out, err := suite.run("play", "--headless", "--data", dataDir, "--symbols", "AAA,MISSING", "--speed", "100")
	suite.Require().NoError(err)

	suite.Contains(out, "2024-01-02  day 1/2 | AAA $10.00 +0.00 (0.00%)")
	suite.Contains(out, "2024-01-03  day 2/2 | AAA $11.00 +1.00 (10.00%)")
}

func (suite *MainTestSuite) TestHeadlessPlayWithoutData() {
	_, err := suite.run("play", "--headless", "--data", suite.dir, "--symbols", "AAA")
	suite.True(errors.HasCode(err, errors.ErrCodeNoDataAvailable))
}

func (suite *MainTestSuite) TestExportCommand() {
	dataDir := filepath.Join(suite.dir, "data")
	suite.Require().NoError(os.Mkdir(dataDir, 0755))
	suite.Require().NoError(os.WriteFile(filepath.Join(dataDir, "AAA.json"),
		[]byte(`{"('Close', 'AAA')":{"1704153600000":10}}`), 0644))

	target := filepath.Join(suite.dir, "out.parquet")

	out, err := suite.run("export", "--data", dataDir, "--symbols", "AAA", "--out", target)
	suite.Require().NoError(err)
	suite.Contains(out, "Exported 1 symbols to "+target)
	suite.FileExists(target)
}
