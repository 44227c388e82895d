// Package config reads and validates the replay.yaml configuration.
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/replay"
	"github.com/rxtech-lab/stock-replay/internal/version"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/utils"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "replay.yaml"

// DefaultSymbols is the candidate symbol list used when the file does not name one.
var DefaultSymbols = []string{
	"AA", "AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "JPM", "V", "WMT",
	"JNJ", "PG", "MA", "HD", "BAC", "DIS", "ADBE", "CRM", "NFLX", "CSCO",
	"PFE", "ABT", "TMO", "COST", "NKE", "ABBV", "MRK", "AVGO", "PEP", "CVX",
	"INTC", "ORCL", "ACN", "CMCSA", "DHR", "VZ", "AMD", "TXN", "QCOM", "UNP",
	"NEE", "PM", "HON", "LOW", "UPS", "BMY", "LIN", "RTX", "SBUX", "T",
	"INTU", "AMGN", "ELV", "SPGI", "DE", "GS", "BLK", "CAT", "AXP", "BKNG",
	"MDLZ", "GILD", "TJX", "MMC", "SYK", "ADI", "VRTX", "ADP", "CVS", "CI",
	"ISRG", "ZTS", "LRCX", "AMT", "TMUS", "REGN", "MO", "PLD", "SCHW", "BDX",
	"NOC", "ETN", "DUK", "CB", "SO", "BSX", "SLB", "EQIX", "MU", "ITW",
	"AON", "HCA", "PNC", "USB", "APD", "GE", "MMM", "EW", "CL", "FCX",
}

// Config is the content of replay.yaml.
type Config struct {
	Version  string         `yaml:"version" jsonschema:"title=Version,description=Application version the file was written for"`
	Symbols  []string       `yaml:"symbols" jsonschema:"title=Symbols,description=Candidate symbols; each is loaded from <SYMBOL>.json" validate:"required,min=1,dive,required"`
	Source   SourceConfig   `yaml:"source" jsonschema:"title=Source"`
	Playback PlaybackConfig `yaml:"playback" jsonschema:"title=Playback"`
	Log      LogConfig      `yaml:"log" jsonschema:"title=Log"`
}

// SourceConfig says where symbol files are read from. Exactly one of Dir and URL is set.
type SourceConfig struct {
	Dir            string `yaml:"dir,omitempty" jsonschema:"title=Directory,description=Local directory holding <SYMBOL>.json files" validate:"required_without=URL,excluded_with=URL"`
	URL            string `yaml:"url,omitempty" jsonschema:"title=URL,description=Base URL serving <SYMBOL>.json files,format=uri" validate:"omitempty,url"`
	Concurrency    int    `yaml:"concurrency" jsonschema:"title=Concurrency,minimum=1,maximum=64,default=8" validate:"min=1,max=64"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" jsonschema:"title=Timeout,description=Per-file HTTP timeout in seconds,minimum=1,default=10" validate:"min=1"`
}

// PlaybackConfig holds the initial session state.
type PlaybackConfig struct {
	SpeedMs          int      `yaml:"speedMs" jsonschema:"title=Speed,description=Milliseconds per day,minimum=100,maximum=2000,multipleOf=100,default=500" validate:"min=100,max=2000,speedstep"`
	DefaultSelection int      `yaml:"defaultSelection" jsonschema:"title=Default Selection,description=Number of symbols selected at start when select is empty,minimum=1,default=5" validate:"min=1"`
	Select           []string `yaml:"select,omitempty" jsonschema:"title=Select,description=Symbols selected at start in display order" validate:"dive,required"`
}

// LogConfig controls the log file. The dashboard owns the terminal, so logs never go to stdout.
type LogConfig struct {
	Level string `yaml:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" jsonschema:"title=File,default=replay.log" validate:"required"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	symbols := make([]string, len(DefaultSymbols))
	copy(symbols, DefaultSymbols)

	return Config{
		Version: version.GetVersion(),
		Symbols: symbols,
		Source: SourceConfig{
			Dir:            "./data",
			Concurrency:    catalog.DefaultConcurrency,
			TimeoutSeconds: 10,
		},
		Playback: PlaybackConfig{
			SpeedMs:          replay.DefaultSpeedMs,
			DefaultSelection: replay.DefaultSelectionSize,
		},
		Log: LogConfig{
			Level: "info",
			File:  "replay.log",
		},
	}
}

// Parse decodes YAML on top of Default and validates the result.
// A file that sets source.url replaces the default source.dir.
func Parse(data []byte) (Config, error) {
	var probe struct {
		Source SourceConfig `yaml:"source"`
	}

	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}

	cfg := Default()
	if probe.Source.URL != "" {
		cfg.Source.Dir = ""
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read %s", path)
	}

	return Parse(data)
}

// LoadOrDefault loads path when it exists. A missing file yields Default unless required is set.
func LoadOrDefault(path string, required bool) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return Default(), nil
		}

		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "configuration file %s not accessible", path)
	}

	return Load(path)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("speedstep", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%replay.SpeedStepMs == 0
	})

	return v
}

// Validate checks field constraints and version compatibility.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return version.CheckConfigCompatibility(version.GetVersion(), c.Version)
}

// Fetcher returns the fetcher for the configured source.
func (c *Config) Fetcher() catalog.Fetcher {
	if c.Source.URL != "" {
		return catalog.NewHTTPFetcher(c.Source.URL, time.Duration(c.Source.TimeoutSeconds)*time.Second)
	}

	return catalog.NewDirFetcher(c.Source.Dir)
}

// SessionOptions returns the initial session options.
func (c *Config) SessionOptions() replay.Options {
	return replay.Options{
		Selection:            c.Playback.Select,
		DefaultSelectionSize: c.Playback.DefaultSelection,
		SpeedMs:              c.Playback.SpeedMs,
	}
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		OutputPaths: []string{c.Log.File},
	}
}

// Marshal renders the configuration as YAML with two-space indentation.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, "failed to encode configuration", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, "failed to encode configuration", err)
	}

	return buf.Bytes(), nil
}

// Schema returns the JSON schema of Config.
func Schema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.GetSchemaFromConfig(&Config{})
}
