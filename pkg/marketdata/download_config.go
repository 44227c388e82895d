package marketdata

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/utils"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/provider"
)

// DownloadConfig describes a batch download. It can be read from a YAML or JSON
// file and is overridden field by field by command line flags.
type DownloadConfig struct {
	Provider  provider.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=polygon,enum=binance,enum=synthetic,default=polygon" validate:"required,oneof=polygon binance synthetic"`
	Writer    WriterType            `yaml:"writer" json:"writer" jsonschema:"title=Writer,description=Output format,enum=json,enum=duckdb,default=json" validate:"required,oneof=json duckdb"`
	DataPath  string                `yaml:"dataPath" json:"dataPath" jsonschema:"title=Data Path,description=Directory the files are written to,default=./data" validate:"required"`
	Tickers   []string              `yaml:"tickers" json:"tickers" jsonschema:"title=Tickers,description=Symbols to download (e.g. AAPL or BTCUSDT)" validate:"required,min=1,dive,required"`
	Period    string                `yaml:"period,omitempty" json:"period,omitempty" jsonschema:"title=Period,description=Lookback ending at endDate such as 2y or 6mo,default=2y"`
	StartDate string                `yaml:"startDate,omitempty" json:"startDate,omitempty" jsonschema:"title=Start Date,format=date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string                `yaml:"endDate,omitempty" json:"endDate,omitempty" jsonschema:"title=End Date,description=Defaults to today,format=date" validate:"omitempty,datetime=2006-01-02"`
	// ApiKey is never read from files; it comes from POLYGON_API_KEY.
	ApiKey string `yaml:"-" json:"-" validate:"required_if=Provider polygon"`
}

// DefaultDownloadConfig returns the configuration used when no file is given.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		Provider: provider.ProviderPolygon,
		Writer:   WriterJSON,
		DataPath: "./data",
		Period:   DefaultPeriod,
	}
}

// ParseDownloadConfig parses YAML (or JSON) on top of DefaultDownloadConfig.
func ParseDownloadConfig(data []byte) (DownloadConfig, error) {
	config := DefaultDownloadConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DownloadConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse download config", err)
	}

	return config, nil
}

// Validate checks required fields, date formats and the period.
func (c *DownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	if c.StartDate == "" && c.Period != "" {
		if _, err := ParsePeriod(c.Period); err != nil {
			return err
		}
	}

	return nil
}

// DateRange resolves the download window. The end defaults to now's calendar day;
// the start is StartDate when set, otherwise the period (default 2y) before the end.
func (c *DownloadConfig) DateRange(now time.Time) (start time.Time, end time.Time, err error) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if c.EndDate != "" {
		end, err = time.Parse(types.DateLayout, c.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid endDate", err)
		}
	}

	if c.StartDate != "" {
		start, err = time.Parse(types.DateLayout, c.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid startDate", err)
		}
	} else {
		periodText := c.Period
		if periodText == "" {
			periodText = DefaultPeriod
		}

		period, perr := ParsePeriod(periodText)
		if perr != nil {
			return time.Time{}, time.Time{}, perr
		}

		start = period.Start(end)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"start date %s must be before end date %s", start.Format(types.DateLayout), end.Format(types.DateLayout))
	}

	return start, end, nil
}

// ToClientConfig converts the download config to a ClientConfig.
func (c *DownloadConfig) ToClientConfig() ClientConfig {
	return ClientConfig{
		ProviderType:  c.Provider,
		WriterType:    c.Writer,
		DataPath:      c.DataPath,
		PolygonApiKey: c.ApiKey,
	}
}

// DownloadConfigSchema returns the JSON schema of DownloadConfig.
func DownloadConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.GetSchemaFromConfig(&DownloadConfig{})
}
