package marketdata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type DownloadConfigTestSuite struct {
	suite.Suite
	now time.Time
}

func TestDownloadConfigSuite(t *testing.T) {
	suite.Run(t, new(DownloadConfigTestSuite))
}

func (suite *DownloadConfigTestSuite) SetupTest() {
	suite.now = time.Date(2024, 6, 15, 18, 45, 0, 0, time.UTC)
}

func (suite *DownloadConfigTestSuite) TestParseAppliesDefaults() {
	config, err := ParseDownloadConfig([]byte("tickers: [AAPL, MSFT]\n"))
	suite.Require().NoError(err)
	suite.Equal(provider.ProviderPolygon, config.Provider)
	suite.Equal(WriterJSON, config.Writer)
	suite.Equal("./data", config.DataPath)
	suite.Equal("2y", config.Period)
	suite.Equal([]string{"AAPL", "MSFT"}, config.Tickers)
}

func (suite *DownloadConfigTestSuite) TestParseJSON() {
	config, err := ParseDownloadConfig([]byte(`{"provider":"binance","tickers":["BTCUSDT"],"startDate":"2023-01-01","apiKey":"ignored"}`))
	suite.Require().NoError(err)
	suite.Equal(provider.ProviderBinance, config.Provider)
	suite.Equal("2023-01-01", config.StartDate)
	suite.Empty(config.ApiKey)
}

func (suite *DownloadConfigTestSuite) TestParseInvalid() {
	_, err := ParseDownloadConfig([]byte("tickers: [unclosed"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *DownloadConfigTestSuite) TestValidate() {
	valid := DefaultDownloadConfig()
	valid.Tickers = []string{"AAPL"}
	valid.ApiKey = "key"
	suite.NoError(valid.Validate())

	noKey := valid
	noKey.ApiKey = ""
	suite.Error(noKey.Validate())

	binance := valid
	binance.Provider = provider.ProviderBinance
	binance.ApiKey = ""
	suite.NoError(binance.Validate())

	noTickers := valid
	noTickers.Tickers = nil
	suite.Error(noTickers.Validate())

	badDate := valid
	badDate.StartDate = "01/02/2023"
	suite.Error(badDate.Validate())

	badPeriod := valid
	badPeriod.Period = "forever"
	suite.True(errors.HasCode(badPeriod.Validate(), errors.ErrCodeInvalidPeriod))
}

func (suite *DownloadConfigTestSuite) TestDateRangeFromPeriod() {
	config := DefaultDownloadConfig()

	start, end, err := config.DateRange(suite.now)
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), end)
	suite.Equal(time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC), start)
}

func (suite *DownloadConfigTestSuite) TestDateRangeExplicit() {
	config := DefaultDownloadConfig()
	config.StartDate = "2023-03-01"
	config.EndDate = "2023-04-01"

	start, end, err := config.DateRange(suite.now)
	suite.Require().NoError(err)
	suite.Equal("2023-03-01", start.Format("2006-01-02"))
	suite.Equal("2023-04-01", end.Format("2006-01-02"))
}

func (suite *DownloadConfigTestSuite) TestDateRangeRejectsInvertedRange() {
	config := DefaultDownloadConfig()
	config.StartDate = "2024-07-01"

	_, _, err := config.DateRange(suite.now)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DownloadConfigTestSuite) TestToClientConfig() {
	config := DefaultDownloadConfig()
	config.ApiKey = "secret"

	suite.Equal(ClientConfig{
		ProviderType:  provider.ProviderPolygon,
		WriterType:    WriterJSON,
		DataPath:      "./data",
		PolygonApiKey: "secret",
	}, config.ToClientConfig())
}

func (suite *DownloadConfigTestSuite) TestSchema() {
	schemaText, err := DownloadConfigSchema()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaText), &schema))

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "tickers")
	suite.Contains(properties, "dataPath")
	suite.NotContains(properties, "ApiKey")
	suite.NotContains(properties, "apiKey")
}
