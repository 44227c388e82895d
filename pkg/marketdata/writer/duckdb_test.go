package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) bar(symbol string, day int, close float64) types.MarketData {
	return types.MarketData{
		Symbol: symbol,
		Time:   time.Date(2024, 1, day, 14, 30, 0, 0, time.UTC),
		Open:   close - 1,
		High:   close + 2,
		Low:    close - 2,
		Close:  close,
		Volume: 1_000_000,
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "catalog.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, duckWriter.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "x.parquet"))

	err := writer.Write(suite.bar("AAPL", 2, 100))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFinalizeWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "x.parquet"))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestExportIsOrderedBySymbolAndDate() {
	outputPath := filepath.Join(suite.tempDir, "catalog.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())
	defer writer.Close()

	suite.Require().NoError(writer.Write(suite.bar("MSFT", 3, 310)))
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 3, 186)))
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 185)))
	suite.Require().NoError(writer.Write(suite.bar("MSFT", 2, 300)))

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	info, err := os.Stat(path)
	suite.Require().NoError(err)
	suite.Greater(info.Size(), int64(0))

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT symbol, strftime(date, '%%Y-%%m-%%d'), close, id FROM read_parquet('%s')`, path))
	suite.Require().NoError(err)
	defer rows.Close()

	type row struct {
		symbol string
		date   string
		close  float64
	}

	var got []row

	ids := map[string]bool{}

	for rows.Next() {
		var r row

		var id string

		suite.Require().NoError(rows.Scan(&r.symbol, &r.date, &r.close, &id))
		got = append(got, r)
		ids[id] = true
	}

	suite.Require().NoError(rows.Err())
	suite.Equal([]row{
		{"AAPL", "2024-01-02", 185},
		{"AAPL", "2024-01-03", 186},
		{"MSFT", "2024-01-02", 300},
		{"MSFT", "2024-01-03", 310},
	}, got)
	suite.Len(ids, 4, "every row gets its own id")
}

func (suite *DuckDBWriterTestSuite) TestDoubleFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "double.parquet"))
	suite.Require().NoError(writer.Initialize())
	defer writer.Close()

	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 100)))

	_, err := writer.Finalize()
	suite.Require().NoError(err)

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestWriteAfterClose() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "closed.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Close())

	err := writer.Write(suite.bar("AAPL", 2, 100))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestCloseRollsBackActiveTransaction() {
	outputPath := filepath.Join(suite.tempDir, "rollback.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 100)))

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())

	_, err := os.Stat(outputPath)
	suite.True(os.IsNotExist(err))
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	outputPath := filepath.Join(suite.tempDir, "missing", "dir", "out.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())
	defer writer.Close()

	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 100)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export to Parquet")
}
