package replay

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/types"
)

// makeSeries returns n daily records starting 2024-01-01 whose closes begin at first.
func makeSeries(n int, first float64) types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.Series, n)

	for i := range series {
		closePrice := first + float64(i)
		series[i] = types.DailyRecord{
			Date:   start.AddDate(0, 0, i).Format(types.DateLayout),
			Open:   closePrice,
			High:   closePrice,
			Low:    closePrice,
			Close:  closePrice,
			Volume: float64(1000 * (i + 1)),
		}
	}

	return series
}

func mustCatalog(series map[string]types.Series) *catalog.Catalog {
	c, err := catalog.New(series, nil)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}

	return c
}
