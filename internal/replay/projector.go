package replay

import (
	"math"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
)

// PlotPoint is one chart position. Series are aligned by index, not by date.
type PlotPoint struct {
	Index int
	// Date comes from the last selected symbol (in selection order) with a record at Index.
	Date string
	// Values holds the close of every selected symbol that has a record at Index.
	Values map[string]float64
}

// Project returns one point per index from 0 through min(cursor, maxLen-1),
// where maxLen is the longest selected series. A negative cursor yields the first point only.
func Project(c *catalog.Catalog, selection []string, cursor int) []PlotPoint {
	maxLen := 0

	for _, symbol := range selection {
		if n := c.Len(symbol); n > maxLen {
			maxLen = n
		}
	}

	if maxLen == 0 {
		return nil
	}

	last := min(max(cursor, 0), maxLen-1)
	points := make([]PlotPoint, 0, last+1)

	for i := 0; i <= last; i++ {
		point := PlotPoint{Index: i, Values: make(map[string]float64, len(selection))}

		for _, symbol := range selection {
			record, ok := c.Series(symbol).At(i)
			if !ok {
				continue
			}

			point.Date = record.Date
			point.Values[symbol] = record.Close
		}

		points = append(points, point)
	}

	return points
}

// Columns turns points into one column per symbol, in the order of symbols.
// Absent values are NaN so chart renderers leave a gap.
func Columns(points []PlotPoint, symbols []string) [][]float64 {
	columns := make([][]float64, len(symbols))

	for j, symbol := range symbols {
		column := make([]float64, len(points))

		for i, point := range points {
			if v, ok := point.Values[symbol]; ok {
				column[i] = v
			} else {
				column[i] = math.NaN()
			}
		}

		columns[j] = column
	}

	return columns
}

func dateAt(c *catalog.Catalog, selection []string, i int) string {
	date := ""

	for _, symbol := range selection {
		if record, ok := c.Series(symbol).At(i); ok {
			date = record.Date
		}
	}

	return date
}
