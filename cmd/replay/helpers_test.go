package main

import (
	"fmt"
	"testing"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/stretchr/testify/require"
)

// series returns n daily records starting 2024-01-01 with closes first, first+1, ...
func series(n int, first float64) types.Series {
	out := make(types.Series, n)
	for i := range out {
		close := first + float64(i)
		out[i] = types.DailyRecord{
			Date:   fmt.Sprintf("2024-01-%02d", i+1),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1_500_000 * float64(i+1),
		}
	}

	return out
}

// testCatalog holds AAA (3 days), BBB (5 days) and CCC (2 days).
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(map[string]types.Series{
		"AAA": series(3, 10),
		"BBB": series(5, 100),
		"CCC": series(2, 50),
	}, nil)
	require.NoError(t, err)

	return c
}
