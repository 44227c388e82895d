package catalog

import (
	"testing"

	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	skipped := []*errors.SymbolError{
		errors.NewSymbolError("ZZZ", errors.New(errors.ErrCodeSymbolNotFound, "missing")),
		errors.NewSymbolError("BBB", errors.New(errors.ErrCodeNoCloseData, "no close")),
	}

	c, err := New(map[string]types.Series{
		"B":     {{Date: "2023-05-01", Close: 1}, {Date: "2023-05-02", Close: 2}},
		"A":     {{Date: "2023-06-01", Close: 1}},
		"EMPTY": {},
	}, skipped)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, c.Symbols())
	assert.False(t, c.Has("EMPTY"))
	assert.Equal(t, types.DateEnvelope{Start: "2023-05-01", End: "2023-06-01"}, c.Envelope())
	assert.Equal(t, "BBB", c.Skipped()[0].Symbol)
	assert.Equal(t, "ZZZ", c.Skipped()[1].Symbol)
}

func TestNewCatalogEmpty(t *testing.T) {
	c, err := New(map[string]types.Series{"EMPTY": nil}, nil)
	assert.Nil(t, c)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataAvailable))
}

func TestSymbolsReturnsCopy(t *testing.T) {
	c, err := New(map[string]types.Series{"A": {{Date: "2023-06-01", Close: 1}}}, nil)
	require.NoError(t, err)

	symbols := c.Symbols()
	symbols[0] = "MUTATED"

	assert.Equal(t, []string{"A"}, c.Symbols())
}
