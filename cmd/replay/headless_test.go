package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/replay"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeadlessPlaysToEnd(t *testing.T) {
	session := replay.NewSession(testCatalog(t), replay.Options{SpeedMs: replay.MinSpeedMs})

	var out bytes.Buffer
	err := runHeadless(context.Background(), session, &out, logger.NewNopLogger())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// the start frame, four advancing ticks and the tick that stops playback
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "2024-01-01  day 1/5"))
	assert.True(t, strings.HasPrefix(lines[4], "2024-01-05  day 5/5"))
	assert.True(t, strings.HasPrefix(lines[5], "2024-01-05  day 5/5"))
	assert.False(t, session.IsPlaying())
	assert.Equal(t, 4, session.Cursor())
}

func TestRunHeadlessFromCursor(t *testing.T) {
	session := replay.NewSession(testCatalog(t), replay.Options{SpeedMs: replay.MinSpeedMs})
	session.SetCursor(3)

	var out bytes.Buffer
	require.NoError(t, runHeadless(context.Background(), session, &out, logger.NewNopLogger()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "2024-01-04  day 4/5"))
}

func TestRunHeadlessCancelled(t *testing.T) {
	session := replay.NewSession(testCatalog(t), replay.Options{SpeedMs: replay.MaxSpeedMs})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := runHeadless(ctx, session, &out, logger.NewNopLogger())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Equal(t, 0, session.Cursor())
}

func TestRunHeadlessWithoutSelection(t *testing.T) {
	session := replay.NewSession(testCatalog(t), replay.Options{})
	_, err := session.Select()
	require.NoError(t, err)

	var out bytes.Buffer
	err = runHeadless(context.Background(), session, &out, logger.NewNopLogger())

	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidParameter))
	assert.Empty(t, out.String())
}

func TestFormatFrame(t *testing.T) {
	frame := replay.Frame{
		Cursor: 1,
		MaxLen: 3,
		Date:   "2024-01-02",
		Metrics: []replay.SymbolMetrics{
			{
				Symbol: "AAPL",
				Metrics: optional.Some(replay.Metrics{
					Price:         11,
					Change:        1,
					ChangePercent: optional.Some(10.0),
				}),
			},
			{Symbol: "GONE", Metrics: optional.None[replay.Metrics]()},
			{
				Symbol: "ZERO",
				Metrics: optional.Some(replay.Metrics{
					Price:         2,
					Change:        2,
					ChangePercent: optional.None[float64](),
				}),
			},
		},
	}

	assert.Equal(t, "2024-01-02  day 2/3 | AAPL $11.00 +1.00 (10.00%) | ZERO $2.00 +2.00 (n/a)", FormatFrame(frame))
	assert.Equal(t, "N/A  day 1/0", FormatFrame(replay.Frame{}))
}
