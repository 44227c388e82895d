package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/replay"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
	"go.uber.org/zap"
)

// runHeadless plays session from its cursor to the end of the longest selected
// series, writing one line per day to out.
func runHeadless(ctx context.Context, session *replay.Session, out io.Writer, log *logger.Logger) error {
	clock := replay.NewClock(session, maxMetricCards)

	if t := clock.Update(func(s *replay.Session) replay.Transition { return s.Play() }); !t.Changed {
		return errors.New(errors.ErrCodeInvalidParameter, "nothing to play: no stocks selected")
	}

	log.Info("Headless playback started",
		zap.Strings("selection", session.Selection()),
		zap.Int("speedMs", session.SpeedMs()),
		zap.Int("cursor", session.Cursor()),
	)

	fmt.Fprintln(out, FormatFrame(clock.Snapshot()))

	err := clock.Run(ctx, func(frame replay.Frame) {
		fmt.Fprintln(out, FormatFrame(frame))
	})
	if err != nil {
		log.Info("Headless playback interrupted", zap.Error(err))

		return err
	}

	log.Info("Headless playback finished", zap.Int("cursor", clock.Snapshot().Cursor))

	return nil
}

// FormatFrame renders a frame as a single plain-text line.
func FormatFrame(frame replay.Frame) string {
	date := frame.Date
	if date == "" {
		date = "N/A"
	}

	var s strings.Builder

	fmt.Fprintf(&s, "%s  day %d/%d", date, frame.Cursor+1, frame.MaxLen)

	for _, entry := range frame.Metrics {
		if entry.Metrics.IsNone() {
			continue
		}

		m := entry.Metrics.Unwrap()
		fmt.Fprintf(&s, " | %s %s %s (%s)", entry.Symbol, FormatPrice(m.Price), FormatChange(m.Change), FormatPercent(m.ChangePercent))
	}

	return s.String()
}
