// Package replay holds the playback state of a dashboard session and the pure
// derivations (chart projection, metrics) computed from it.
//
// A Session is owned by a single event loop and is not safe for concurrent use.
// Clock wraps a Session for playback driven from its own goroutine.
package replay

import (
	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Playback speed bounds and defaults, in milliseconds per day.
const (
	MinSpeedMs  = 100
	MaxSpeedMs  = 2000
	SpeedStepMs = 100

	DefaultSpeedMs       = 500
	// DefaultSelectionSize is the number of catalog symbols selected when none are configured.
	DefaultSelectionSize = 5
)

// Options configures a new Session.
type Options struct {
	// Selection is the initial selection. Symbols missing from the catalog are ignored.
	// When empty (or nothing survives), the first DefaultSelectionSize catalog symbols are used.
	Selection []string
	// DefaultSelectionSize is the size of the default selection. Zero means DefaultSelectionSize.
	DefaultSelectionSize int
	// SpeedMs is the tick period. It is clamped and snapped like SetSpeed. Zero means DefaultSpeedMs.
	SpeedMs int
}

// Transition reports the effect of a state change.
type Transition struct {
	// Changed is set when any observable state changed.
	Changed bool
	// RestartClock is set when a running playback clock must reschedule its next tick.
	RestartClock bool
}

// Session is the selection and playback state of one dashboard.
type Session struct {
	catalog   *catalog.Catalog
	selection []string
	cursor    int
	playing   bool
	speedMs   int
}

// NewSession creates a paused session at cursor 0.
func NewSession(c *catalog.Catalog, opts Options) *Session {
	s := &Session{
		catalog: c,
		speedMs: DefaultSpeedMs,
	}

	if opts.SpeedMs != 0 {
		s.speedMs = ClampSpeed(opts.SpeedMs)
	}

	for _, symbol := range opts.Selection {
		if c.Has(symbol) && !s.IsSelected(symbol) {
			s.selection = append(s.selection, symbol)
		}
	}

	if len(s.selection) == 0 {
		size := opts.DefaultSelectionSize
		if size <= 0 {
			size = DefaultSelectionSize
		}

		symbols := c.Symbols()
		if size > len(symbols) {
			size = len(symbols)
		}

		s.selection = symbols[:size]
	}

	return s
}

// ClampSpeed limits ms to [MinSpeedMs, MaxSpeedMs] and rounds it to the nearest SpeedStepMs.
func ClampSpeed(ms int) int {
	if ms < MinSpeedMs {
		ms = MinSpeedMs
	}

	if ms > MaxSpeedMs {
		ms = MaxSpeedMs
	}

	return (ms + SpeedStepMs/2) / SpeedStepMs * SpeedStepMs
}

// Catalog returns the catalog the session plays over.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Selection returns the selected symbols in selection order.
func (s *Session) Selection() []string {
	out := make([]string, len(s.selection))
	copy(out, s.selection)

	return out
}

// SelectionIndex returns the position of symbol in the selection, or -1.
func (s *Session) SelectionIndex(symbol string) int {
	for i, selected := range s.selection {
		if selected == symbol {
			return i
		}
	}

	return -1
}

// IsSelected reports whether symbol is in the selection.
func (s *Session) IsSelected(symbol string) bool {
	return s.SelectionIndex(symbol) >= 0
}

// Cursor returns the current day index.
func (s *Session) Cursor() int {
	return s.cursor
}

// IsPlaying reports whether playback is running.
func (s *Session) IsPlaying() bool {
	return s.playing
}

// SpeedMs returns the tick period in milliseconds.
func (s *Session) SpeedMs() int {
	return s.speedMs
}

// MaxLen returns the longest series length over the selection, 0 when nothing is selected.
func (s *Session) MaxLen() int {
	maxLen := 0

	for _, symbol := range s.selection {
		if n := s.catalog.Len(symbol); n > maxLen {
			maxLen = n
		}
	}

	return maxLen
}

// CurrentDate returns the date shown for the cursor: the date of the last selected
// symbol that has a record there, or "" when none has.
func (s *Session) CurrentDate() string {
	return dateAt(s.catalog, s.selection, s.cursor)
}

// Project returns the chart points of the current state.
func (s *Session) Project() []PlotPoint {
	return Project(s.catalog, s.selection, s.cursor)
}

// ToggleSelection adds symbol at the end of the selection or removes it.
func (s *Session) ToggleSelection(symbol string) (Transition, error) {
	if !s.catalog.Has(symbol) {
		return Transition{}, errors.Newf(errors.ErrCodeUnknownSymbol, "symbol %s is not in the catalog", symbol)
	}

	if i := s.SelectionIndex(symbol); i >= 0 {
		next := make([]string, 0, len(s.selection)-1)
		next = append(next, s.selection[:i]...)
		next = append(next, s.selection[i+1:]...)
		s.selection = next
	} else {
		s.selection = append(s.Selection(), symbol)
	}

	return s.selectionChanged(), nil
}

// Select replaces the selection. Duplicates are dropped; an unknown symbol leaves the state unchanged.
func (s *Session) Select(symbols ...string) (Transition, error) {
	next := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))

	for _, symbol := range symbols {
		if !s.catalog.Has(symbol) {
			return Transition{}, errors.Newf(errors.ErrCodeUnknownSymbol, "symbol %s is not in the catalog", symbol)
		}

		if !seen[symbol] {
			seen[symbol] = true
			next = append(next, symbol)
		}
	}

	s.selection = next

	return s.selectionChanged(), nil
}

func (s *Session) selectionChanged() Transition {
	s.clamp()

	return Transition{Changed: true, RestartClock: s.playing}
}

// clamp keeps the cursor inside [0, MaxLen-1]. An empty selection stops playback.
func (s *Session) clamp() {
	maxLen := s.MaxLen()
	if maxLen == 0 {
		s.cursor = 0
		s.playing = false

		return
	}

	if s.cursor > maxLen-1 {
		s.cursor = maxLen - 1
	}

	if s.cursor < 0 {
		s.cursor = 0
	}
}

// SetSpeed sets the tick period, clamped and snapped with ClampSpeed.
func (s *Session) SetSpeed(ms int) Transition {
	ms = ClampSpeed(ms)
	if ms == s.speedMs {
		return Transition{}
	}

	s.speedMs = ms

	return Transition{Changed: true, RestartClock: s.playing}
}

// SetCursor moves the cursor to i, clamped to [0, MaxLen-1]. It works while playing.
func (s *Session) SetCursor(i int) Transition {
	before := s.cursor
	s.cursor = i
	s.clamp()

	return Transition{Changed: s.cursor != before}
}

// StepCursor moves the cursor by delta days.
func (s *Session) StepCursor(delta int) Transition {
	return s.SetCursor(s.cursor + delta)
}

// JumpToStart moves the cursor to the first day.
func (s *Session) JumpToStart() Transition {
	return s.SetCursor(0)
}

// JumpToEnd moves the cursor to the last day of the longest selected series.
func (s *Session) JumpToEnd() Transition {
	return s.SetCursor(s.MaxLen() - 1)
}

// Play resumes playback from the current cursor. It is a no-op without a selection.
func (s *Session) Play() Transition {
	if s.playing || s.MaxLen() == 0 {
		return Transition{}
	}

	s.playing = true

	return Transition{Changed: true, RestartClock: true}
}

// Pause halts playback, keeping the cursor.
func (s *Session) Pause() Transition {
	if !s.playing {
		return Transition{}
	}

	s.playing = false

	return Transition{Changed: true}
}

// TogglePlay pauses a running playback or resumes a paused one.
func (s *Session) TogglePlay() Transition {
	if s.playing {
		return s.Pause()
	}

	return s.Play()
}

// Tick advances the cursor by one day while playing. At the end of the longest
// selected series it stops playback instead. A tick while paused does nothing.
func (s *Session) Tick() Transition {
	if !s.playing {
		return Transition{}
	}

	maxLen := s.MaxLen()
	if s.cursor < maxLen-1 {
		s.cursor++

		return Transition{Changed: true}
	}

	s.playing = false
	s.clamp()

	return Transition{Changed: true}
}
