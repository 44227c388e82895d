package replay

import (
	"context"
	"sync"
	"time"
)

// Frame is the state published after every playback step.
type Frame struct {
	Cursor  int
	MaxLen  int
	Date    string
	Playing bool
	Metrics []SymbolMetrics
}

// Clock drives a Session from its own goroutine. All access to the session
// must go through Update or Snapshot while Run is active.
type Clock struct {
	mu      sync.Mutex
	session *Session
	restart chan struct{}
	// metricsLimit caps Frame.Metrics; 0 means all selected symbols.
	metricsLimit int
}

// NewClock creates a clock for session.
func NewClock(session *Session, metricsLimit int) *Clock {
	return &Clock{
		session:      session,
		restart:      make(chan struct{}, 1),
		metricsLimit: metricsLimit,
	}
}

// Update applies fn to the session. When fn changes the cadence or stops playback,
// a running Run reschedules or returns at once.
func (c *Clock) Update(fn func(s *Session) Transition) Transition {
	c.mu.Lock()
	t := fn(c.session)
	playing := c.session.IsPlaying()
	c.mu.Unlock()

	if t.RestartClock || (t.Changed && !playing) {
		select {
		case c.restart <- struct{}{}:
		default:
		}
	}

	return t
}

// Snapshot returns the current frame.
func (c *Clock) Snapshot() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frameLocked()
}

func (c *Clock) frameLocked() Frame {
	return Frame{
		Cursor:  c.session.Cursor(),
		MaxLen:  c.session.MaxLen(),
		Date:    c.session.CurrentDate(),
		Playing: c.session.IsPlaying(),
		Metrics: c.session.SelectedMetrics(c.metricsLimit),
	}
}

func (c *Clock) state() (playing bool, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session.IsPlaying(), time.Duration(c.session.SpeedMs()) * time.Millisecond
}

// Run ticks the session every SpeedMs until playback stops, then returns nil.
// It returns ctx.Err() when ctx is cancelled. onFrame is called once per tick with
// the resulting frame, from Run's goroutine. The speed is re-read at every tick.
func (c *Clock) Run(ctx context.Context, onFrame func(Frame)) error {
	playing, interval := c.state()
	if !playing {
		return nil
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.restart:
			playing, interval = c.state()
			if !playing {
				return nil
			}

			timer.Reset(interval)
		case <-timer.C:
			c.mu.Lock()
			c.session.Tick()
			frame := c.frameLocked()
			interval = time.Duration(c.session.SpeedMs()) * time.Millisecond
			c.mu.Unlock()

			if onFrame != nil {
				onFrame(frame)
			}

			if !frame.Playing {
				return nil
			}

			timer.Reset(interval)
		}
	}
}
