package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/internal/replay"
	"go.uber.org/zap"
)

// Application states.
const (
	StateLoading = iota
	StateError
	StateDashboard
)

// LoadFunc builds the catalog. It runs once, off the event loop.
type LoadFunc func(ctx context.Context) (*catalog.Catalog, error)

// Model is the Bubble Tea model of the replay dashboard.
type Model struct {
	state int
	load  LoadFunc
	opts  replay.Options
	log   *logger.Logger

	// source and candidates describe where data comes from, for the loading and error views.
	source     string
	candidates int

	session    *replay.Session
	err        error
	gridCursor int
	// generation tags scheduled ticks; bumping it cancels the pending one.
	generation int

	spinner  spinner.Model
	timeline progress.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int
}

// NewModel creates a model in the loading state.
func NewModel(load LoadFunc, opts replay.Options, source string, candidates int, log *logger.Logger) Model {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = TitleStyle

	return Model{
		state:      StateLoading,
		load:       load,
		opts:       opts,
		log:        log,
		source:     source,
		candidates: candidates,
		spinner:    s,
		timeline:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(defaultWidth-20)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCatalog())
}

func (m Model) loadCatalog() tea.Cmd {
	load := m.load

	return func() tea.Msg {
		c, err := load(context.Background())
		if err != nil {
			return LoadFailedMsg{Err: err}
		}

		return CatalogLoadedMsg{Catalog: c}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.generation++

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timeline.Width = max(m.contentWidth()-20, 10)

		return m, nil

	case CatalogLoadedMsg:
		m.session = replay.NewSession(msg.Catalog, m.opts)
		m.state = StateDashboard
		m.log.Info("Dashboard ready",
			zap.Int("symbols", len(msg.Catalog.Symbols())),
			zap.Strings("selection", m.session.Selection()),
		)

		return m, nil

	case LoadFailedMsg:
		m.err = msg.Err
		m.state = StateError
		m.log.Error("Failed to load catalog", zap.Error(msg.Err))

		return m, nil

	case TickMsg:
		return m.handleTick(msg)
	}

	switch m.state {
	case StateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case StateDashboard:
		return m.updateDashboard(msg)
	}

	return m, nil
}

func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || msg.Generation != m.generation {
		return m, nil
	}

	m.session.Tick()
	if !m.session.IsPlaying() {
		m.log.Debug("Playback reached the end", zap.Int("cursor", m.session.Cursor()))

		return m, nil
	}

	return m, m.scheduleTick()
}

// scheduleTick arms the next tick for the current generation at the current speed.
func (m Model) scheduleTick() tea.Cmd {
	generation := m.generation

	return tea.Tick(time.Duration(m.session.SpeedMs())*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{Generation: generation}
	})
}

// apply turns a session transition into a tick command. A restart or a stop
// invalidates the pending tick; a restart also arms a new one.
func (m *Model) apply(t replay.Transition) tea.Cmd {
	if !t.RestartClock && (!t.Changed || m.session.IsPlaying()) {
		return nil
	}

	m.generation++

	if !m.session.IsPlaying() {
		return nil
	}

	return m.scheduleTick()
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		updated, cmd := m.timeline.Update(msg)
		if timeline, ok := updated.(progress.Model); ok {
			m.timeline = timeline
		}

		return m, cmd
	}

	symbols := m.session.Catalog().Symbols()

	switch {
	case key.Matches(keyMsg, m.keys.PlayPause):
		return m, m.apply(m.session.TogglePlay())
	case key.Matches(keyMsg, m.keys.StepBack):
		return m, m.apply(m.session.StepCursor(-1))
	case key.Matches(keyMsg, m.keys.StepFwd):
		return m, m.apply(m.session.StepCursor(1))
	case key.Matches(keyMsg, m.keys.JumpBack):
		return m, m.apply(m.session.StepCursor(-jumpDays))
	case key.Matches(keyMsg, m.keys.JumpFwd):
		return m, m.apply(m.session.StepCursor(jumpDays))
	case key.Matches(keyMsg, m.keys.Start):
		return m, m.apply(m.session.JumpToStart())
	case key.Matches(keyMsg, m.keys.End):
		return m, m.apply(m.session.JumpToEnd())
	case key.Matches(keyMsg, m.keys.Faster):
		return m, m.apply(m.session.SetSpeed(m.session.SpeedMs() - replay.SpeedStepMs))
	case key.Matches(keyMsg, m.keys.Slower):
		return m, m.apply(m.session.SetSpeed(m.session.SpeedMs() + replay.SpeedStepMs))
	case key.Matches(keyMsg, m.keys.NextSymbol):
		m.moveGrid(1, len(symbols))
	case key.Matches(keyMsg, m.keys.PrevSymbol):
		m.moveGrid(-1, len(symbols))
	case key.Matches(keyMsg, m.keys.RowDown):
		m.moveGrid(gridColumns(m.contentWidth()), len(symbols))
	case key.Matches(keyMsg, m.keys.RowUp):
		m.moveGrid(-gridColumns(m.contentWidth()), len(symbols))
	case key.Matches(keyMsg, m.keys.Toggle):
		return m.toggleFocused(symbols)
	case key.Matches(keyMsg, m.keys.Clear):
		t, err := m.session.Select()
		if err != nil {
			return m, nil
		}

		return m, m.apply(t)
	case key.Matches(keyMsg, m.keys.Reset):
		t, err := m.session.Select(replay.NewSession(m.session.Catalog(), m.opts).Selection()...)
		if err != nil {
			m.log.Warn("Failed to restore default selection", zap.Error(err))

			return m, nil
		}

		return m, m.apply(t)
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) toggleFocused(symbols []string) (tea.Model, tea.Cmd) {
	if m.gridCursor < 0 || m.gridCursor >= len(symbols) {
		return m, nil
	}

	symbol := symbols[m.gridCursor]

	t, err := m.session.ToggleSelection(symbol)
	if err != nil {
		m.log.Warn("Cannot toggle symbol", zap.String("symbol", symbol), zap.Error(err))

		return m, nil
	}

	m.log.Debug("Selection changed", zap.Strings("selection", m.session.Selection()))

	return m, m.apply(t)
}

func (m *Model) moveGrid(delta, count int) {
	if count == 0 {
		return
	}

	next := m.gridCursor + delta
	if next < 0 || next >= count {
		return
	}

	m.gridCursor = next
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case StateLoading:
		return m.loadingView()
	case StateError:
		return m.errorView()
	case StateDashboard:
		return m.dashboardView()
	}

	return ""
}
