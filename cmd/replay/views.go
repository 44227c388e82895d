package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rxtech-lab/stock-replay/internal/replay"
)

const (
	// maxMetricCards caps the metric cards shown for the selection.
	maxMetricCards = 10
	cardsPerRow    = 5
	chipWidth      = 10
	chartHeight    = 14
	// chartAxisWidth is the room asciigraph takes for the y axis labels.
	chartAxisWidth = 12
	defaultWidth   = 100
)

func (m Model) loadingView() string {
	var s strings.Builder

	s.WriteString("\n  ")
	s.WriteString(m.spinner.View())
	s.WriteString(" Loading stock data...\n\n")
	s.WriteString(HelpStyle.Render(fmt.Sprintf("  Reading %d symbols from %s", m.candidates, m.source)))
	s.WriteString("\n")

	return s.String()
}

func (m Model) errorView() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("Error Loading Data"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")

	steps := []string{
		"Setup:",
		"  1. Generate data files, e.g. download --tickers AAPL,MSFT --data " + m.source,
		"  2. Place the files in " + m.source + ", named like AA.json, AAPL.json",
		`  3. Each file maps fields to {"<epoch ms>": value}, e.g. {"('Close', 'AAPL')": {"1702252800000": 193.18}}`,
		"  4. Update the symbols list in " + "replay.yaml" + " to match your files",
	}
	s.WriteString(PanelStyle.Render(strings.Join(steps, "\n")))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("q: quit"))

	return s.String()
}

func (m Model) dashboardView() string {
	sections := []string{
		m.headerView(),
		m.chartView(),
		m.controlsView(),
	}

	if cards := m.cardsView(); cards != "" {
		sections = append(sections, cards)
	}

	sections = append(sections, m.gridView(), m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	c := m.session.Catalog()
	envelope := c.Envelope()

	date := m.session.CurrentDate()
	if date == "" {
		date = "N/A"
	}

	title := TitleStyle.Render("📈 Historical Stock Data Player")
	subtitle := SubtleStyle.Render(fmt.Sprintf("Playing through %d stocks · data %s → %s",
		len(c.Symbols()), envelope.Start, envelope.End))
	current := fmt.Sprintf("%s %s   %s",
		SubtleStyle.Render("Current Date"),
		DateStyle.Render(date),
		SubtleStyle.Render(fmt.Sprintf("Day %d of %d", m.session.Cursor()+1, m.session.MaxLen())),
	)

	if skipped := len(c.Skipped()); skipped > 0 {
		subtitle += HelpStyle.Render(fmt.Sprintf(" · %d skipped", skipped))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", current)
}

func (m Model) chartView() string {
	return PanelStyle.Render(renderChart(m.session, m.contentWidth()-chartAxisWidth, chartHeight))
}

// renderChart plots the closes of the selection up to the cursor, one line per symbol
// in selection colors. Symbols without any value in range are left out.
func renderChart(s *replay.Session, width, height int) string {
	selection := s.Selection()
	if len(selection) == 0 {
		return SubtleStyle.Render("No stocks selected. Pick some from the list below.")
	}

	points := s.Project()
	columns := replay.Columns(points, selection)

	var (
		series  [][]float64
		colors  []asciigraph.AnsiColor
		legends []string
	)

	for i, column := range columns {
		if !hasFinite(column) {
			continue
		}

		series = append(series, column)
		colors = append(colors, colorAt(i).chart)
		legends = append(legends, selection[i])
	}

	if len(series) == 0 {
		return SubtleStyle.Render("No data at this position.")
	}

	options := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("%s → %s", points[0].Date, points[len(points)-1].Date)),
	}

	if width > 0 && len(points) > width {
		options = append(options, asciigraph.Width(width))
	}

	return asciigraph.PlotMany(series, options...)
}

func hasFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}

	return false
}

func (m Model) controlsView() string {
	status := SubtleStyle.Render("⏸ Paused")
	if m.session.IsPlaying() {
		status = UpStyle.Render("▶ Playing")
	}

	speed := SubtleStyle.Render(fmt.Sprintf("Playback Speed: %dms per day", m.session.SpeedMs()))

	position := 0.0
	if maxLen := m.session.MaxLen(); maxLen > 1 {
		position = float64(m.session.Cursor()) / float64(maxLen-1)
	}

	timeline := lipgloss.JoinHorizontal(lipgloss.Center,
		SubtleStyle.Render("Timeline "),
		m.timeline.ViewAs(position),
	)

	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		status+"   "+speed,
		timeline,
	))
}

func (m Model) cardsView() string {
	var (
		rows []string
		row  []string
	)

	for i, entry := range m.session.SelectedMetrics(maxMetricCards) {
		if entry.Metrics.IsNone() {
			continue
		}

		row = append(row, renderCard(entry.Symbol, i, entry.Metrics.Unwrap()))
		if len(row) == cardsPerRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	if len(rows) == 0 {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(symbol string, selectionIndex int, metrics replay.Metrics) string {
	symbolStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAt(selectionIndex).hex)

	changeStyle := UpStyle
	if metrics.Change < 0 {
		changeStyle = DownStyle
	}

	lines := []string{
		symbolStyle.Render(symbol) + " " + FormatTrend(metrics.Change),
		lipgloss.NewStyle().Bold(true).Render(FormatPrice(metrics.Price)),
		changeStyle.Render(fmt.Sprintf("%s (%s)", FormatChange(metrics.Change), FormatPercent(metrics.ChangePercent))),
		SubtleStyle.Render("Vol: " + FormatVolume(metrics.Volume)),
	}

	return CardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) gridView() string {
	symbols := m.session.Catalog().Symbols()
	columns := gridColumns(m.contentWidth())

	var (
		rows []string
		row  []string
	)

	for i, symbol := range symbols {
		style := unselectedChipStyle
		if idx := m.session.SelectionIndex(symbol); idx >= 0 {
			style = selectedChipStyle(idx)
		}

		if i == m.gridCursor {
			style = style.Underline(true).Bold(true)
		}

		row = append(row, style.Render(symbol))
		if len(row) == columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	selected := len(m.session.Selection())
	footer := fmt.Sprintf("%d stock%s selected", selected, plural(selected))

	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Select Stocks to Display"),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		SubtleStyle.Render(footer),
	))
}

func gridColumns(width int) int {
	return max(1, width/chipWidth)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}

	// borders and padding of PanelStyle
	return max(m.width-4, chipWidth)
}
