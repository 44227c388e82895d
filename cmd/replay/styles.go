package main

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// seriesColor is one entry of the selection palette, as a terminal color for
// lipgloss and the closest named color for the chart.
type seriesColor struct {
	hex   lipgloss.Color
	chart asciigraph.AnsiColor
}

// palette is indexed by selection position modulo its length.
var palette = []seriesColor{
	{"#3b82f6", asciigraph.DodgerBlue},
	{"#ef4444", asciigraph.Red},
	{"#10b981", asciigraph.MediumSeaGreen},
	{"#f59e0b", asciigraph.Orange},
	{"#8b5cf6", asciigraph.MediumPurple},
	{"#ec4899", asciigraph.HotPink},
	{"#14b8a6", asciigraph.LightSeaGreen},
	{"#f97316", asciigraph.DarkOrange},
	{"#06b6d4", asciigraph.DarkTurquoise},
	{"#84cc16", asciigraph.YellowGreen},
}

func colorAt(selectionIndex int) seriesColor {
	return palette[selectionIndex%len(palette)]
}

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))

	// SubtleStyle for secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171"))

	// DateStyle for the current date.
	DateStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))

	UpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	DownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(0, 1).
			Width(18)

	chipStyle = lipgloss.NewStyle().Padding(0, 1).Width(10)

	unselectedChipStyle = chipStyle.
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#e5e7eb"))
)

func selectedChipStyle(selectionIndex int) lipgloss.Style {
	return chipStyle.
		Background(colorAt(selectionIndex).hex).
		Foreground(lipgloss.Color("#ffffff")).
		Bold(true)
}

var million = decimal.NewFromInt(1_000_000)

// FormatPrice renders a close as $x.xx.
func FormatPrice(price float64) string {
	return "$" + fixed(price)
}

// FormatChange renders a change with an explicit sign. Zero counts as a gain.
func FormatChange(change float64) string {
	if change >= 0 {
		return "+" + fixed(change)
	}

	return fixed(change)
}

// FormatPercent renders a percent change, or n/a when it is undefined.
func FormatPercent(percent optional.Option[float64]) string {
	if percent.IsNone() {
		return "n/a"
	}

	return fixed(percent.Unwrap()) + "%"
}

// FormatVolume renders a volume in millions.
func FormatVolume(volume float64) string {
	if math.IsNaN(volume) || math.IsInf(volume, 0) {
		return "n/a"
	}

	return decimal.NewFromFloat(volume).Div(million).StringFixed(2) + "M"
}

// FormatTrend returns an up arrow for a gain (or no change) and a down arrow for a loss.
func FormatTrend(change float64) string {
	if change >= 0 {
		return UpStyle.Render("▲")
	}

	return DownStyle.Render("▼")
}

func fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	return decimal.NewFromFloat(v).StringFixed(2)
}
