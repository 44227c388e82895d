package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause  key.Binding
	StepBack   key.Binding
	StepFwd    key.Binding
	JumpBack   key.Binding
	JumpFwd    key.Binding
	Start      key.Binding
	End        key.Binding
	Faster     key.Binding
	Slower     key.Binding
	NextSymbol key.Binding
	PrevSymbol key.Binding
	RowDown    key.Binding
	RowUp      key.Binding
	Toggle     key.Binding
	Clear      key.Binding
	Reset      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// jumpDays is how far pgup and pgdown move the cursor.
const jumpDays = 20

func newKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "play/pause"),
		),
		StepBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		StepFwd: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		JumpBack: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "back 20 days"),
		),
		JumpFwd: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "forward 20 days"),
		),
		Start: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "reset to start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "skip to end"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		NextSymbol: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next stock"),
		),
		PrevSymbol: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev stock"),
		),
		RowDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "row down"),
		),
		RowUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "row up"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter/x", "toggle stock"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear selection"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "default selection"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.StepBack, k.StepFwd, k.Faster, k.Slower, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.StepBack, k.StepFwd, k.JumpBack, k.JumpFwd, k.Start, k.End},
		{k.Faster, k.Slower},
		{k.NextSymbol, k.PrevSymbol, k.RowDown, k.RowUp, k.Toggle, k.Clear, k.Reset},
		{k.Help, k.Quit},
	}
}
