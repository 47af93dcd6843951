package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines every binding AppLoop dispatches, exhaustive for the core
// per spec §4.11. ToggleOldFull and ToggleNewFull are defined but not
// dispatched: the diff view always shows both panes side by side.
type KeyMap struct {
	Quit          key.Binding
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	JumpNextHunk  key.Binding
	JumpPrevHunk  key.Binding
	ToggleHunks   key.Binding
	ToggleOldFull key.Binding
	ToggleNewFull key.Binding
	ToggleFocus   key.Binding
	FocusOld      key.Binding
	FocusNew      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	FuzzyFilter   key.Binding
	ToggleViewed  key.Binding
	AddComment    key.Binding
	ViewComments  key.Binding
	Open          key.Binding
	Refresh       key.Binding
	Help          key.Binding
	OpenEditor    key.Binding
	CopyPath      key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:            key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "up")),
		Down:          key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "down")),
		Left:          key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "scroll left")),
		Right:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "scroll right")),
		JumpNextHunk:  key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "next hunk")),
		JumpPrevHunk:  key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "prev hunk")),
		ToggleHunks:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "toggle hunks-only")),
		ToggleOldFull: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "zoom old pane")),
		ToggleNewFull: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "zoom new pane")),
		ToggleFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		FocusOld:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "focus old pane")),
		FocusNew:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "focus new pane")),
		Top:           key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
		FuzzyFilter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter files")),
		ToggleViewed:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle viewed")),
		AddComment:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add comment")),
		ViewComments:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "view comments")),
		Open:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open diff")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh files")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		OpenEditor:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "open in editor")),
		CopyPath:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
	}
}
