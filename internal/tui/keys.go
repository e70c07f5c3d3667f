package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start  key.Binding
	Stop   key.Binding
	Toggle key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reset  key.Binding
	Search key.Binding
	Sync   key.Binding
	Export key.Binding
	Tab1   key.Binding
	Tab2   key.Binding
	Tab3   key.Binding
	Tab4   key.Binding
	Tab5   key.Binding
	Tab6   key.Binding
	Tab    key.Binding
	Help   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Quit   key.Binding
}

func bind(k []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(k...), key.WithHelp(helpKey, desc))
}

// keys is shared by every view; views ignore bindings they have no use for.
var keys = keyMap{
	Start:  bind([]string{"s"}, "s", "start timer"),
	Stop:   bind([]string{"x"}, "x", "stop / cancel"),
	Toggle: bind([]string{" "}, "space", "toggle"),
	New:    bind([]string{"n"}, "n", "new"),
	Edit:   bind([]string{"e"}, "e", "edit"),
	Delete: bind([]string{"d"}, "d", "delete"),
	Reset:  bind([]string{"r"}, "r", "reset"),
	Search: bind([]string{"/"}, "/", "search"),
	Sync:   bind([]string{"ctrl+r"}, "ctrl+r", "pull from account"),
	Export: bind([]string{"ctrl+e"}, "ctrl+e", "export"),
	Tab1:   bind([]string{"1"}, "1", "today"),
	Tab2:   bind([]string{"2"}, "2", "notes"),
	Tab3:   bind([]string{"3"}, "3", "plans"),
	Tab4:   bind([]string{"4"}, "4", "timers"),
	Tab5:   bind([]string{"5"}, "5", "analytics"),
	Tab6:   bind([]string{"6"}, "6", "settings"),
	Tab:    bind([]string{"tab"}, "tab", "cycle views"),
	Help:   bind([]string{"?"}, "?", "help"),
	Enter:  bind([]string{"enter"}, "enter", "select"),
	Back:   bind([]string{"esc"}, "esc", "back"),
	Up:     bind([]string{"up", "k"}, "↑/k", "up"),
	Down:   bind([]string{"down", "j"}, "↓/j", "down"),
	Left:   bind([]string{"left", "h"}, "←/h", "previous"),
	Right:  bind([]string{"right", "l"}, "→/l", "next"),
	Quit:   bind([]string{"q", "ctrl+c"}, "q", "quit"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Toggle, k.Delete, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Edit, k.Delete, k.Toggle},
		{k.Start, k.Stop, k.Reset, k.Search},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5, k.Tab6},
		{k.Sync, k.Export, k.Left, k.Right},
		{k.Up, k.Down, k.Enter, k.Back, k.Quit},
	}
}
