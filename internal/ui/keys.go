package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle      key.Binding
	EditMeals   key.Binding
	MoreMeals   key.Binding
	FewerMeals  key.Binding
	RouteDone   key.Binding
	Add         key.Binding
	Upload      key.Binding
	ExportDay   key.Binding
	ExportRoute key.Binding
	ExportWeek  key.Binding
	Save        key.Binding
	Load        key.Binding
	PrevDay     key.Binding
	NextDay     key.Binding
	PrevRoute   key.Binding
	NextRoute   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle delivered")),
		EditMeals:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "edit meals")),
		MoreMeals:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "meal +1")),
		FewerMeals:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "meal -1")),
		RouteDone:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "route delivered")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add record")),
		Upload:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		ExportDay:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export day")),
		ExportRoute: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export route")),
		ExportWeek:  key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "export week")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save snapshot")),
		Load:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load snapshot")),
		PrevDay:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev day")),
		NextDay:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next day")),
		PrevRoute:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev route")),
		NextRoute:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next route")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.EditMeals, k.PrevDay, k.NextDay, k.PrevRoute, k.NextRoute, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.EditMeals, k.MoreMeals, k.FewerMeals, k.RouteDone},
		{k.Add, k.Upload, k.Save, k.Load},
		{k.ExportDay, k.ExportRoute, k.ExportWeek},
		{k.PrevDay, k.NextDay, k.PrevRoute, k.NextRoute, k.Quit},
	}
}
