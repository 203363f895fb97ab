package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/mealroute/internal/report"
	"github.com/nconklindev/mealroute/internal/session"
	"github.com/nconklindev/mealroute/internal/types"
	"github.com/nconklindev/mealroute/internal/workbook"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

type state int

const (
	stateDayPicker state = iota
	stateFilePicker
	stateDashboard
	stateMealEdit
	stateAddRecord
)

// pickPurpose says what the file picker was opened for.
type pickPurpose int

const (
	pickReport pickPurpose = iota
	pickSnapshot
)

type Model struct {
	state   state
	session *session.Session
	keys    keyMap
	help    help.Model

	picker    filepicker.Model
	purpose   pickPurpose
	dayCursor int
	uploadDay types.Weekday

	day      types.Weekday
	routeIdx int
	grid     table.Model
	records  []types.DeliveryRecord

	mealInput textinput.Model
	form      recordForm
	progress  progress.Model

	status string
	err    error
	width  int
	height int
}

type reportLoadedMsg struct {
	day       types.Weekday
	path      string
	table     *types.DayTable
	headerRow int
	err       error
}

type snapshotReadMsg struct {
	path string
	data []byte
	err  error
}

// NewModel starts on the dashboard when s already holds data, otherwise on
// the upload day picker.
func NewModel(s *session.Session) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorLight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorLight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	grid := table.New(table.WithFocused(true), table.WithHeight(12))
	gs := table.DefaultStyles()
	gs.Header = gs.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true)
	gs.Selected = gs.Selected.Foreground(colorText).Background(colorAccent).Bold(false)
	grid.SetStyles(gs)

	meals := textinput.New()
	meals.CharLimit = 6
	meals.Width = 10

	m := Model{
		state:     stateDayPicker,
		session:   s,
		keys:      defaultKeyMap(),
		help:      help.New(),
		picker:    fp,
		grid:      grid,
		mealInput: meals,
		progress:  progress.New(progress.WithGradient("#2E8B57", "#7FD1A8"), progress.WithWidth(40)),
	}
	if days := s.Days(); len(days) > 0 {
		m.day = days[0]
		m.state = stateDashboard
		m.refresh(false)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Leave room for title, tabs, footer and help.
		m.picker.SetHeight(max(msg.Height-14, 5))
		m.grid.SetHeight(max(msg.Height-16, 5))
		m.progress.Width = min(max(msg.Width-40, 10), 60)
		return m, nil

	case reportLoadedMsg:
		m.state = m.home()
		if msg.err != nil {
			log.Warn().Str("day", msg.day.String()).Str("file", msg.path).Err(msg.err).Msg("report rejected")
			m.fail(fmt.Errorf("%s: %w", msg.day, msg.err))
			return m, nil
		}
		msg.table.Day = msg.day
		m.session.Load(msg.table)
		m.day = msg.day
		m.routeIdx = 0
		m.state = stateDashboard
		m.refresh(false)
		m.notify(fmt.Sprintf("%s: loaded %d rows from %s (header on row %d)",
			msg.day, len(msg.table.Records), filepath.Base(msg.path), msg.headerRow+1))
		return m, nil

	case snapshotReadMsg:
		if msg.err == nil {
			msg.err = m.session.Restore(msg.data)
		}
		if msg.err != nil {
			m.state = m.home()
			m.fail(msg.err)
			return m, nil
		}
		m.state = m.home()
		if days := m.session.Days(); len(days) > 0 {
			m.day = days[0]
		}
		m.routeIdx = 0
		m.refresh(false)
		m.notify(fmt.Sprintf("Snapshot loaded from %s", filepath.Base(msg.path)))
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateDayPicker:
			return m.updateDayPicker(msg)
		case stateDashboard:
			return m.updateDashboard(msg)
		case stateMealEdit:
			return m.updateMealEdit(msg)
		case stateAddRecord:
			return m.updateAddRecord(msg)
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "q":
				m.state = m.home()
				return m, nil
			}
		}
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
			if m.purpose == pickSnapshot {
				return m, readSnapshot(path)
			}
			return m, m.loadReport(m.uploadDay, path)
		}
		return m, cmd
	}

	return m, nil
}

// home is the state to fall back to after a picker or form closes.
func (m Model) home() state {
	if len(m.session.Days()) > 0 {
		return stateDashboard
	}
	return stateDayPicker
}

func (m *Model) fail(err error) {
	m.err = err
	m.status = ""
}

func (m *Model) notify(status string) {
	m.err = nil
	m.status = status
}

func (m Model) openPicker(purpose pickPurpose) (Model, tea.Cmd) {
	m.purpose = purpose
	if purpose == pickSnapshot {
		m.picker.AllowedTypes = []string{".json"}
	} else {
		m.picker.AllowedTypes = []string{".xlsx"}
	}
	m.state = stateFilePicker
	return m, m.picker.Init()
}

func (m Model) loadReport(day types.Weekday, path string) tea.Cmd {
	opts := m.session.ReportOptions()
	return func() tea.Msg {
		t, headerRow, err := report.ReadReportFile(path, opts)
		return reportLoadedMsg{day: day, path: path, table: t, headerRow: headerRow, err: err}
	}
}

func readSnapshot(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			err = fmt.Errorf("%w: %v", session.ErrSnapshotLoad, err)
		}
		return snapshotReadMsg{path: path, data: data, err: err}
	}
}

func (m Model) updateDayPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.dayCursor > 0 {
			m.dayCursor--
		}
	case "down", "j":
		if m.dayCursor < len(types.Weekdays)-1 {
			m.dayCursor++
		}
	case "enter":
		m.uploadDay = types.Weekdays[m.dayCursor]
		return m.openPicker(pickReport)
	case "l":
		return m.openPicker(pickSnapshot)
	case "esc":
		m.state = m.home()
	}
	return m, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Toggle):
		if rec, ok := m.selected(); ok {
			delivered := !rec.Delivered
			m.edit(rec.ID, session.Edit{Delivered: &delivered})
		}

	case key.Matches(msg, m.keys.EditMeals):
		if rec, ok := m.selected(); ok {
			m.mealInput.SetValue(strconv.Itoa(rec.Meals))
			m.mealInput.CursorEnd()
			m.state = stateMealEdit
			cmd := m.mealInput.Focus()
			return m, cmd
		}

	case key.Matches(msg, m.keys.MoreMeals), key.Matches(msg, m.keys.FewerMeals):
		if rec, ok := m.selected(); ok {
			meals := rec.Meals + 1
			if key.Matches(msg, m.keys.FewerMeals) {
				meals = rec.Meals - 1
			}
			m.edit(rec.ID, session.Edit{Meals: &meals})
		}

	case key.Matches(msg, m.keys.RouteDone):
		if route := m.currentRoute(); route != "" {
			n := m.session.SetRouteDelivered(m.day, route, true)
			m.refresh(true)
			m.notify(fmt.Sprintf("%s %s: %d record(s) marked delivered", m.day, route, n))
		}

	case key.Matches(msg, m.keys.Add):
		m.form = newRecordForm(m.currentRoute())
		m.state = stateAddRecord
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Upload):
		m.dayCursor = int(m.day)
		m.state = stateDayPicker

	case key.Matches(msg, m.keys.ExportDay):
		m.exported(m.session.SaveDay(m.day))

	case key.Matches(msg, m.keys.ExportRoute):
		if route := m.currentRoute(); route != "" {
			m.exported(m.session.SaveRoute(route))
		} else {
			m.fail(errors.New("no route selected"))
		}

	case key.Matches(msg, m.keys.ExportWeek):
		m.exported(m.session.SaveWeek())

	case key.Matches(msg, m.keys.Save):
		cfg := m.session.Config()
		path := filepath.Join(cfg.OutputDir, session.SnapshotFileName(cfg.WeekStart))
		if err := m.session.SaveSnapshot(path); err != nil {
			m.fail(err)
		} else {
			m.notify("Snapshot saved to " + path)
		}

	case key.Matches(msg, m.keys.Load):
		return m.openPicker(pickSnapshot)

	case key.Matches(msg, m.keys.PrevDay), key.Matches(msg, m.keys.NextDay):
		delta := 1
		if key.Matches(msg, m.keys.PrevDay) {
			delta = -1
		}
		m.day = cycleDay(m.session.Days(), m.day, delta)
		m.routeIdx = 0
		m.refresh(false)

	case key.Matches(msg, m.keys.PrevRoute), key.Matches(msg, m.keys.NextRoute):
		if n := len(m.session.DayRoutes(m.day)); n > 0 {
			delta := 1
			if key.Matches(msg, m.keys.PrevRoute) {
				delta = -1
			}
			m.routeIdx = (m.routeIdx + delta + n) % n
			m.refresh(false)
		}

	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateMealEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mealInput.Blur()
		m.state = stateDashboard
		return m, nil
	case "enter":
		v := strings.TrimSpace(m.mealInput.Value())
		meals, err := strconv.Atoi(v)
		if err != nil || meals < 0 {
			m.fail(fmt.Errorf("meals must be a whole number of zero or more, got %q", v))
			return m, nil
		}
		if rec, ok := m.selected(); ok {
			m.edit(rec.ID, session.Edit{Meals: &meals})
		}
		m.mealInput.Blur()
		m.state = stateDashboard
		return m, nil
	}

	var cmd tea.Cmd
	m.mealInput, cmd = m.mealInput.Update(msg)
	return m, cmd
}

func (m Model) updateAddRecord(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = m.home()
		return m, nil
	case "tab", "down":
		cmd := m.form.next(1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.form.next(-1)
		return m, cmd
	case "enter":
		if !m.form.last() {
			cmd := m.form.next(1)
			return m, cmd
		}
		rec, err := m.session.AppendRecord(m.day, m.form.record())
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.state = stateDashboard
		shown := m.selectRoute(rec.Route)
		m.refresh(false)
		status := fmt.Sprintf("Added %s to %s %s", orDash(rec.Name), m.day, rec.Route)
		if shown {
			m.grid.GotoBottom()
		} else {
			status += " (saved, but the route is excluded or over the route cap and has no tab)"
		}
		m.notify(status)
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *Model) edit(id string, e session.Edit) {
	if _, err := m.session.ApplyEdit(m.day, id, e); err != nil {
		m.fail(err)
		return
	}
	m.refresh(true)
}

func (m *Model) exported(res *types.ExportResult, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.notify(fmt.Sprintf("Exported %d row(s) to %s", res.Rows, res.OutputFile))
}

func (m Model) currentRoute() string {
	routes := m.session.DayRoutes(m.day)
	if m.routeIdx < 0 || m.routeIdx >= len(routes) {
		return ""
	}
	return routes[m.routeIdx]
}

// selectRoute points the route tab at route when the day shows it.
// selectRoute switches to route's tab and reports whether the day has one.
func (m *Model) selectRoute(route string) bool {
	for i, r := range m.session.DayRoutes(m.day) {
		if r == route {
			m.routeIdx = i
			return true
		}
	}
	return false
}

func (m Model) selected() (types.DeliveryRecord, bool) {
	i := m.grid.Cursor()
	if i < 0 || i >= len(m.records) {
		return types.DeliveryRecord{}, false
	}
	return m.records[i], true
}

// refresh rebuilds the grid from the session for the current day and route.
func (m *Model) refresh(keepCursor bool) {
	cursor := m.grid.Cursor()

	var cols []table.Column
	var rows []table.Row
	m.records = nil

	if t := m.session.Table(m.day); t != nil {
		for _, c := range t.Columns {
			cols = append(cols, table.Column{Title: c, Width: gridWidth(c)})
		}
		if route := m.currentRoute(); route != "" {
			m.records = m.session.RouteRecords(m.day, route)
			for _, rec := range m.records {
				rows = append(rows, gridRow(t.Columns, rec))
			}
		}
	}

	// Rows must never be wider than the columns they render against.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if keepCursor {
		m.grid.SetCursor(cursor)
	} else {
		m.grid.SetCursor(0)
	}
}

func gridRow(columns []string, rec types.DeliveryRecord) table.Row {
	row := make(table.Row, len(columns))
	for i, c := range columns {
		if c == types.ColDelivered {
			if rec.Delivered {
				row[i] = "✓"
			}
			continue
		}
		row[i] = rec.Value(c)
	}
	return row
}

func gridWidth(col string) int {
	return min(int(workbook.ColumnWidth(col)), 30)
}

func cycleDay(days []types.Weekday, current types.Weekday, delta int) types.Weekday {
	if len(days) == 0 {
		return current
	}
	for i, d := range days {
		if d == current {
			return days[(i+delta+len(days))%len(days)]
		}
	}
	return days[0]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
