package ui

import (
	"fmt"
	"strings"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	switch m.state {
	case stateDayPicker:
		return m.viewDayPicker()
	case stateFilePicker:
		return m.viewFilePicker()
	case stateDashboard:
		return m.viewDashboard()
	case stateMealEdit:
		return m.viewMealEdit()
	case stateAddRecord:
		return m.viewAddRecord()
	}
	return ""
}

func (m Model) title() string {
	cfg := m.session.Config()
	return TitleStyle.Render(fmt.Sprintf("🚚 Meal Route - week of %s", cfg.WeekStart.Format(config.DateLayout)))
}

func (m Model) viewDayPicker() string {
	var s strings.Builder
	cfg := m.session.Config()

	s.WriteString(m.title())
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Pick the weekday to upload a Report export for"))
	s.WriteString("\n")

	for i, d := range types.Weekdays {
		cursor := " "
		if m.dayCursor == i {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %-9s %s", cursor, d, cfg.DayDate(d).Format("Jan 02"))

		if t := m.session.Table(d); t != nil {
			line += fmt.Sprintf("  (%d rows loaded)", len(t.Records))
		}

		switch {
		case m.dayCursor == i:
			line = SelectedStyle.Render(line)
		case m.session.Table(d) != nil:
			line = LoadedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(m.statusLine())
	help := "↑/↓: navigate • enter: choose file • l: load snapshot • q: quit"
	if len(m.session.Days()) > 0 {
		help = "↑/↓: navigate • enter: choose file • l: load snapshot • esc: back • q: quit"
	}
	s.WriteString(HelpStyle.Render(help))

	return BoxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(m.title())
	s.WriteString("\n")
	if m.purpose == pickSnapshot {
		s.WriteString(SubtitleStyle.Render("Select a session snapshot (.json) to restore"))
	} else {
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Select the %s Report export (.xlsx)", m.uploadDay)))
	}
	s.WriteString("\n\n")
	s.WriteString(m.picker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: select • esc: up a directory • q: cancel"))

	return s.String()
}

func (m Model) viewDashboard() string {
	var s strings.Builder

	s.WriteString(m.title())
	s.WriteString("\n\n")
	s.WriteString(m.dayTabs())
	s.WriteString("\n")

	routes := m.session.DayRoutes(m.day)
	if len(routes) == 0 {
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("No routes to show for %s", m.day)))
		s.WriteString("\n")
	} else {
		s.WriteString(routeTabs(routes, m.routeIdx))
		s.WriteString("\n\n")
		s.WriteString(m.grid.View())
		s.WriteString("\n")
		s.WriteString(m.footer())
	}

	s.WriteString("\n")
	s.WriteString(m.statusLine())
	s.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

func (m Model) dayTabs() string {
	var tabs []string
	for _, d := range m.session.Days() {
		if d == m.day {
			tabs = append(tabs, ActiveTabStyle.Render(d.String()))
		} else {
			tabs = append(tabs, TabStyle.Render(d.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func routeTabs(routes []string, active int) string {
	tabs := make([]string, 0, len(routes))
	for i, r := range routes {
		if i == active {
			tabs = append(tabs, ActiveTabStyle.Render(r))
		} else {
			tabs = append(tabs, TabStyle.Render(r))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) footer() string {
	route := m.session.Stats(m.day, m.currentRoute())
	day := m.session.Stats(m.day, "")

	line := fmt.Sprintf("Route: %d rows • %d meals • %d/%d delivered   Day: %d meals • %d/%d delivered",
		route.Rows, route.Meals, route.Delivered, route.Rows,
		day.Meals, day.Delivered, day.Rows)

	return lipgloss.JoinVertical(lipgloss.Left,
		FooterStyle.Render(line),
		m.progress.ViewAs(route.DeliveredRatio()),
	)
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return ErrorStyle.Render("✗ "+m.err.Error()) + "\n"
	case m.status != "":
		return SuccessStyle.Render("✓ "+m.status) + "\n"
	}
	return ""
}

func (m Model) viewMealEdit() string {
	var s strings.Builder

	rec, _ := m.selected()
	s.WriteString(TitleStyle.Render("Edit meals"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • %s • %s", m.day, rec.Route, orDash(rec.Name))))
	s.WriteString("\n\n")
	s.WriteString("Meals: ")
	s.WriteString(m.mealInput.View())
	s.WriteString("\n\n")
	s.WriteString(m.statusLine())
	s.WriteString(HelpStyle.Render("enter: save • esc: cancel"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewAddRecord() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Add record to %s", m.day)))
	s.WriteString("\n\n")
	s.WriteString(m.form.view())
	s.WriteString("\n")
	s.WriteString(m.statusLine())
	s.WriteString(HelpStyle.Render("tab/↑/↓: move • enter: next/save • esc: cancel"))

	return BoxStyle.Render(s.String())
}
