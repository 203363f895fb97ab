package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/session"
	"github.com/nconklindev/mealroute/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := config.Default()
	cfg.WeekStart = time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local)
	cfg.OutputDir = t.TempDir()

	s := session.New(cfg)
	s.Load(&types.DayTable{
		Day:     types.Monday,
		Columns: []string{types.ColRoute, types.ColClientID, types.ColClientName, types.ColQuantity, types.ColDelivered},
		Records: []types.DeliveryRecord{
			{ID: "m1", Route: "North", ClientID: "C1", Name: "Ann", Meals: 2, Delivered: false},
			{ID: "m2", Route: "North", ClientID: "C2", Name: "Bo", Meals: 1, Delivered: false},
			{ID: "m3", Route: "South", ClientID: "C3", Name: "Cy", Meals: 1, Delivered: true},
		},
	})
	s.Load(&types.DayTable{
		Day:     types.Wednesday,
		Columns: []string{types.ColRoute, types.ColQuantity, types.ColDelivered},
		Records: []types.DeliveryRecord{{ID: "w1", Route: "East", Meals: 4, Delivered: true}},
	})
	return s
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	var tm tea.Model = m
	for _, msg := range msgs {
		tm, _ = tm.Update(msg)
	}
	return tm.(Model)
}

func TestNewModelStartState(t *testing.T) {
	m := NewModel(newTestSession(t))
	if m.state != stateDashboard || m.day != types.Monday {
		t.Errorf("state = %v, day = %v; want dashboard on Monday", m.state, m.day)
	}
	if got := m.currentRoute(); got != "North" {
		t.Errorf("currentRoute() = %q; want North", got)
	}
	if len(m.grid.Rows()) != 2 {
		t.Errorf("grid has %d rows; want 2", len(m.grid.Rows()))
	}

	empty := NewModel(session.New(config.Default()))
	if empty.state != stateDayPicker {
		t.Errorf("empty session state = %v; want day picker", empty.state)
	}
}

func TestToggleDelivered(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if !s.Table(types.Monday).Records[0].Delivered {
		t.Error("space did not mark the selected record delivered")
	}
	if got := m.grid.Rows()[0][4]; got != "✓" {
		t.Errorf("grid delivered cell = %q; want ✓", got)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if s.Table(types.Monday).Records[0].Delivered {
		t.Error("second space did not clear the delivered flag")
	}
}

func TestMealKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want int
	}{
		{"plus", []tea.Msg{keyRunes("+")}, 3},
		{"minus twice", []tea.Msg{keyRunes("-"), keyRunes("-")}, 0},
		{"minus clamps at zero", []tea.Msg{keyRunes("-"), keyRunes("-"), keyRunes("-")}, 0},
		{"edit", []tea.Msg{
			keyRunes("m"),
			tea.KeyMsg{Type: tea.KeyBackspace},
			keyRunes("7"),
			tea.KeyMsg{Type: tea.KeyEnter},
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			m := press(t, NewModel(s), tt.keys...)
			if got := s.Table(types.Monday).Records[0].Meals; got != tt.want {
				t.Errorf("Meals = %d; want %d", got, tt.want)
			}
			if m.state != stateDashboard {
				t.Errorf("state = %v; want dashboard", m.state)
			}
		})
	}
}

func TestMealEditRejectsInvalid(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s),
		keyRunes("m"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		keyRunes("x"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	if m.state != stateMealEdit {
		t.Errorf("state = %v; want meal edit to stay open", m.state)
	}
	if m.err == nil {
		t.Error("expected an error for a non-numeric meal count")
	}
	if got := s.Table(types.Monday).Records[0].Meals; got != 2 {
		t.Errorf("Meals = %d; want 2", got)
	}
}

func TestRouteAndDayNavigation(t *testing.T) {
	m := NewModel(newTestSession(t))

	m = press(t, m, keyRunes("]"))
	if got := m.currentRoute(); got != "South" {
		t.Errorf("after ] route = %q; want South", got)
	}
	m = press(t, m, keyRunes("]"))
	if got := m.currentRoute(); got != "North" {
		t.Errorf("route did not wrap: %q", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.day != types.Wednesday || m.currentRoute() != "East" {
		t.Errorf("after → day = %v route = %q; want Wednesday East", m.day, m.currentRoute())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.day != types.Monday {
		t.Errorf("day did not wrap: %v", m.day)
	}
}

func TestMarkRouteDelivered(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s), keyRunes("A"))

	if st := s.Stats(types.Monday, "North"); st.Delivered != 2 {
		t.Errorf("North delivered = %d; want 2", st.Delivered)
	}
	if !strings.Contains(m.status, "2 record(s)") {
		t.Errorf("status = %q", m.status)
	}
}

func TestAddRecordForm(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s), keyRunes("a"))
	if m.state != stateAddRecord {
		t.Fatalf("state = %v; want add record", m.state)
	}

	// Route is prefilled with the current route; fill the remaining fields.
	msgs := []tea.Msg{
		tea.KeyMsg{Type: tea.KeyEnter},
		keyRunes("C9"), tea.KeyMsg{Type: tea.KeyEnter},
		keyRunes("Dee"), tea.KeyMsg{Type: tea.KeyEnter},
		keyRunes("1 Elm St"), tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyEnter},
		keyRunes("3"), tea.KeyMsg{Type: tea.KeyEnter},
	}
	m = press(t, m, msgs...)

	if m.state != stateDashboard {
		t.Fatalf("state = %v; want dashboard (err %v)", m.state, m.err)
	}
	north := s.RouteRecords(types.Monday, "North")
	if len(north) != 3 {
		t.Fatalf("North has %d records; want 3", len(north))
	}
	got := north[2]
	if got.ClientID != "C9" || got.Name != "Dee" || got.Address != "1 Elm St" || got.Meals != 3 {
		t.Errorf("appended record = %+v", got)
	}
	if rec, ok := m.selected(); !ok || rec.ID != got.ID {
		t.Errorf("selected() = %+v; want the new record", rec)
	}
}

func TestAddRecordOnHiddenRoute(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s), keyRunes("a"))

	msgs := []tea.Msg{}
	for range "North" {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	msgs = append(msgs, keyRunes("COPO West"))
	for range fieldCount {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyEnter})
	}
	m = press(t, m, msgs...)

	if m.state != stateDashboard {
		t.Fatalf("state = %v; want dashboard (err %v)", m.state, m.err)
	}
	if got := s.RouteRecords(types.Monday, "COPO West"); len(got) != 1 {
		t.Fatalf("COPO West has %d records; want 1", len(got))
	}
	if got := m.session.DayRoutes(types.Monday)[m.routeIdx]; got != "North" {
		t.Errorf("current route = %q; want North unchanged", got)
	}
	if !strings.Contains(m.status, "COPO West") || !strings.Contains(m.status, "no tab") {
		t.Errorf("status = %q; want a note that the route has no tab", m.status)
	}
}

func TestExportKeys(t *testing.T) {
	s := newTestSession(t)
	out := s.Config().OutputDir
	m := NewModel(s)

	m = press(t, m, keyRunes("e"))
	if m.err != nil {
		t.Fatalf("export day: %v", m.err)
	}
	if _, err := os.Stat(filepath.Join(out, "2026-10-12_Monday_Delivery_Log.xlsx")); err != nil {
		t.Errorf("day export missing: %v", err)
	}

	m = press(t, m, keyRunes("E"), keyRunes("W"), keyRunes("s"))
	if m.err != nil {
		t.Fatalf("export: %v", m.err)
	}
	for _, name := range []string{
		"Week_2026-10-12_North_Delivery_Log.xlsx",
		"Week_2026-10-12_Delivery_Log.xlsx",
		"Week_2026-10-12_Session.json",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestReportLoadedMsg(t *testing.T) {
	s := newTestSession(t)
	m := NewModel(s)

	m = press(t, m, reportLoadedMsg{day: types.Tuesday, path: "tue.xlsx", err: errors.New("boom")})
	if m.err == nil || !strings.Contains(m.err.Error(), "Tuesday") {
		t.Errorf("err = %v; want a Tuesday error", m.err)
	}
	if s.Table(types.Tuesday) != nil {
		t.Error("failed upload created a Tuesday table")
	}

	loaded := &types.DayTable{
		Columns: []string{types.ColRoute, types.ColQuantity, types.ColDelivered},
		Records: []types.DeliveryRecord{{ID: "t1", Route: "West", Meals: 1}},
	}
	m = press(t, m, reportLoadedMsg{day: types.Tuesday, path: "tue.xlsx", table: loaded, headerRow: 2})
	if m.err != nil || m.day != types.Tuesday || m.currentRoute() != "West" {
		t.Errorf("day = %v route = %q err = %v", m.day, m.currentRoute(), m.err)
	}
	if s.Table(types.Tuesday) == nil || s.Table(types.Tuesday).Day != types.Tuesday {
		t.Error("Tuesday table not loaded")
	}
}

func TestSnapshotReadMsgFailureKeepsState(t *testing.T) {
	s := newTestSession(t)
	m := press(t, NewModel(s), snapshotReadMsg{path: "bad.json", data: []byte("{")})

	if !errors.Is(m.err, session.ErrSnapshotLoad) {
		t.Errorf("err = %v; want ErrSnapshotLoad", m.err)
	}
	if len(s.Days()) != 2 {
		t.Errorf("Days() = %v; want Monday and Wednesday", s.Days())
	}
}
