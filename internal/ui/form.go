package ui

import (
	"strings"

	"github.com/nconklindev/mealroute/internal/report"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Fields of the add-record form, in tab order.
const (
	fieldRoute = iota
	fieldClientID
	fieldName
	fieldAddress
	fieldPhone
	fieldMeals
	fieldCount
)

var fieldLabels = [fieldCount]string{
	types.ColRoute,
	types.ColClientID,
	types.ColClientName,
	types.ColAddress,
	types.ColPhone,
	types.ColQuantity,
}

type recordForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newRecordForm(route string) recordForm {
	var f recordForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldMeals].CharLimit = 6
	f.inputs[fieldMeals].Placeholder = "1"
	f.inputs[fieldRoute].SetValue(route)
	f.inputs[fieldRoute].Focus()
	return f
}

// next moves focus forward (or backward for delta -1), wrapping around.
func (f *recordForm) next(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *recordForm) last() bool {
	return f.focus == fieldCount-1
}

func (f recordForm) update(msg tea.Msg) (recordForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// record builds the draft record. A blank meal count means one meal.
func (f recordForm) record() types.DeliveryRecord {
	meals := 1
	if v := strings.TrimSpace(f.inputs[fieldMeals].Value()); v != "" {
		meals = report.ParseMeals(v)
	}
	return types.DeliveryRecord{
		Route:    f.inputs[fieldRoute].Value(),
		ClientID: f.inputs[fieldClientID].Value(),
		Name:     f.inputs[fieldName].Value(),
		Address:  f.inputs[fieldAddress].Value(),
		Phone:    f.inputs[fieldPhone].Value(),
		Meals:    meals,
	}
}

func (f recordForm) view() string {
	var s strings.Builder
	for i, in := range f.inputs {
		label := UnselectedStyle.Render(padRight(fieldLabels[i], 16))
		if i == f.focus {
			label = SelectedStyle.Render(padRight(fieldLabels[i], 16))
		}
		s.WriteString(label)
		s.WriteString(in.View())
		s.WriteString("\n")
	}
	return s.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
