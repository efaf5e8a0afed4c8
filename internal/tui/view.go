package tui

import (
	"strings"

	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/screen"
)

// View implements tea.Model.
func (m *Model) View() string {
	s := m.styles
	var b strings.Builder

	switch m.state.Screen {
	case screen.Loading:
		b.WriteString(m.spinner.View() + " Загрузка...\n")
	case screen.Auth:
		b.WriteString(m.authView() + "\n")
	case screen.Main:
		b.WriteString(m.formView())
	case screen.Profile:
		b.WriteString(m.profileView())
	case screen.EditList:
		b.WriteString(m.listView())
	}
	if m.busy && m.state.Screen != screen.Loading {
		b.WriteString("\n" + m.spinner.View() + " Загрузка...\n")
	}

	if m.popup != nil {
		body := s.Title.Render(m.popup.Title) + "\n" + m.popup.Message + "\n\n" + s.Hint.Render("enter — OK")
		b.WriteString("\n" + s.Popup.Render(body) + "\n")
	}

	if t, ok := m.notifier.Current(m.deps.Now()); ok {
		st := s.ToastOK
		if t.Kind == model.ToastError {
			st = s.ToastErr
		}
		b.WriteString("\n" + st.Render(t.Message) + "\n")
	}

	b.WriteString("\n" + m.buttonBar())
	return b.String()
}

// buttonBar renders the host buttons the way the platform would show them.
func (m *Model) buttonBar() string {
	s := m.styles
	var parts []string
	if st := m.deps.Bridge.BackButton().State(); st.Visible {
		parts = append(parts, s.Back.Render("‹ Назад")+s.Hint.Render(" esc"))
	}
	if si, ok := m.deps.Bridge.(*host.StandIn); ok {
		if line := si.TriggerLine(); line != "" {
			parts = append(parts, s.Button.Render(line)+s.Hint.Render(" ctrl+s"))
		}
	} else if st := m.deps.Bridge.MainButton().State(); st.Visible {
		parts = append(parts, s.Button.Render(st.Text)+s.Hint.Render(" ctrl+s"))
	}
	parts = append(parts, s.Hint.Render("ctrl+c — выход"))
	return strings.Join(parts, "   ")
}
