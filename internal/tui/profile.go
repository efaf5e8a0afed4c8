package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/screen"
)

type profileItem int

const (
	itemRename profileItem = iota
	itemEditList
	itemLogout
)

var profileItems = []string{"Сменить ФИО", "Редактировать отчеты", "Выйти"}

type profileView struct {
	cursor   int
	renaming bool
	input    textinput.Model
	err      string
}

func (m *Model) mountProfile() tea.Cmd {
	m.profile = profileView{}
	m.attach(m.deps.Bridge.BackButton(), "", eventMsg{gen: m.gen, ev: screen.OpenMain{}})
	return nil
}

func (m *Model) profileKey(k tea.KeyMsg) tea.Cmd {
	v := &m.profile
	if v.renaming {
		if k.Type == tea.KeyEnter {
			return m.rename()
		}
		ch, cmd := updateInput(&v.input, k)
		if ch {
			v.err = ""
		}
		return cmd
	}

	switch k.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(profileItems)-1 {
			v.cursor++
		}
	case "enter":
		switch profileItem(v.cursor) {
		case itemRename:
			v.renaming = true
			v.err = ""
			v.input = newInput("Иванов Иван Иванович", form.MaxName)
			v.input.SetValue(m.state.User.DriverName)
			v.input.CursorEnd()
			return v.input.Focus()
		case itemEditList:
			return m.dispatch(screen.OpenEditList{})
		case itemLogout:
			return m.dispatch(screen.Logout{})
		}
	}
	return nil
}

func (m *Model) rename() tea.Cmd {
	v := &m.profile
	if _, err := form.ValidateRename(v.input.Value()); err != nil {
		v.err = err.Error()
		return nil
	}
	gen, user, name, auth := m.gen, *m.state.User, v.input.Value(), m.deps.Auth
	return m.startBusy(func() tea.Msg {
		got, changed, err := auth.Rename(context.Background(), user, name)
		return renamedMsg{gen: gen, name: got, changed: changed, err: err}
	})
}

func (m *Model) onRenamed(msg renamedMsg) tea.Cmd {
	m.busy = false
	v := &m.profile
	if msg.err != nil {
		v.err = msg.err.Error()
		return nil
	}
	v.renaming = false
	if !msg.changed {
		return nil
	}
	return m.dispatch(screen.NameChanged{Name: msg.name})
}

func (m *Model) profileView() string {
	s, v := m.styles, &m.profile
	u := m.state.User
	out := s.Title.Render("Профиль") + "\n" +
		s.Value.Render(u.DriverName) + "\n" +
		s.Label.Render("ID: "+u.TgID) + "\n\n"
	for i, item := range profileItems {
		marker := "  "
		if i == v.cursor {
			marker = s.Cursor.Render("› ")
		}
		out += marker + item + "\n"
	}
	if v.renaming {
		body := s.Title.Render("Сменить ФИО") + "\n" +
			s.Label.Render("Новое ФИО") + "\n" + v.input.View()
		if v.err != "" {
			body += "\n" + s.Error.Render(v.err)
		}
		body += "\n\n" + s.Button.Render("Сменить") + s.Hint.Render("  enter · esc — отмена")
		out += "\n" + s.Modal.Render(body) + "\n"
	}
	return out
}
