package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/screen"
)

type authView struct {
	input textinput.Model
	err   string
}

func (m *Model) mountAuth() tea.Cmd {
	m.auth = authView{input: newInput("Иванов Иван Иванович", form.MaxName)}
	if id, ok := m.deps.Bridge.Identity(); ok {
		m.auth.input.SetValue(id.DisplayName())
	}
	m.auth.input.CursorEnd()
	return m.auth.input.Focus()
}

func (m *Model) authKey(k tea.KeyMsg) tea.Cmd {
	if k.Type != tea.KeyEnter {
		changed, cmd := updateInput(&m.auth.input, k)
		if changed {
			m.auth.err = ""
		}
		return cmd
	}

	id, ok := m.deps.Bridge.Identity()
	if !ok {
		m.auth.err = screen.MsgNoIdentity
		return nil
	}
	name := m.auth.input.Value()
	if err := form.ValidateName(name); err != nil {
		m.auth.err = err.Error()
		return nil
	}

	m.auth.err = ""
	gen, auth := m.gen, m.deps.Auth
	return m.startBusy(func() tea.Msg {
		// регистрация не отменяется при уходе с экрана
		u, err := auth.Register(context.Background(), id.IDString(), name, id.Username)
		return registeredMsg{gen: gen, user: u, err: err}
	})
}

func (m *Model) onRegistered(msg registeredMsg) tea.Cmd {
	m.busy = false
	switch {
	case msg.err == nil && msg.user != nil:
		return m.dispatch(screen.Registered{User: *msg.user})
	case errors.Is(msg.err, errs.ErrAlreadyRegistered):
		return m.dispatch(screen.AlreadyRegistered{})
	case errors.Is(msg.err, errs.ErrNoIdentity):
		m.auth.err = screen.MsgNoIdentity
	case msg.err != nil:
		m.auth.err = msg.err.Error()
	}
	return nil
}

func (m *Model) authView() string {
	s := m.styles
	out := s.Title.Render("Добро пожаловать") + "\n" +
		s.Hint.Render("Для начала работы, пожалуйста, введите ваше ФИО. Оно будет использоваться во всех отчетах.") + "\n\n" +
		s.Label.Render("Ваше ФИО") + "\n" + m.auth.input.View() + "\n"
	if m.auth.err != "" {
		out += s.Error.Render(m.auth.err) + "\n"
	}
	label := "Сохранить и войти"
	if m.busy {
		label = "Сохранение..."
	}
	return out + "\n" + s.Button.Render(label) + s.Hint.Render("  enter")
}
