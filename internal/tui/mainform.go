package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/screen"
	"github.com/and161185/shiftreport/internal/service"
)

// MainButtonText is the caption of the host main button on the form.
const MainButtonText = "ПРЕДПРОСМОТР"

const reasonPrompt = "Укажите причину редактирования (обязательно):"

type formView struct {
	f      *form.Form
	cursor int
	input  textinput.Model

	preview   bool
	reason    bool
	reasonIn  textinput.Model
	reasonErr string
	suggest   int
}

var placeholders = map[form.Field]string{
	form.FieldDate:         "ГГГГ-ММ-ДД",
	form.FieldProject:      "Название проекта",
	form.FieldAddress:      "Где вы работали",
	form.FieldShiftStart:   "ЧЧ:ММ",
	form.FieldShiftEnd:     "ЧЧ:ММ",
	form.FieldTrailerStart: "ЧЧ:ММ",
	form.FieldTrailerEnd:   "ЧЧ:ММ",
	form.FieldOverrun:      "0",
	form.FieldComment:      "Любые детали, проблемы, заметки...",
}

var charLimits = map[form.Field]int{
	form.FieldDate:         10,
	form.FieldProject:      form.MaxProject,
	form.FieldAddress:      form.MaxAddress,
	form.FieldShiftStart:   5,
	form.FieldShiftEnd:     5,
	form.FieldTrailerStart: 5,
	form.FieldTrailerEnd:   5,
	form.FieldOverrun:      4,
	form.FieldComment:      form.MaxComment,
}

func isText(f form.Field) bool {
	_, ok := placeholders[f]
	return ok
}

// current returns the field under the cursor, clamping the cursor to the visible fields.
func (v *formView) current() form.Field {
	fields := v.f.VisibleFields()
	if v.cursor >= len(fields) {
		v.cursor = len(fields) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	return fields[v.cursor]
}

// focusField binds the text input to the field under the cursor.
func (v *formView) focusField() {
	fl := v.current()
	if !isText(fl) {
		v.input.Blur()
		return
	}
	v.input = newInput(placeholders[fl], charLimits[fl])
	v.input.SetValue(v.f.Get(fl))
	v.input.CursorEnd()
	v.input.Focus()
	v.suggest = 0
}

func (v *formView) move(delta int) {
	n := len(v.f.VisibleFields())
	v.cursor = ((v.cursor+delta)%n + n) % n
	v.focusField()
}

func (m *Model) mountForm() tea.Cmd {
	ed := m.state.Editing
	m.form = formView{f: form.New(m.deps.Drafts.Load(m.ctx, ed), ed)}
	m.form.focusField()

	m.attach(m.deps.Bridge.MainButton(), MainButtonText, previewMsg{gen: m.gen})
	if ed != nil {
		m.attach(m.deps.Bridge.BackButton(), "", eventMsg{gen: m.gen, ev: screen.CancelEdit{}})
	}

	gen, ctx, reports := m.gen, m.ctx, m.deps.Reports
	return m.startBusy(func() tea.Msg {
		ref, err := reports.ReferenceData(ctx)
		return formDataMsg{gen: gen, ref: ref, err: err}
	})
}

func (m *Model) onFormData(msg formDataMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.deps.Log.Warn("form data unavailable", zap.Error(msg.err))
	}
	m.form.f.Ref = msg.ref
	return nil
}

// changed persists the payload after an edit.
func (m *Model) changed() {
	v := &m.form
	if err := m.deps.Drafts.Save(m.ctx, v.f.Payload, v.f.IsEditing()); err != nil {
		m.deps.Log.Warn("draft save failed", zap.Error(err))
	}
}

func (m *Model) formKey(k tea.KeyMsg) tea.Cmd {
	v := &m.form
	switch {
	case v.reason:
		if k.Type == tea.KeyEnter {
			return m.submitEdit()
		}
		ch, cmd := updateInput(&v.reasonIn, k)
		if ch {
			v.reasonErr = ""
		}
		return cmd
	case v.preview:
		if k.Type == tea.KeyEnter {
			return m.confirm()
		}
		return nil
	}

	switch k.String() {
	case "up", "shift+tab":
		v.move(-1)
		return nil
	case "down", "tab":
		v.move(1)
		return nil
	case "ctrl+o":
		return m.dispatch(screen.OpenProfile{})
	}

	fl := v.current()
	switch {
	case fl == form.FieldVehicle || fl == form.FieldTrailer:
		delta := 0
		switch k.String() {
		case "left":
			delta = -1
		case "right", " ", "enter":
			delta = 1
		}
		if delta != 0 && v.f.Cycle(fl, delta) {
			m.changed()
		}
		return nil
	case fl == form.FieldTrailerDiffTime:
		switch k.String() {
		case " ", "enter", "left", "right":
			v.f.ToggleTrailerDiff()
			m.changed()
		}
		return nil
	case fl == form.FieldProject && k.String() == "ctrl+p":
		if sug := v.f.Suggestions(""); len(sug) > 0 {
			name := sug[v.suggest%len(sug)]
			v.suggest++
			v.f.Set(fl, name)
			v.input.SetValue(name)
			v.input.CursorEnd()
			m.changed()
		}
		return nil
	}

	if k.Type == tea.KeyEnter {
		v.move(1)
		return nil
	}
	ch, cmd := updateInput(&v.input, k)
	if ch && v.f.Set(fl, v.input.Value()) {
		if got := v.f.Get(fl); got != v.input.Value() {
			v.input.SetValue(got)
		}
		m.changed()
	}
	return cmd
}

// openPreview validates and shows the confirmation; invalid fields get flagged.
func (m *Model) openPreview() {
	v := &m.form
	if m.state.Screen != screen.Main || m.modalOpen() || m.busy {
		return
	}
	if !v.f.Validate() {
		m.deps.Bridge.Haptic(host.FeedbackError)
		return
	}
	v.input.Blur()
	v.preview = true
}

func (m *Model) confirm() tea.Cmd {
	v := &m.form
	v.preview = false
	if !v.f.Validate() {
		v.focusField()
		return nil
	}
	if v.f.IsEditing() {
		v.reason = true
		v.reasonErr = ""
		v.reasonIn = newInput("", 200)
		return v.reasonIn.Focus()
	}

	gen, user, p, reports := m.gen, *m.state.User, v.f.Payload, m.deps.Reports
	return m.startBusy(func() tea.Msg {
		// отправка не отменяется при уходе с экрана
		_, err := reports.Submit(context.Background(), user, p)
		return sentMsg{gen: gen, err: err}
	})
}

func (m *Model) submitEdit() tea.Cmd {
	v := &m.form
	reason, err := form.ValidateReason(v.reasonIn.Value())
	if err != nil {
		m.deps.Bridge.Haptic(host.FeedbackError)
		v.reasonErr = err.Error()
		return nil
	}
	v.reason = false

	gen, user, rep, p, reports := m.gen, *m.state.User, *v.f.Editing, v.f.Payload, m.deps.Reports
	return m.startBusy(func() tea.Msg {
		_, err := reports.Edit(context.Background(), user, rep, p, reason)
		return sentMsg{gen: gen, editing: true, err: err}
	})
}

func (m *Model) onSent(msg sentMsg) tea.Cmd {
	m.busy = false
	v := &m.form
	if msg.err == nil {
		m.deps.Bridge.Haptic(host.FeedbackSuccess)
		if msg.editing {
			return m.dispatch(screen.ReportEdited{})
		}
		ref := v.f.Ref
		v.f = form.New(m.deps.Drafts.Default(), nil)
		v.f.Ref = ref
		v.cursor = 0
		v.focusField()
		return m.dispatch(screen.ReportSubmitted{})
	}

	m.deps.Bridge.Haptic(host.FeedbackError)
	var se *service.SubmitError
	switch {
	case errors.As(msg.err, &se):
		m.deps.Bridge.ShowPopup(host.Popup{Title: se.Title, Message: se.Message})
	case errors.Is(msg.err, errs.ErrValidation):
		v.reason = true
		v.reasonErr = msg.err.Error()
	default:
		m.deps.Bridge.ShowPopup(host.Popup{Title: "Ошибка", Message: msg.err.Error()})
	}
	v.focusField()
	return nil
}

func (m *Model) formView() string {
	s, v := m.styles, &m.form
	user := model.User{}
	if m.state.User != nil {
		user = *m.state.User
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.f.Title(user)) + s.Hint.Render("  ctrl+o — профиль") + "\n")

	cur := v.current()
	for _, fl := range v.f.VisibleFields() {
		marker := "  "
		if fl == cur {
			marker = s.Cursor.Render("› ")
		}
		label := s.Label.Render(fl.Label())
		if v.f.Errors.Has(fl) {
			label = s.Error.Render(fl.Label() + " *")
		}

		var val string
		switch {
		case fl == cur && isText(fl) && !m.modalOpen():
			val = v.input.View()
		case fl == form.FieldVehicle || fl == form.FieldTrailer:
			val = "‹ " + form.ChoiceLabel(fl, v.f.Get(fl)) + " ›"
		case fl == form.FieldTrailerDiffTime:
			val = "[ ]"
			if v.f.Payload.TrailerDiffTime {
				val = "[x]"
			}
		default:
			val = s.Value.Render(v.f.Get(fl))
		}
		b.WriteString(marker + label + ": " + val + "\n")

		if fl == cur && fl == form.FieldProject {
			if sug := v.f.Suggestions(""); len(sug) > 0 {
				b.WriteString(s.Hint.Render("    недавние (ctrl+p): "+strings.Join(sug, ", ")) + "\n")
			}
		}
	}

	switch {
	case v.preview:
		var body strings.Builder
		body.WriteString(s.Title.Render(v.f.PreviewTitle()) + "\n")
		for _, l := range v.f.Preview(user) {
			body.WriteString(s.Label.Render(l.Label+":") + " " + s.Value.Render(l.Value) + "\n")
		}
		body.WriteString("\n" + s.Button.Render(v.f.ConfirmText()) + s.Hint.Render("  enter · esc — отмена"))
		b.WriteString("\n" + s.Modal.Render(body.String()) + "\n")
	case v.reason:
		body := s.Label.Render(reasonPrompt) + "\n" + v.reasonIn.View()
		if v.reasonErr != "" {
			body += "\n" + s.Error.Render(v.reasonErr)
		}
		b.WriteString("\n" + s.Modal.Render(body) + "\n")
	}
	return b.String()
}
