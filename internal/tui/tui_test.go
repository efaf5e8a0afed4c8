package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/screen"
	"github.com/and161185/shiftreport/internal/service"
)

type fakeAuth struct {
	user        *model.User
	resolveErr  error
	registerErr error
	resolves    int
}

func (f *fakeAuth) Resolve(_ context.Context, tgID string) (*model.User, error) {
	f.resolves++
	if tgID == "" {
		return nil, errs.ErrNoIdentity
	}
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.user == nil {
		return nil, errs.ErrNotFound
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAuth) Register(_ context.Context, tgID, name, _ string) (*model.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.user = &model.User{TgID: tgID, DriverName: name, Role: model.RoleDriver}
	u := *f.user
	return &u, nil
}

func (f *fakeAuth) Rename(_ context.Context, u model.User, newName string) (string, bool, error) {
	name, err := form.ValidateRename(newName)
	if err != nil {
		return "", false, err
	}
	return name, name != u.DriverName, nil
}

type fakeReports struct {
	ref       model.FormReferenceData
	recent    []model.Report
	submitErr error
	submitted []model.ReportPayload
	reasons   []string
}

func (f *fakeReports) ReferenceData(context.Context) (model.FormReferenceData, error) {
	return f.ref, nil
}
func (f *fakeReports) Submit(_ context.Context, _ model.User, p model.ReportPayload) (model.SubmitResult, error) {
	if f.submitErr != nil {
		return model.SubmitResult{}, f.submitErr
	}
	f.submitted = append(f.submitted, p)
	return model.SubmitResult{Success: true, ReportID: 100}, nil
}
func (f *fakeReports) Edit(_ context.Context, _ model.User, r model.Report, _ model.ReportPayload, reason string) (model.SubmitResult, error) {
	f.reasons = append(f.reasons, reason)
	return model.SubmitResult{Success: true, ReportID: r.ReportID}, nil
}
func (f *fakeReports) Recent(context.Context, model.User) ([]model.Report, error) {
	return f.recent, nil
}

type memDrafts struct {
	p     model.ReportPayload
	saves int
}

func (d *memDrafts) Load(_ context.Context, ed *model.Report) model.ReportPayload {
	if ed != nil {
		return ed.Payload
	}
	return d.p
}
func (d *memDrafts) Save(_ context.Context, p model.ReportPayload, editing bool) error {
	if !editing {
		d.p = p
		d.saves++
	}
	return nil
}
func (d *memDrafts) Default() model.ReportPayload { return model.ReportPayload{Date: "2026-10-17"} }

var _ service.AuthService = (*fakeAuth)(nil)
var _ service.ReportService = (*fakeReports)(nil)
var _ Drafts = (*memDrafts)(nil)

type harness struct {
	m       *Model
	bridge  *host.StandIn
	alerts  *bytes.Buffer
	auth    *fakeAuth
	reports *fakeReports
	drafts  *memDrafts
}

func newHarness(t *testing.T, user *model.User, draft model.ReportPayload) *harness {
	t.Helper()
	alerts := &bytes.Buffer{}
	log := zaptest.NewLogger(t)
	h := &harness{
		bridge: host.NewStandIn(alerts, log),
		alerts: alerts,
		auth:   &fakeAuth{user: user},
		reports: &fakeReports{
			ref: model.FormReferenceData{
				Vehicles: []model.Vehicle{{VehicleName: "КАМАЗ"}},
				Trailers: []model.Trailer{{VehicleName: "ПР-1"}},
			},
			recent: []model.Report{
				{ReportID: 9, Status: "ok", Payload: validPayload("Старый")},
				{ReportID: 8, Status: "ok"},
			},
		},
		drafts: &memDrafts{p: draft},
	}
	h.m = New(Deps{
		Bridge:  h.bridge,
		Auth:    h.auth,
		Reports: h.reports,
		Drafts:  h.drafts,
		Log:     log,
		Now:     func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) },
	})
	return h
}

func validPayload(project string) model.ReportPayload {
	return model.ReportPayload{
		Date: "2026-10-17", Project: project, Vehicle: "КАМАЗ", Address: "Мосфильм",
		ShiftStart: "08:00", ShiftEnd: "21:10",
	}
}

// collect runs cmd and returns the messages it produces. Timers (spinner,
// toast, host close) and the host notice listener are not awaited.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		_, next := h.m.Update(msg)
		h.run(next)
	}
}

func (h *harness) start() { h.run(h.m.Init()) }

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		_, cmd := h.m.Update(keyMsg(k))
		h.run(cmd)
	}
}

func (h *harness) typeText(s string) {
	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	h.run(cmd)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

var driver = &model.User{TgID: "7573758625", DriverName: "Иванов Иван", Role: model.RoleDriver}

func TestStartup_KnownUserOpensForm(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{Date: "2026-10-17"})
	h.start()

	st := h.m.State()
	require.Equal(t, screen.Main, st.Screen)
	require.Equal(t, "Иванов Иван", st.User.DriverName)
	require.False(t, h.m.Busy())
	require.Equal(t, host.ButtonState{Text: MainButtonText, Visible: true}, h.bridge.MainButton().State())
	require.False(t, h.bridge.BackButton().State().Visible)
	require.Equal(t, []string{"КАМАЗ"}, h.m.form.f.Ref.VehicleNames())
	require.Contains(t, h.m.View(), "Отчёт о смене")
}

func TestStandIn_MainButtonRendersAsTriggerLine(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{Date: "2026-10-17"})
	h.start()

	line := h.bridge.TriggerLine()
	require.Equal(t, "[ "+MainButtonText+" ]", line)
	require.Contains(t, h.m.View(), line)
}

func TestStartup_UnknownUserRegisters(t *testing.T) {
	h := newHarness(t, nil, model.ReportPayload{Date: "2026-10-17"})
	h.start()
	require.Equal(t, screen.Auth, h.m.State().Screen)
	require.Equal(t, "Test User", h.m.auth.input.Value())
	require.False(t, h.bridge.MainButton().State().Visible)

	// короткое имя отклоняется без запроса
	for range []rune("Test User") {
		h.press("backspace")
	}
	h.typeText("Ив")
	h.press("enter")
	require.Equal(t, screen.Auth, h.m.State().Screen)
	require.Equal(t, form.ErrNameTooShort.Error(), h.m.auth.err)

	h.typeText("анов Иван")
	h.press("enter")
	require.Equal(t, screen.Main, h.m.State().Screen)
	require.Equal(t, "Иванов Иван", h.m.State().User.DriverName)
	require.Contains(t, h.m.View(), "Вход выполнен успешно!")
}

func TestStartup_AlreadyRegisteredResolvesAgain(t *testing.T) {
	h := newHarness(t, nil, model.ReportPayload{})
	h.start()
	require.Equal(t, screen.Auth, h.m.State().Screen)

	h.auth.registerErr = errs.ErrAlreadyRegistered
	h.auth.user = driver
	h.press("enter")
	require.Equal(t, screen.Main, h.m.State().Screen)
	require.Equal(t, 2, h.auth.resolves)
}

func TestStartup_NetworkFailureShowsAuthWithToast(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{})
	h.auth.resolveErr = &service.UserError{Message: "Ошибка сети. Не удалось связаться с сервером."}
	h.start()
	require.Equal(t, screen.Auth, h.m.State().Screen)
	require.Contains(t, h.m.View(), "Ошибка сети. Не удалось связаться с сервером.")
}

func TestForm_InvalidBlocksPreview(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{Date: "2026-10-17"})
	h.start()

	h.press("ctrl+s")
	require.False(t, h.m.form.preview)
	require.True(t, h.m.form.f.Errors.Has(form.FieldProject))
	require.Empty(t, h.reports.submitted)
}

func TestForm_TypingPersistsDraft(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{Date: "2026-10-17"})
	h.start()

	h.press("down") // проект
	h.typeText("Кино")
	require.Equal(t, "Кино", h.drafts.p.Project)

	h.press("down") // техника
	h.press("right")
	require.Equal(t, "КАМАЗ", h.drafts.p.Vehicle)
	require.Equal(t, 2, h.drafts.saves)
}

func TestForm_SubmitResetsAndSchedulesClose(t *testing.T) {
	h := newHarness(t, driver, validPayload("Сериал"))
	h.start()

	h.press("ctrl+s")
	require.True(t, h.m.form.preview)
	require.Contains(t, h.m.View(), "Переработка: 1 ч. 15 мин.")

	h.press("enter")
	require.Len(t, h.reports.submitted, 1)
	require.Equal(t, "Сериал", h.reports.submitted[0].Project)
	require.Equal(t, model.ReportPayload{Date: "2026-10-17"}, h.m.form.f.Payload)
	require.Contains(t, h.m.View(), "Отчет успешно отправлен!")
	require.Equal(t, screen.Main, h.m.State().Screen)
}

func TestForm_SubmitFailureShowsPopupAndKeepsForm(t *testing.T) {
	h := newHarness(t, driver, validPayload("Сериал"))
	h.reports.submitErr = &service.SubmitError{Title: "Ошибка сети", Message: "Не удалось отправить отчет. Данные сохранены в черновике."}
	h.start()

	h.press("ctrl+s", "enter")
	require.Contains(t, h.alerts.String(), "Ошибка сети\n\nНе удалось отправить отчет. Данные сохранены в черновике.")
	require.Equal(t, "Сериал", h.m.form.f.Payload.Project)
	require.False(t, h.m.Busy())
}

func TestEditFlow_ReasonGateAndReturnToProfile(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{Date: "2026-10-17", Project: "черновик"})
	h.start()

	h.press("ctrl+o")
	require.Equal(t, screen.Profile, h.m.State().Screen)
	require.False(t, h.bridge.MainButton().State().Visible, "main button released on unmount")
	require.True(t, h.bridge.BackButton().State().Visible)

	h.press("down", "enter")
	require.Equal(t, screen.EditList, h.m.State().Screen)
	require.Len(t, h.m.list.reports, 2)
	require.Contains(t, h.m.View(), "Старый")
	require.Contains(t, h.m.View(), "Без проекта")

	h.press("enter")
	st := h.m.State()
	require.Equal(t, screen.Main, st.Screen)
	require.EqualValues(t, 9, st.Editing.ReportID)
	require.Equal(t, "Старый", h.m.form.f.Payload.Project)
	require.Contains(t, h.m.View(), "Редактирование (ID: 9)")

	h.press("ctrl+s", "enter")
	require.True(t, h.m.form.reason)

	h.typeText("abc")
	h.press("enter")
	require.Empty(t, h.reports.reasons, "3-character reason is blocked")
	require.Equal(t, form.ErrReasonTooShort.Error(), h.m.form.reasonErr)

	h.typeText("d")
	h.press("enter")
	require.Equal(t, []string{"abcd"}, h.reports.reasons)
	require.Equal(t, screen.Profile, h.m.State().Screen)
	require.Nil(t, h.m.State().Editing)
	require.Contains(t, h.m.View(), "Отчет успешно отредактирован!")
	require.Equal(t, "черновик", h.drafts.p.Project, "field changes while editing are not saved as the draft")
}

func TestEditFlow_BackButtonCancelsEdit(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{})
	h.start()
	h.press("ctrl+o", "down", "enter", "enter")
	require.NotNil(t, h.m.State().Editing)

	h.press("esc")
	require.Equal(t, screen.EditList, h.m.State().Screen)
	require.Nil(t, h.m.State().Editing)

	h.press("esc")
	require.Equal(t, screen.Profile, h.m.State().Screen)
	h.press("esc")
	require.Equal(t, screen.Main, h.m.State().Screen)
	require.False(t, h.bridge.BackButton().State().Visible)
}

func TestProfile_RenameAndLogout(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{})
	h.start()
	h.press("ctrl+o", "enter")
	require.True(t, h.m.profile.renaming)

	for range []rune("Иванов Иван") {
		h.press("backspace")
	}
	h.typeText("Петров Пётр")
	h.press("enter")
	require.False(t, h.m.profile.renaming)
	require.Equal(t, "Петров Пётр", h.m.State().User.DriverName)
	require.Contains(t, h.m.View(), "ФИО успешно изменено!")

	h.press("down", "down", "enter")
	require.Equal(t, screen.Auth, h.m.State().Screen)
	require.Nil(t, h.m.State().User)
}

func TestStaleResultsAreDropped(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{})
	h.start()
	h.press("ctrl+o", "down", "enter")
	require.Equal(t, screen.EditList, h.m.State().Screen)

	old := h.m.gen - 1
	h.m.Update(reportsMsg{gen: old, err: errors.New("late")})
	require.Empty(t, h.m.list.err)

	h.m.Update(eventMsg{gen: old, ev: screen.Logout{}})
	require.Equal(t, screen.EditList, h.m.State().Screen)
}

func TestPopupNotice(t *testing.T) {
	h := newHarness(t, driver, model.ReportPayload{})
	h.start()
	h.m.Update(noticeMsg{n: host.Notice{Popup: &host.Popup{Title: "Ошибка", Message: "текст"}}})
	require.True(t, strings.Contains(h.m.View(), "текст"))

	h.press("ctrl+s")
	require.False(t, h.m.form.preview, "keys go to the popup first")
	h.press("enter")
	require.Nil(t, h.m.popup)

	_, cmd := h.m.Update(noticeMsg{n: host.Notice{Close: true}})
	require.NotNil(t, cmd)
	require.False(t, h.bridge.MainButton().State().Visible)
}

func TestShortDate(t *testing.T) {
	t.Parallel()
	require.Equal(t, "17 окт.", shortDate("2026-10-17"))
	require.Equal(t, "??:??", shortDate(""))
}
