// Package tui is the terminal rendering of the app: one bubbletea program
// that owns the screen state and applies its effects.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/notify"
	"github.com/and161185/shiftreport/internal/screen"
	"github.com/and161185/shiftreport/internal/service"
)

// Drafts is the draft persistence used by the form.
type Drafts interface {
	Load(ctx context.Context, editing *model.Report) model.ReportPayload
	Save(ctx context.Context, p model.ReportPayload, editing bool) error
	Default() model.ReportPayload
}

// Deps are the collaborators of the UI.
type Deps struct {
	Bridge  host.Bridge
	Auth    service.AuthService
	Reports service.ReportService
	Drafts  Drafts
	Log     *zap.Logger
	Now     func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	styles Styles

	state    screen.State
	gen      uint64 // mount generation; results of older mounts are dropped
	ctx      context.Context
	cancel   context.CancelFunc
	releases []host.Release
	outbox   []tea.Msg

	busy     bool
	spinner  spinner.Model
	notifier *notify.Notifier
	popup    *host.Popup
	width    int

	auth    authView
	form    formView
	profile profileView
	list    listView
}

// New builds the root model; call Init through tea.NewProgram.
func New(d Deps) *Model {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = DefaultStyles().Cursor

	return &Model{
		deps:     d,
		styles:   DefaultStyles(),
		spinner:  sp,
		notifier: notify.New(notify.DefaultTTL),
		ctx:      context.Background(),
		cancel:   func() {},
	}
}

// State exposes the navigation state.
func (m *Model) State() screen.State { return m.state }

// Busy reports whether a request is in flight.
func (m *Model) Busy() bool { return m.busy }

// ---- messages ----

type (
	resolvedMsg struct {
		gen  uint64
		user *model.User
		err  error
	}
	registeredMsg struct {
		gen  uint64
		user *model.User
		err  error
	}
	formDataMsg struct {
		gen uint64
		ref model.FormReferenceData
		err error
	}
	sentMsg struct {
		gen     uint64
		editing bool
		err     error
	}
	renamedMsg struct {
		gen     uint64
		name    string
		changed bool
		err     error
	}
	reportsMsg struct {
		gen     uint64
		reports []model.Report
		err     error
	}
	// eventMsg is a screen event raised by a host button handler.
	eventMsg struct {
		gen uint64
		ev  screen.Event
	}
	previewMsg      struct{ gen uint64 }
	toastExpiredMsg struct{ seq uint64 }
	closeHostMsg    struct{}
	noticeMsg       struct{ n host.Notice }
)

func waitNotice(ch <-chan host.Notice) tea.Cmd {
	return func() tea.Msg { return noticeMsg{<-ch} }
}

// Init starts the bridge, listens for host notices and resolves the identity.
func (m *Model) Init() tea.Cmd {
	m.deps.Bridge.Ready()
	m.deps.Bridge.Expand()

	st, fx := screen.Start()
	cmds := []tea.Cmd{waitNotice(m.deps.Bridge.Notices())}
	m.state = st
	cmds = append(cmds, m.mount())
	cmds = append(cmds, m.apply(fx)...)
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noticeMsg:
		if msg.n.Close {
			m.teardown()
			return m, tea.Quit
		}
		m.popup = msg.n.Popup
		return m, waitNotice(m.deps.Bridge.Notices())

	case toastExpiredMsg:
		m.notifier.Expire(msg.seq)
		return m, nil

	case closeHostMsg:
		m.deps.Bridge.Close()
		return m, nil

	case tea.KeyMsg:
		return m, m.key(msg)
	}

	return m, m.result(msg)
}

// key routes a key press. Popups take precedence, then host buttons, then the screen.
func (m *Model) key(k tea.KeyMsg) tea.Cmd {
	if k.Type == tea.KeyCtrlC {
		m.teardown()
		return tea.Quit
	}
	if m.popup != nil {
		if k.Type == tea.KeyEnter || k.Type == tea.KeyEsc {
			m.popup = nil
		}
		return nil
	}
	if m.busy {
		return nil
	}

	switch k.Type {
	case tea.KeyCtrlS:
		if !m.modalOpen() {
			m.deps.Bridge.MainButton().Click()
			return m.flush()
		}
	case tea.KeyEsc:
		if m.closeModal() {
			return nil
		}
		m.deps.Bridge.BackButton().Click()
		return m.flush()
	}

	switch m.state.Screen {
	case screen.Auth:
		return m.authKey(k)
	case screen.Main:
		return m.formKey(k)
	case screen.Profile:
		return m.profileKey(k)
	case screen.EditList:
		return m.listKey(k)
	}
	return nil
}

// result handles completion messages of the current mount.
func (m *Model) result(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resolvedMsg:
		if msg.gen != m.gen {
			return nil
		}
		m.busy = false
		return m.dispatch(screen.FromResolve(msg.user, msg.err))
	case registeredMsg:
		if msg.gen != m.gen {
			return nil
		}
		return m.onRegistered(msg)
	case formDataMsg:
		if msg.gen != m.gen {
			return nil
		}
		return m.onFormData(msg)
	case sentMsg:
		if msg.gen != m.gen {
			m.deps.Log.Info("late submit result dropped", zap.Bool("failed", msg.err != nil))
			return nil
		}
		return m.onSent(msg)
	case renamedMsg:
		if msg.gen != m.gen {
			return nil
		}
		return m.onRenamed(msg)
	case reportsMsg:
		if msg.gen != m.gen {
			return nil
		}
		return m.onReports(msg)
	case eventMsg:
		if msg.gen != m.gen {
			return nil
		}
		return m.dispatch(msg.ev)
	case previewMsg:
		if msg.gen != m.gen {
			return nil
		}
		m.openPreview()
		return nil
	}
	return nil
}

// flush processes messages queued by button handlers during a click.
func (m *Model) flush() tea.Cmd {
	var cmds []tea.Cmd
	for len(m.outbox) > 0 {
		msg := m.outbox[0]
		m.outbox = m.outbox[1:]
		cmds = append(cmds, m.result(msg))
	}
	return tea.Batch(cmds...)
}

// post returns a handler queueing msg for the click in progress.
func (m *Model) post(msg tea.Msg) func() {
	return func() { m.outbox = append(m.outbox, msg) }
}

// dispatch runs a screen transition, remounting when the screen or the edit target changed.
func (m *Model) dispatch(ev screen.Event) tea.Cmd {
	prev := m.state
	next, fx := screen.Transition(m.state, ev)
	m.state = next

	var cmds []tea.Cmd
	if prev.Screen != next.Screen || prev.Editing != next.Editing {
		cmds = append(cmds, m.mount())
	}
	cmds = append(cmds, m.apply(fx)...)
	return tea.Batch(cmds...)
}

// apply performs transition effects.
func (m *Model) apply(fx []screen.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range fx {
		switch f := f.(type) {
		case screen.ShowToast:
			seq := m.notifier.Show(f.Toast, m.deps.Now())
			cmds = append(cmds, tea.Tick(m.notifier.TTL(), func(time.Time) tea.Msg { return toastExpiredMsg{seq} }))
		case screen.ResolveIdentity:
			cmds = append(cmds, m.resolve())
		case screen.CloseHost:
			cmds = append(cmds, tea.Tick(f.After, func(time.Time) tea.Msg { return closeHostMsg{} }))
		}
	}
	return cmds
}

// teardown ends the current mount: read requests are cancelled and host buttons released.
func (m *Model) teardown() {
	m.cancel()
	for _, r := range m.releases {
		r()
	}
	m.releases = nil
	m.outbox = nil
}

// mount starts a new generation for the current screen.
func (m *Model) mount() tea.Cmd {
	m.teardown()
	m.gen++
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.busy = false

	switch m.state.Screen {
	case screen.Loading:
		m.busy = true
		return m.spinner.Tick
	case screen.Auth:
		return m.mountAuth()
	case screen.Main:
		return m.mountForm()
	case screen.Profile:
		return m.mountProfile()
	case screen.EditList:
		return m.mountList()
	}
	return nil
}

// attach installs a host button handler owned by the current mount.
func (m *Model) attach(b *host.Button, text string, msg tea.Msg) {
	m.releases = append(m.releases, b.Attach(text, m.post(msg)))
}

// resolve looks up the launching user; issued from the loading screen.
func (m *Model) resolve() tea.Cmd {
	gen, ctx, auth := m.gen, m.ctx, m.deps.Auth
	tgID := ""
	if id, ok := m.deps.Bridge.Identity(); ok {
		tgID = id.IDString()
	}
	m.busy = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		u, err := auth.Resolve(ctx, tgID)
		return resolvedMsg{gen: gen, user: u, err: err}
	})
}

// startBusy marks a request in flight and keeps the spinner moving.
func (m *Model) startBusy(cmd tea.Cmd) tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m *Model) modalOpen() bool {
	return m.form.preview || m.form.reason || m.profile.renaming
}

// closeModal closes the open modal, if any.
func (m *Model) closeModal() bool {
	switch {
	case m.form.reason:
		m.form.reason = false
		m.form.focusField()
	case m.form.preview:
		m.form.preview = false
		m.form.focusField()
	case m.profile.renaming:
		m.profile.renaming = false
	default:
		return false
	}
	return true
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	ti.Width = 40
	return ti
}

// updateInput feeds k to the input and reports whether its value changed.
func updateInput(in *textinput.Model, k tea.KeyMsg) (bool, tea.Cmd) {
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(k)
	return in.Value() != before, cmd
}

// toastError shows an error notification outside of a transition.
func (m *Model) toastError(msg string) tea.Cmd {
	return tea.Batch(m.apply([]screen.Effect{screen.ShowToast{Toast: model.Toast{Message: msg, Kind: model.ToastError}}})...)
}
