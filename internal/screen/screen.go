// Package screen is the top-level navigation state machine. Transition is pure:
// side effects are returned to the caller as values.
package screen

import (
	"errors"
	"time"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/model"
)

// Screen is the visible screen.
type Screen int

const (
	Loading Screen = iota
	Auth
	Main
	Profile
	EditList
)

func (s Screen) String() string {
	switch s {
	case Loading:
		return "loading"
	case Auth:
		return "auth"
	case Main:
		return "main"
	case Profile:
		return "profile"
	case EditList:
		return "editList"
	}
	return "unknown"
}

// needsUser reports whether the screen may only be shown to a resolved user.
func (s Screen) needsUser() bool { return s == Main || s == Profile || s == EditList }

// State is owned by the root model and replaced on every transition.
type State struct {
	Screen  Screen
	User    *model.User
	Editing *model.Report
}

// CloseDelay keeps the submit confirmation visible before the host closes.
const CloseDelay = 1500 * time.Millisecond

// Notification texts.
const (
	MsgLoggedIn    = "Вход выполнен успешно!"
	MsgNameChanged = "ФИО успешно изменено!"
	MsgSubmitted   = "Отчет успешно отправлен!"
	MsgEdited      = "Отчет успешно отредактирован!"
	MsgNoIdentity  = "Не удалось получить данные Telegram."
)

// Event drives a transition.
type Event interface{ isEvent() }

type (
	IdentityResolved  struct{ User model.User }
	IdentityUnknown   struct{}
	IdentityFailed    struct{ Message string }
	IdentityMissing   struct{}
	Registered        struct{ User model.User }
	AlreadyRegistered struct{}
	OpenProfile       struct{}
	OpenMain          struct{}
	OpenEditList      struct{}
	BackToProfile     struct{}
	StartEdit         struct{ Report model.Report }
	CancelEdit        struct{}
	NameChanged       struct{ Name string }
	ReportSubmitted   struct{}
	ReportEdited      struct{}
	Logout            struct{}
)

func (IdentityResolved) isEvent()  {}
func (IdentityUnknown) isEvent()   {}
func (IdentityFailed) isEvent()    {}
func (IdentityMissing) isEvent()   {}
func (Registered) isEvent()        {}
func (AlreadyRegistered) isEvent() {}
func (OpenProfile) isEvent()       {}
func (OpenMain) isEvent()          {}
func (OpenEditList) isEvent()      {}
func (BackToProfile) isEvent()     {}
func (StartEdit) isEvent()         {}
func (CancelEdit) isEvent()        {}
func (NameChanged) isEvent()       {}
func (ReportSubmitted) isEvent()   {}
func (ReportEdited) isEvent()      {}
func (Logout) isEvent()            {}

// Effect is work the caller performs after a transition.
type Effect interface{ isEffect() }

type (
	ShowToast       struct{ Toast model.Toast }
	ResolveIdentity struct{}
	CloseHost       struct{ After time.Duration }
)

func (ShowToast) isEffect()       {}
func (ResolveIdentity) isEffect() {}
func (CloseHost) isEffect()       {}

func success(msg string) Effect { return ShowToast{model.Toast{Message: msg, Kind: model.ToastSuccess}} }
func failure(msg string) Effect { return ShowToast{model.Toast{Message: msg, Kind: model.ToastError}} }

// Start is the initial state: loading while the identity resolves.
func Start() (State, []Effect) {
	return State{Screen: Loading}, []Effect{ResolveIdentity{}}
}

// Transition applies e to s.
func Transition(s State, e Event) (State, []Effect) {
	var fx []Effect

	switch ev := e.(type) {
	case IdentityResolved:
		u := ev.User
		s.User, s.Screen = &u, Main
	case IdentityUnknown:
		s.Screen = Auth
	case IdentityFailed:
		s.Screen = Auth
		fx = append(fx, failure(ev.Message))
	case IdentityMissing:
		s.Screen = Auth
		fx = append(fx, failure(MsgNoIdentity))
	case Registered:
		u := ev.User
		s.User, s.Screen = &u, Main
		fx = append(fx, success(MsgLoggedIn))
	case AlreadyRegistered:
		s.Screen = Loading
		fx = append(fx, ResolveIdentity{})
	case OpenProfile, BackToProfile:
		s.Screen = Profile
	case OpenMain:
		s.Screen = Main
	case OpenEditList:
		s.Screen = EditList
	case StartEdit:
		r := ev.Report
		s.Editing, s.Screen = &r, Main
	case CancelEdit:
		s.Editing, s.Screen = nil, EditList
	case NameChanged:
		if s.User != nil {
			u := *s.User
			u.DriverName = ev.Name
			s.User = &u
			fx = append(fx, success(MsgNameChanged))
		}
		s.Screen = Profile
	case ReportSubmitted:
		s.Editing = nil
		fx = append(fx, success(MsgSubmitted), CloseHost{After: CloseDelay})
	case ReportEdited:
		s.Editing, s.Screen = nil, Profile
		fx = append(fx, success(MsgEdited))
	case Logout:
		s.User, s.Editing, s.Screen = nil, nil, Auth
	}

	if s.Screen.needsUser() && s.User == nil {
		s.Screen = Loading
		if !hasResolve(fx) {
			fx = append(fx, ResolveIdentity{})
		}
	}
	return s, fx
}

func hasResolve(fx []Effect) bool {
	for _, f := range fx {
		if _, ok := f.(ResolveIdentity); ok {
			return true
		}
	}
	return false
}

// FromResolve maps an identity lookup outcome to its event.
func FromResolve(u *model.User, err error) Event {
	switch {
	case err == nil && u != nil:
		return IdentityResolved{User: *u}
	case errors.Is(err, errs.ErrNoIdentity):
		return IdentityMissing{}
	case errors.Is(err, errs.ErrNotFound), err == nil:
		return IdentityUnknown{}
	}
	return IdentityFailed{Message: err.Error()}
}
