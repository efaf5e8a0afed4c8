package host

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// MockIdentity is the fixed user of the development stand-in.
var MockIdentity = Identity{ID: 7573758625, FirstName: "Test", LastName: "User", Username: "testuser"}

// StandIn replaces the host during development: fixed identity, logged haptics,
// alert-style popups.
type StandIn struct {
	main, back *Button
	out        notices
	alert      io.Writer
	log        *zap.Logger
}

var _ Bridge = (*StandIn)(nil)

// NewStandIn builds the stand-in. alert receives popups as "title\n\nmessage"; may be nil.
func NewStandIn(alert io.Writer, log *zap.Logger) *StandIn {
	if log == nil {
		log = zap.NewNop()
	}
	return &StandIn{main: NewButton(), back: NewButton(), out: make(notices, noticeBuffer), alert: alert, log: log}
}

func (s *StandIn) Ready()  { s.log.Info("host: ready") }
func (s *StandIn) Expand() { s.log.Info("host: expand") }

func (s *StandIn) MainButton() *Button { return s.main }
func (s *StandIn) BackButton() *Button { return s.back }

func (s *StandIn) Haptic(f Feedback) { s.log.Info("host: haptic", zap.String("type", string(f))) }

func (s *StandIn) ShowPopup(p Popup) {
	if s.alert != nil {
		_, _ = fmt.Fprintf(s.alert, "%s\n\n%s\n", p.Title, p.Message)
	}
	s.log.Info("host: popup", zap.String("title", p.Title))
	s.out.post(Notice{Popup: &p})
}

func (s *StandIn) Close() {
	s.log.Info("host: close")
	s.out.post(Notice{Close: true})
}

func (s *StandIn) Identity() (Identity, bool) { return MockIdentity, true }

func (s *StandIn) Notices() <-chan Notice { return s.out }

// TriggerLine is the visible substitute for the main button.
func (s *StandIn) TriggerLine() string {
	st := s.main.State()
	if !st.Visible {
		return ""
	}
	return "[ " + st.Text + " ]"
}

// Select picks the bridge once at startup. out takes terminal haptics or,
// for the stand-in, alert-style popups.
func Select(c Config, out io.Writer, log *zap.Logger) Bridge {
	if c.Dev {
		return NewStandIn(out, log)
	}
	return NewTerminal(c, out, log)
}
