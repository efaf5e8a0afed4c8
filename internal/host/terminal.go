package host

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config selects and configures the bridge.
type Config struct {
	Dev         bool          // use the stand-in
	InitData    string        // signed platform launch data
	BotToken    string        // verifies InitData
	LaunchToken string        // HS256 token, alternative to InitData
	LaunchKey   string        // verifies LaunchToken
	MaxAge      time.Duration // InitData freshness; 0 = unchecked
}

// Terminal is the bridge for a terminal launched by the platform: identity
// comes from verified launch data, haptics ring the bell.
type Terminal struct {
	main, back *Button
	out        notices
	bell       io.Writer
	log        *zap.Logger

	mu    sync.Mutex
	id    Identity
	hasID bool
}

var _ Bridge = (*Terminal)(nil)

// NewTerminal builds the bridge and verifies the launch identity. Launch data
// takes precedence over a launch token; a failed check leaves no identity.
func NewTerminal(c Config, bell io.Writer, log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Terminal{
		main: NewButton(),
		back: NewButton(),
		out:  make(notices, noticeBuffer),
		bell: bell,
		log:  log,
	}

	switch {
	case c.InitData != "":
		id, err := ParseInitData(c.InitData, c.BotToken, c.MaxAge)
		if err != nil {
			log.Warn("launch data rejected", zap.Error(err))
			break
		}
		t.id, t.hasID = id, true
	case c.LaunchToken != "":
		id, err := ParseLaunchToken(c.LaunchToken, []byte(c.LaunchKey))
		if err != nil {
			log.Warn("launch token rejected", zap.Error(err))
			break
		}
		t.id, t.hasID = id, true
	}
	return t
}

// Ready and Expand have no terminal counterpart.
func (t *Terminal) Ready()  { t.log.Debug("host: ready") }
func (t *Terminal) Expand() { t.log.Debug("host: expand") }

func (t *Terminal) MainButton() *Button { return t.main }
func (t *Terminal) BackButton() *Button { return t.back }

// Haptic rings the terminal bell for errors and warnings.
func (t *Terminal) Haptic(f Feedback) {
	if t.bell == nil || f == FeedbackSuccess {
		return
	}
	_, _ = io.WriteString(t.bell, "\a")
}

func (t *Terminal) ShowPopup(p Popup) {
	if !t.out.post(Notice{Popup: &p}) {
		t.log.Warn("popup dropped", zap.String("title", p.Title))
	}
}

func (t *Terminal) Close() { t.out.post(Notice{Close: true}) }

func (t *Terminal) Identity() (Identity, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id, t.hasID
}

func (t *Terminal) Notices() <-chan Notice { return t.out }
