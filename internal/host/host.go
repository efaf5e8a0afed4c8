// Package host abstracts the chat-platform runtime the app is launched from:
// lifecycle signals, the two navigation buttons, haptics, popups and identity.
package host

import (
	"strconv"
	"strings"
)

// Feedback is a haptic notification type.
type Feedback string

const (
	FeedbackSuccess Feedback = "success"
	FeedbackError   Feedback = "error"
	FeedbackWarning Feedback = "warning"
)

// Popup is a native message box.
type Popup struct {
	Title   string
	Message string
}

// Notice is delivered to the UI loop: a popup to show or a request to close.
type Notice struct {
	Popup *Popup
	Close bool
}

// Identity is the platform user who launched the app.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName joins the non-empty first and last names.
func (i Identity) DisplayName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{i.FirstName, i.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IDString is the id in the form the backend expects.
func (i Identity) IDString() string { return strconv.FormatInt(i.ID, 10) }

// Bridge is the host API. Popups, haptics and lifecycle calls are fire-and-forget.
type Bridge interface {
	Ready()
	Expand()
	MainButton() *Button
	BackButton() *Button
	Haptic(f Feedback)
	ShowPopup(p Popup)
	Close()
	// Identity returns the launching user, false when the host supplied none.
	Identity() (Identity, bool)
	// Notices yields popups and close requests for the UI loop.
	Notices() <-chan Notice
}

const noticeBuffer = 16

// notices is a non-blocking outbox shared by the implementations.
type notices chan Notice

func (n notices) post(v Notice) bool {
	select {
	case n <- v:
		return true
	default:
		return false
	}
}
