package host

import "sync"

// ButtonState is what the host renders for a button.
type ButtonState struct {
	Text    string
	Visible bool
}

// Release detaches a handler attached with Button.Attach. It is safe to call
// more than once and does nothing once another handler has taken over.
type Release func()

// Button holds at most one click handler. Attaching replaces the previous
// handler; only the current owner can hide the button.
type Button struct {
	mu      sync.Mutex
	gen     uint64
	text    string
	visible bool
	handler func()
}

// NewButton returns a hidden button.
func NewButton() *Button { return &Button{} }

// Attach installs h as the only handler, shows the button with text and
// returns the owner's Release.
func (b *Button) Attach(text string, h func()) Release {
	b.mu.Lock()
	b.gen++
	g := b.gen
	b.text, b.visible, b.handler = text, true, h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen != g {
			return
		}
		b.gen++
		b.visible, b.handler = false, nil
	}
}

// Click runs the current handler; false when hidden or detached.
func (b *Button) Click() bool {
	b.mu.Lock()
	h, vis := b.handler, b.visible
	b.mu.Unlock()
	if h == nil || !vis {
		return false
	}
	h()
	return true
}

// State returns the rendered state.
func (b *Button) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ButtonState{Text: b.text, Visible: b.visible}
}
