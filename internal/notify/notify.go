// Package notify keeps the single transient notification.
package notify

import (
	"sync"
	"time"

	"github.com/and161185/shiftreport/internal/model"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

// Notifier holds at most one toast; a newer one replaces the older.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	toast   model.Toast
	expires time.Time
	seq     uint64
}

// New returns a Notifier; ttl <= 0 means DefaultTTL.
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl}
}

// TTL returns the display duration.
func (n *Notifier) TTL() time.Duration { return n.ttl }

// Show replaces the current toast and returns its sequence number.
func (n *Notifier) Show(t model.Toast, now time.Time) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	n.toast, n.expires = t, now.Add(n.ttl)
	return n.seq
}

// Current returns the visible toast, if any.
func (n *Notifier) Current(now time.Time) (model.Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seq == 0 || !now.Before(n.expires) {
		return model.Toast{}, false
	}
	return n.toast, true
}

// Expire hides the toast numbered seq; a newer toast is left alone.
func (n *Notifier) Expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if seq == n.seq {
		n.expires = time.Time{}
	}
}
