// Package notify coalesces refresh signals toward the presentation layer.
// The backing tool writes its files in bursts; one burst should become one
// downstream refresh, not one per write.
package notify

import (
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for refresh requests.
const DefaultDebounce = 300 * time.Millisecond

// Notifier debounces refresh requests. Request coalesces a burst into one
// callback after the window lapses; Immediate fires the callback now and
// cancels any pending window, for operations that need instant feedback
// (switching the active tag, for one).
type Notifier struct {
	delay time.Duration
	fn    func()

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewNotifier creates a notifier invoking fn on refresh. A zero delay falls
// back to DefaultDebounce.
func NewNotifier(delay time.Duration, fn func()) *Notifier {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Notifier{delay: delay, fn: fn}
}

// Request schedules a refresh, extending the window if one is pending.
func (n *Notifier) Request() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.delay, n.fire)
}

// Immediate fires the refresh now, bypassing the debounce window.
func (n *Notifier) Immediate() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()
	n.fn()
}

func (n *Notifier) fire() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.mu.Unlock()
	n.fn()
}

// Close stops any pending refresh. Further requests are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
