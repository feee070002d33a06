package app

import "sync"

// AlertLatch lets an alert fire once per transition of its condition to
// true. It re-arms when the condition is observed false.
type AlertLatch struct {
	mu    sync.Mutex
	shown bool
}

// Observe records the current condition and reports whether the alert
// should fire now.
func (l *AlertLatch) Observe(cond bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !cond {
		l.shown = false
		return false
	}
	if l.shown {
		return false
	}
	l.shown = true
	return true
}

// Prime sets the latch without firing, for conditions that were already true
// before this process started watching.
func (l *AlertLatch) Prime(cond bool) {
	l.mu.Lock()
	l.shown = cond
	l.mu.Unlock()
}
