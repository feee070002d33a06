package notifier

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Port receives reminder requests from the timer engine. Callers treat every
// method as fire-and-forget: errors are logged, never propagated into state.
type Port interface {
	ScheduleAfter(seconds int, title, body string) (Handle, error)
	FireNow(title, body string) error
	CancelAll() error
}

// Handle identifies a scheduled reminder.
type Handle struct {
	ID     string
	cancel func() bool
}

// Cancel stops the reminder if it has not fired yet.
func (h Handle) Cancel() bool {
	if h.cancel == nil {
		return false
	}
	return h.cancel()
}

// pending tracks in-process reminders armed with time.AfterFunc.
type pending struct {
	mu     sync.Mutex
	seq    atomic.Uint64
	timers map[string]*time.Timer
}

func newPending() *pending {
	return &pending{timers: make(map[string]*time.Timer)}
}

func (p *pending) schedule(d time.Duration, fire func()) Handle {
	id := fmt.Sprintf("reminder-%d", p.seq.Add(1))

	p.mu.Lock()
	defer p.mu.Unlock()

	timer := time.AfterFunc(d, func() {
		p.mu.Lock()
		delete(p.timers, id)
		p.mu.Unlock()
		fire()
	})
	p.timers[id] = timer

	return Handle{
		ID: id,
		cancel: func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			t, ok := p.timers[id]
			if !ok {
				return false
			}
			delete(p.timers, id)
			return t.Stop()
		},
	}
}

func (p *pending) cancelAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for id, t := range p.timers {
		if t.Stop() {
			n++
		}
		delete(p.timers, id)
	}
	return n
}

func (p *pending) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}
