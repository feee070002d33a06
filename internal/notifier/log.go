package notifier

import (
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/studylit/internal/logger"
)

// Log writes notifications to the application log. Used when no tray app is
// available or notifications are disabled.
type Log struct {
	pending *pending
}

func NewLog() *Log {
	return &Log{pending: newPending()}
}

func (n *Log) ScheduleAfter(seconds int, title, body string) (Handle, error) {
	return n.pending.schedule(time.Duration(seconds)*time.Second, func() {
		_ = n.FireNow(title, body)
	}), nil
}

func (n *Log) FireNow(title, body string) error {
	logger.Info("Notification", "title", title, "body", body)
	return nil
}

func (n *Log) CancelAll() error {
	n.pending.cancelAll()
	return nil
}

// Call is one request captured by Recorder.
type Call struct {
	Kind    string // "schedule", "fire", "cancel" or "deliver"
	Seconds int
	Title   string
	Body    string
}

// Recorder captures requests without delivering them. Scheduled reminders stay
// pending until Deliver runs them or they are cancelled. FailWith makes every
// call return the given error, to exercise best-effort handling.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	seq      int
	pending  map[string]Call
	FailWith error
}

func NewRecorder() *Recorder {
	return &Recorder{pending: make(map[string]Call)}
}

func (r *Recorder) ScheduleAfter(seconds int, title, body string) (Handle, error) {
	c := Call{Kind: "schedule", Seconds: seconds, Title: title, Body: body}
	r.record(c)
	if r.FailWith != nil {
		return Handle{}, r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("recorded-%d", r.seq)
	r.pending[id] = c
	return Handle{
		ID: id,
		cancel: func() bool {
			r.mu.Lock()
			defer r.mu.Unlock()
			if _, ok := r.pending[id]; !ok {
				return false
			}
			delete(r.pending, id)
			return true
		},
	}, nil
}

func (r *Recorder) FireNow(title, body string) error {
	r.record(Call{Kind: "fire", Title: title, Body: body})
	return r.FailWith
}

func (r *Recorder) CancelAll() error {
	r.record(Call{Kind: "cancel"})
	r.mu.Lock()
	clear(r.pending)
	r.mu.Unlock()
	return r.FailWith
}

// Deliver runs every pending reminder as if its delay had passed and returns
// how many were delivered.
func (r *Recorder) Deliver() int {
	r.mu.Lock()
	due := make([]Call, 0, len(r.pending))
	for id, c := range r.pending {
		due = append(due, c)
		delete(r.pending, id)
	}
	r.mu.Unlock()

	for _, c := range due {
		r.record(Call{Kind: "deliver", Seconds: c.Seconds, Title: c.Title, Body: c.Body})
	}
	return len(due)
}

// Pending returns how many scheduled reminders have not run or been cancelled.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

// Calls returns a copy of every captured call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of kind were captured.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
