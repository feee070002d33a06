// Package timer implements the study/rest session state machine.
//
// Elapsed study time is never stored mid-flight: an open interval is
// represented only by its start timestamp and is folded into the running
// total when it closes. Remaining rest time is likewise derived from the rest
// start timestamp on every Tick.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/notifier"
)

// ErrNotStudying is returned by PauseStudy when no interval is open.
var ErrNotStudying = errors.New("no study session in progress")

// Engine owns one StudySession. Methods are safe to call from a UI goroutine
// and a tick goroutine at the same time.
type Engine struct {
	mu     sync.Mutex
	clock  clock.Clock
	notify notifier.Port
	s      models.StudySession
	// reminder is the rest-over notification armed for the current rest.
	reminder *notifier.Handle
}

// New returns an idle engine. notify may be nil.
func New(c clock.Clock, notify notifier.Port) *Engine {
	return &Engine{
		clock:  c,
		notify: notify,
		s:      idleSession(),
	}
}

func idleSession() models.StudySession {
	return models.StudySession{RestTargetMinutes: constants.DefaultRestMinutes}
}

func (e *Engine) nowMs() int64 {
	return e.clock.Now().UnixMilli()
}

// elapsedSeconds floors (now - startMs) to whole seconds, clamped at zero.
func elapsedSeconds(startMs, nowMs int64) int {
	d := nowMs - startMs
	if d <= 0 {
		return 0
	}
	return int(d / 1000)
}

// StartStudy opens a new study interval. Starting from a rest ends the rest
// and begins a fresh session with zero accumulated time.
func (e *Engine) StartStudy() {
	e.mu.Lock()
	wasResting := e.s.IsResting
	now := e.nowMs()
	if wasResting {
		e.s.IsResting = false
		e.s.AccumulatedSeconds = 0
		e.s.RestStartMs = nil
		e.s.RestRemainingSeconds = 0
		e.s.RestTimeExpired = false
		e.s.RestPostponed = false
	}
	if !e.s.IsStudying {
		e.s.IsStudying = true
		e.s.SessionStartMs = &now
	}
	e.mu.Unlock()

	if wasResting {
		e.cancelReminders()
	}
	logger.Debug("Study started", "resumed_from_rest", wasResting)
}

// PauseStudy folds the open interval into the accumulated total and goes idle.
func (e *Engine) PauseStudy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.IsStudying || e.s.SessionStartMs == nil {
		return ErrNotStudying
	}
	e.foldLocked()
	logger.Debug("Study paused", "accumulated", e.s.AccumulatedSeconds)
	return nil
}

func (e *Engine) foldLocked() {
	e.s.AccumulatedSeconds += elapsedSeconds(*e.s.SessionStartMs, e.nowMs())
	e.s.SessionStartMs = nil
	e.s.IsStudying = false
}

// StopStudy ends studying and starts a rest of restMinutes. While already
// resting it re-arms the rest with the new duration and leaves accumulated
// time alone. With neither studying nor resting it does nothing.
func (e *Engine) StopStudy(restMinutes int) {
	e.mu.Lock()
	if !e.s.IsStudying && !e.s.IsResting {
		e.mu.Unlock()
		return
	}
	if e.s.IsStudying {
		e.foldLocked()
	}
	now := e.nowMs()
	e.s.IsResting = true
	e.s.RestTargetMinutes = restMinutes
	e.s.RestStartMs = &now
	e.s.RestRemainingSeconds = restMinutes * 60
	e.s.RestTimeExpired = false
	e.s.RestPostponed = false
	accumulated := e.s.AccumulatedSeconds
	e.mu.Unlock()

	logger.Debug("Rest started", "minutes", restMinutes, "accumulated", accumulated)
	e.scheduleRestReminder(restMinutes * 60)
}

// Tick recomputes the remaining rest time. The first Tick that observes zero
// remaining sets RestTimeExpired and, unless the scheduled reminder already
// went out, fires the "rest over" notification; later ticks do nothing further until the rest is re-armed. Tick reports
// whether this call was that transition.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	if !e.s.IsResting || e.s.RestStartMs == nil {
		e.mu.Unlock()
		return false
	}
	elapsed := elapsedSeconds(*e.s.RestStartMs, e.nowMs())
	remaining := e.s.RestTargetMinutes*60 - elapsed
	if remaining < 0 {
		remaining = 0
	}
	e.s.RestRemainingSeconds = remaining

	fired := false
	if remaining == 0 && !e.s.RestTimeExpired {
		e.s.RestTimeExpired = true
		fired = true
	}
	var reminder *notifier.Handle
	if fired {
		reminder, e.reminder = e.reminder, nil
	}
	e.mu.Unlock()

	if fired {
		logger.Info("Rest time over")
		// A reminder that already went out covers this rest.
		if reminder == nil || reminder.Cancel() {
			e.fire(constants.RestOverTitle, constants.RestOverBody)
		} else {
			logger.Debug("Rest reminder already delivered", "id", reminder.ID)
		}
	}
	return fired
}

// UpdateRestTime is Tick under the name used by the rest countdown.
func (e *Engine) UpdateRestTime() bool {
	return e.Tick()
}

// CheckRestTimeOver reports whether the rest target has elapsed, without
// touching the latch or the remaining-time display.
func (e *Engine) CheckRestTimeOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.s.IsResting || e.s.RestStartMs == nil {
		return false
	}
	return elapsedSeconds(*e.s.RestStartMs, e.nowMs()) >= e.s.RestTargetMinutes*60
}

// CompleteEnd abandons the session entirely and returns to idle.
func (e *Engine) CompleteEnd() {
	e.mu.Lock()
	e.s = idleSession()
	e.mu.Unlock()
	e.cancelReminders()
}

// ResetTimer is CompleteEnd; it is always available.
func (e *Engine) ResetTimer() {
	e.CompleteEnd()
}

// SetRestPostponed records that the user snoozed the rest-over prompt.
func (e *Engine) SetRestPostponed(postponed bool) {
	e.mu.Lock()
	e.s.RestPostponed = postponed
	e.mu.Unlock()
}

// SetRestTargetMinutes changes the preselected rest length without arming it.
func (e *Engine) SetRestTargetMinutes(minutes int) {
	e.mu.Lock()
	e.s.RestTargetMinutes = minutes
	e.mu.Unlock()
}

// Session returns a copy of the current state.
func (e *Engine) Session() models.StudySession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copySession(e.s)
}

// State returns idle, studying or resting.
func (e *Engine) State() models.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.State()
}

// Elapsed returns the accumulated seconds plus the live open interval. It is
// a display value and changes nothing.
func (e *Engine) Elapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.s.AccumulatedSeconds
	if e.s.IsStudying && e.s.SessionStartMs != nil {
		total += elapsedSeconds(*e.s.SessionStartMs, e.nowMs())
	}
	return total
}

// Restore replaces the state with a previously captured session. It is used
// by the CLI, which spans several processes; the engine never persists.
func (e *Engine) Restore(s models.StudySession) error {
	if s.IsStudying && s.IsResting {
		return fmt.Errorf("invalid session: studying and resting at once")
	}
	if s.IsStudying != (s.SessionStartMs != nil) {
		return fmt.Errorf("invalid session: study start must be set iff studying")
	}
	if s.IsResting != (s.RestStartMs != nil) {
		return fmt.Errorf("invalid session: rest start must be set iff resting")
	}
	e.mu.Lock()
	e.s = copySession(s)
	e.mu.Unlock()
	return nil
}

func copySession(s models.StudySession) models.StudySession {
	out := s
	if s.SessionStartMs != nil {
		v := *s.SessionStartMs
		out.SessionStartMs = &v
	}
	if s.RestStartMs != nil {
		v := *s.RestStartMs
		out.RestStartMs = &v
	}
	return out
}

func (e *Engine) scheduleRestReminder(seconds int) {
	if e.notify == nil {
		return
	}
	e.cancelReminders()
	h, err := e.notify.ScheduleAfter(seconds, constants.RestOverTitle, constants.RestOverBody)
	if err != nil {
		logger.Warn("Failed to schedule rest reminder", "error", err, "seconds", seconds)
		return
	}
	e.mu.Lock()
	e.reminder = &h
	e.mu.Unlock()
}

func (e *Engine) fire(title, body string) {
	if e.notify == nil {
		return
	}
	if err := e.notify.FireNow(title, body); err != nil {
		logger.Warn("Failed to send notification", "error", err, "title", title)
	}
}

func (e *Engine) cancelReminders() {
	if e.notify == nil {
		return
	}
	e.mu.Lock()
	e.reminder = nil
	e.mu.Unlock()
	if err := e.notify.CancelAll(); err != nil {
		logger.Warn("Failed to cancel pending reminders", "error", err)
	}
}

// RestRemaining returns the last computed remaining rest as a duration.
func (e *Engine) RestRemaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.s.RestRemainingSeconds) * time.Second
}
