package models

// StudySession is the in-progress timer state. It describes "now", not
// history, and is owned by the timer engine.
//
// Invariants: IsStudying and IsResting are never both true.
// SessionStartMs is set iff IsStudying; RestStartMs is set iff IsResting.
type StudySession struct {
	IsStudying           bool   `json:"is_studying"`
	IsResting            bool   `json:"is_resting"`
	AccumulatedSeconds   int    `json:"accumulated_seconds"`
	SessionStartMs       *int64 `json:"session_start_ms,omitempty"` // epoch milliseconds
	RestTargetMinutes    int    `json:"rest_target_minutes"`
	RestStartMs          *int64 `json:"rest_start_ms,omitempty"` // epoch milliseconds
	RestRemainingSeconds int    `json:"rest_remaining_seconds"`
	RestTimeExpired      bool   `json:"rest_time_expired"`
	RestPostponed        bool   `json:"rest_postponed"`
}

// SessionState is the coarse state of the timer state machine.
type SessionState string

const (
	StateIdle     SessionState = "idle"
	StateStudying SessionState = "studying"
	StateResting  SessionState = "resting"
)

// State derives the coarse state from the flags.
func (s StudySession) State() SessionState {
	switch {
	case s.IsStudying:
		return StateStudying
	case s.IsResting:
		return StateResting
	default:
		return StateIdle
	}
}
