// Package streak counts consecutive local calendar days with a qualifying
// study session.
package streak

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

// Tracker owns the streak state.
type Tracker struct {
	mu    sync.Mutex
	clock clock.Clock
	state models.StreakState
}

func New(c clock.Clock) *Tracker {
	return &Tracker{clock: c, state: defaultState()}
}

func defaultState() models.StreakState {
	return models.StreakState{
		RecentDailyActivity:      []models.DailyActivity{},
		MinimumQualifyingSeconds: constants.DefaultMinimumStreakSeconds,
	}
}

// UpdateStreak registers a finished session of sessionSeconds. It reports
// whether the streak changed. Sessions below the minimum and repeat sessions
// on an already studied day change nothing.
func (t *Tracker) UpdateStreak(sessionSeconds int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sessionSeconds < t.state.MinimumQualifyingSeconds {
		return false
	}

	today := utils.LocalDate(t.clock.Now())
	if t.studiedOnLocked(today) {
		return false
	}

	t.state.RecentDailyActivity = append(
		[]models.DailyActivity{{Date: today, Studied: true}},
		t.state.RecentDailyActivity...,
	)
	if len(t.state.RecentDailyActivity) > constants.StreakHistoryDays {
		t.state.RecentDailyActivity = t.state.RecentDailyActivity[:constants.StreakHistoryDays]
	}

	if t.state.LastStudyDate == nil {
		t.state.CurrentStreakDays = 1
	} else {
		gap, err := utils.DaysBetweenDates(*t.state.LastStudyDate, today)
		switch {
		case err != nil:
			logger.Warn("Discarding unreadable last study date", "date", *t.state.LastStudyDate, "error", err)
			t.state.CurrentStreakDays = 1
		case gap == 1:
			t.state.CurrentStreakDays++
		case gap == 0:
			// same day, already counted
		default:
			t.state.CurrentStreakDays = 1
		}
	}

	if t.state.CurrentStreakDays > t.state.LongestStreakDays {
		t.state.LongestStreakDays = t.state.CurrentStreakDays
	}
	t.state.LastStudyDate = &today

	logger.Debug("Streak updated", "current", t.state.CurrentStreakDays, "longest", t.state.LongestStreakDays)
	return true
}

// CheckStreakBreak zeroes the streak when the last study day is two or more
// days in the past. It reports whether the streak was broken.
func (t *Tracker) CheckStreakBreak() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.LastStudyDate == nil {
		return false
	}
	today := utils.LocalDate(t.clock.Now())
	gap, err := utils.DaysBetweenDates(*t.state.LastStudyDate, today)
	if err != nil {
		logger.Warn("Discarding unreadable last study date", "date", *t.state.LastStudyDate, "error", err)
	} else if gap < 2 {
		return false
	}

	logger.Info("Streak lapsed", "last_study_date", *t.state.LastStudyDate, "was", t.state.CurrentStreakDays)
	t.state.CurrentStreakDays = 0
	t.state.LastStudyDate = nil
	return true
}

// GetStreakInfo returns the display view of the streak.
func (t *Tracker) GetStreakInfo() models.StreakInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := utils.LocalDate(t.clock.Now())
	info := models.StreakInfo{
		CurrentStreakDays: t.state.CurrentStreakDays,
		LongestStreakDays: t.state.LongestStreakDays,
		StudiedToday:      t.studiedOnLocked(today),
	}
	if next, ok := NextMilestone(t.state.CurrentStreakDays); ok {
		info.NextMilestone = next
		info.DaysUntilNextMilestone = next - t.state.CurrentStreakDays
	}
	return info
}

// NextMilestone returns the first milestone above days.
func NextMilestone(days int) (int, bool) {
	for _, m := range constants.StreakMilestones {
		if m > days {
			return m, true
		}
	}
	return 0, false
}

// IsMilestone reports whether days is exactly on the milestone ladder.
func IsMilestone(days int) bool {
	for _, m := range constants.StreakMilestones {
		if m == days {
			return true
		}
	}
	return false
}

// ResetStreak clears everything except the minimum duration setting.
func (t *Tracker) ResetStreak() {
	t.mu.Lock()
	defer t.mu.Unlock()
	minimum := t.state.MinimumQualifyingSeconds
	t.state = defaultState()
	t.state.MinimumQualifyingSeconds = minimum
}

// SetMinimumStudyMinutes changes the qualifying threshold.
func (t *Tracker) SetMinimumStudyMinutes(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("minimum study minutes cannot be negative: %d", minutes)
	}
	t.SetMinimumStudySeconds(minutes * 60)
	return nil
}

// SetMinimumStudySeconds is SetMinimumStudyMinutes at second precision.
func (t *Tracker) SetMinimumStudySeconds(seconds int) {
	t.mu.Lock()
	t.state.MinimumQualifyingSeconds = seconds
	t.mu.Unlock()
}

// State returns a copy of the raw streak state.
func (t *Tracker) State() models.StreakState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyState(t.state)
}

func (t *Tracker) studiedOnLocked(date string) bool {
	for _, a := range t.state.RecentDailyActivity {
		if a.Date == date && a.Studied {
			return true
		}
	}
	return false
}

func copyState(s models.StreakState) models.StreakState {
	out := s
	if s.LastStudyDate != nil {
		d := *s.LastStudyDate
		out.LastStudyDate = &d
	}
	out.RecentDailyActivity = append([]models.DailyActivity{}, s.RecentDailyActivity...)
	return out
}

// Marshal serializes the streak state for the persistence port.
func (t *Tracker) Marshal() ([]byte, error) {
	return json.Marshal(t.State())
}

// Unmarshal replaces the state with a previously marshaled blob.
func (t *Tracker) Unmarshal(data []byte) error {
	state := defaultState()
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode streak state: %w", err)
	}
	if state.RecentDailyActivity == nil {
		state.RecentDailyActivity = []models.DailyActivity{}
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
	return nil
}
