// Package goals tracks daily, weekly and monthly study targets.
//
// Each goal is tagged with the key of the period instance it was set in
// (today's date, the Sunday starting this week, or YYYY-MM) and only applies
// while that period is current. Achievement is recorded as one snapshot per
// goal per calendar day; weekly and monthly progress sum those daily
// snapshots over the period window.
package goals

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

var (
	ErrInvalidTarget = errors.New("goal target must be greater than zero")
	ErrUnknownPeriod = errors.New("unknown goal period")
)

// Progress is the state of the active goal for one period kind. Goal is nil
// when no goal applies to the current period.
type Progress struct {
	Goal          *models.Goal `json:"goal,omitempty"`
	Percent       float64      `json:"percent"`
	Achieved      bool         `json:"achieved"`
	ActualSeconds int          `json:"actual_seconds"`
}

// Tracker owns goals and their daily achievement snapshots.
type Tracker struct {
	mu           sync.Mutex
	clock        clock.Clock
	goals        []models.Goal
	achievements []models.GoalAchievement
}

type snapshot struct {
	Goals        []models.Goal            `json:"goals"`
	Achievements []models.GoalAchievement `json:"achievements"`
}

func New(c clock.Clock) *Tracker {
	return &Tracker{clock: c}
}

// PeriodKey returns the key of the period instance of kind containing t.
func PeriodKey(kind constants.PeriodKind, t time.Time) (string, error) {
	switch kind {
	case constants.PeriodDaily:
		return utils.LocalDate(t), nil
	case constants.PeriodWeekly:
		return utils.LocalDate(utils.WeekStart(t)), nil
	case constants.PeriodMonthly:
		return utils.MonthKey(t), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
}

// window returns the current period window of kind.
func window(kind constants.PeriodKind, now time.Time) (time.Time, time.Time) {
	switch kind {
	case constants.PeriodWeekly:
		return utils.WeekRange(now, 0)
	case constants.PeriodMonthly:
		return utils.MonthRange(now, 0)
	default:
		return utils.StartOfDay(now), utils.EndOfDay(now)
	}
}

// SetGoal sets the target for the current period of kind. An active goal for
// the same period keeps its identity and gets the new target; otherwise older
// goals of the kind are deactivated and a new one is created.
func (t *Tracker) SetGoal(kind constants.PeriodKind, targetSeconds int) (models.Goal, error) {
	if !kind.Valid() {
		return models.Goal{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
	if targetSeconds <= 0 {
		return models.Goal{}, ErrInvalidTarget
	}

	now := t.clock.Now()
	key, err := PeriodKey(kind, now)
	if err != nil {
		return models.Goal{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.goals {
		g := &t.goals[i]
		if g.PeriodKind == kind && g.IsActive && g.PeriodKey == key {
			g.TargetSeconds = targetSeconds
			logger.Debug("Goal target updated", "kind", kind, "target", targetSeconds)
			return *g, nil
		}
	}

	for i := range t.goals {
		if t.goals[i].PeriodKind == kind {
			t.goals[i].IsActive = false
		}
	}

	g := models.Goal{
		ID:            uuid.New().String(),
		PeriodKind:    kind,
		TargetSeconds: targetSeconds,
		CreatedAtMs:   now.UnixMilli(),
		IsActive:      true,
		PeriodKey:     key,
	}
	t.goals = append(t.goals, g)
	logger.Debug("Goal created", "kind", kind, "target", targetSeconds, "period", key)
	return g, nil
}

// ActiveGoal returns the active goal of kind for the current period.
func (t *Tracker) ActiveGoal(kind constants.PeriodKind) (models.Goal, bool) {
	key, err := PeriodKey(kind, t.clock.Now())
	if err != nil {
		return models.Goal{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked(kind, key)
}

func (t *Tracker) activeLocked(kind constants.PeriodKind, key string) (models.Goal, bool) {
	for i := len(t.goals) - 1; i >= 0; i-- {
		g := t.goals[i]
		if g.PeriodKind == kind && g.IsActive && g.PeriodKey == key {
			return g, true
		}
	}
	return models.Goal{}, false
}

// latestActiveLocked ignores the period key. History queries use it so a
// finished week can still be reviewed.
func (t *Tracker) latestActiveLocked(kind constants.PeriodKind) (models.Goal, bool) {
	var best models.Goal
	found := false
	for _, g := range t.goals {
		if g.PeriodKind != kind || !g.IsActive {
			continue
		}
		if !found || g.CreatedAtMs >= best.CreatedAtMs {
			best = g
			found = true
		}
	}
	return best, found
}

// Goals returns every goal ever set, oldest first.
func (t *Tracker) Goals() []models.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Goal(nil), t.goals...)
}

// CheckGoalAchievement upserts today's snapshot for the active goal of kind.
// actualSeconds is today's studied total. It returns the snapshot and false
// when no goal applies.
func (t *Tracker) CheckGoalAchievement(kind constants.PeriodKind, actualSeconds int) (models.GoalAchievement, bool) {
	now := t.clock.Now()
	key, err := PeriodKey(kind, now)
	if err != nil {
		return models.GoalAchievement{}, false
	}
	today := utils.LocalDate(now)

	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.activeLocked(kind, key)
	if !ok {
		return models.GoalAchievement{}, false
	}

	snap := models.GoalAchievement{
		GoalID:          g.ID,
		CalendarDate:    today,
		ActualSeconds:   actualSeconds,
		Achieved:        actualSeconds >= g.TargetSeconds,
		AchievementRate: models.AchievementRate(actualSeconds, g.TargetSeconds),
	}

	for i := range t.achievements {
		a := &t.achievements[i]
		if a.GoalID == g.ID && a.CalendarDate == today {
			*a = snap
			return snap, true
		}
	}
	t.achievements = append(t.achievements, snap)
	return snap, true
}

// DailyProgress reads today's snapshot of the active daily goal.
func (t *Tracker) DailyProgress() Progress {
	now := t.clock.Now()
	key, _ := PeriodKey(constants.PeriodDaily, now)
	today := utils.LocalDate(now)

	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.activeLocked(constants.PeriodDaily, key)
	if !ok {
		return Progress{}
	}
	p := Progress{Goal: &g}
	for _, a := range t.achievements {
		if a.GoalID == g.ID && a.CalendarDate == today {
			p.ActualSeconds = a.ActualSeconds
			p.Percent = a.AchievementRate
			p.Achieved = a.Achieved
			break
		}
	}
	return p
}

// WeeklyProgress sums this week's snapshots of the active weekly goal.
func (t *Tracker) WeeklyProgress() Progress {
	return t.windowProgress(constants.PeriodWeekly)
}

// MonthlyProgress sums this month's snapshots of the active monthly goal.
func (t *Tracker) MonthlyProgress() Progress {
	return t.windowProgress(constants.PeriodMonthly)
}

// Progress dispatches to the progress query for kind.
func (t *Tracker) Progress(kind constants.PeriodKind) Progress {
	switch kind {
	case constants.PeriodDaily:
		return t.DailyProgress()
	case constants.PeriodWeekly:
		return t.WeeklyProgress()
	case constants.PeriodMonthly:
		return t.MonthlyProgress()
	default:
		return Progress{}
	}
}

func (t *Tracker) windowProgress(kind constants.PeriodKind) Progress {
	now := t.clock.Now()
	key, _ := PeriodKey(kind, now)
	start, end := window(kind, now)
	from, to := utils.LocalDate(start), utils.LocalDate(end)

	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.activeLocked(kind, key)
	if !ok {
		return Progress{}
	}
	total := 0
	for _, a := range t.achievements {
		if a.GoalID == g.ID && a.CalendarDate >= from && a.CalendarDate <= to {
			total += a.ActualSeconds
		}
	}
	return Progress{
		Goal:          &g,
		ActualSeconds: total,
		Percent:       models.AchievementRate(total, g.TargetSeconds),
		Achieved:      total >= g.TargetSeconds,
	}
}

// AchievementHistory returns the snapshots of the latest active goal of
// kind, newest first, at most limit entries. A non-positive limit uses the
// default.
func (t *Tracker) AchievementHistory(kind constants.PeriodKind, limit int) []models.GoalAchievement {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.latestActiveLocked(kind)
	if !ok {
		return nil
	}
	var out []models.GoalAchievement
	for _, a := range t.achievements {
		if a.GoalID == g.ID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalendarDate > out[j].CalendarDate
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AchievementRate is the percentage of the last days history entries that
// were achieved. Zero when there is no history.
func (t *Tracker) AchievementRate(kind constants.PeriodKind, days int) float64 {
	if days <= 0 {
		days = constants.DefaultRateDays
	}
	history := t.AchievementHistory(kind, days)
	if len(history) == 0 {
		return 0
	}
	achieved := 0
	for _, a := range history {
		if a.Achieved {
			achieved++
		}
	}
	return float64(achieved) * 100 / float64(len(history))
}

// Marshal serializes goals and snapshots for the persistence port.
func (t *Tracker) Marshal() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := snapshot{Goals: t.goals, Achievements: t.achievements}
	if snap.Goals == nil {
		snap.Goals = []models.Goal{}
	}
	if snap.Achievements == nil {
		snap.Achievements = []models.GoalAchievement{}
	}
	return json.Marshal(snap)
}

// Unmarshal replaces the tracker contents with a previously marshaled blob.
func (t *Tracker) Unmarshal(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode goals: %w", err)
	}
	for _, g := range snap.Goals {
		if !g.PeriodKind.Valid() {
			return fmt.Errorf("failed to decode goals: %w: %q", ErrUnknownPeriod, g.PeriodKind)
		}
	}

	t.mu.Lock()
	t.goals = snap.Goals
	t.achievements = snap.Achievements
	t.mu.Unlock()
	return nil
}
