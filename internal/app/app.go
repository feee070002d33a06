// Package app composes the study stores with persistence, notifications and
// metrics. Each store is loaded whole at Open and saved whole after every
// mutation; a failed save is logged and the in-memory state stays
// authoritative.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/entitlement"
	"github.com/julianstephens/studylit/internal/goals"
	"github.com/julianstephens/studylit/internal/ledger"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/metrics"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/notifier"
	"github.com/julianstephens/studylit/internal/storage"
	"github.com/julianstephens/studylit/internal/streak"
	"github.com/julianstephens/studylit/internal/timer"
	"github.com/julianstephens/studylit/internal/utils"
)

var (
	ErrInvalidSubject  = errors.New("invalid subject")
	ErrSessionTooShort = errors.New("session too short to record")
	ErrNotEntitled     = errors.New("weekly and monthly goals require premium")
)

// Options configures Open. Zero values fall back to defaults.
type Options struct {
	Clock    clock.Clock
	Store    storage.Provider
	Notifier notifier.Port
	Metrics  *metrics.Metrics

	MinRecordSeconds int
	// MinStreakSeconds seeds the streak threshold when no streak state has
	// been saved yet.
	MinStreakSeconds int
	// PersistTimer saves the timer session under its own key so a session
	// can span several CLI invocations.
	PersistTimer bool
}

type marshaler interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// App owns one instance of every store.
type App struct {
	Clock  clock.Clock
	Timer  *timer.Engine
	Ledger *ledger.Ledger
	Streak *streak.Tracker
	Goals  *goals.Tracker
	Gate   *entitlement.Gate

	store   storage.Provider
	notify  notifier.Port
	metrics *metrics.Metrics

	minRecordSeconds int
	persistTimer     bool

	goalLatches    map[constants.PeriodKind]*AlertLatch
	milestoneLatch *AlertLatch
}

// SessionSummary is what FinishSession and RecordSession report back.
type SessionSummary struct {
	Record        models.StudyRecord                              `json:"record"`
	StreakUpdated bool                                            `json:"streak_updated"`
	Streak        models.StreakInfo                               `json:"streak"`
	TodaySeconds  int                                             `json:"today_seconds"`
	Progress      map[constants.PeriodKind]goals.Progress         `json:"progress"`
	Achievements  map[constants.PeriodKind]models.GoalAchievement `json:"achievements"`
	Alerts        []string                                        `json:"alerts,omitempty"`
}

// Open builds the stores and restores their persisted state.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("no storage provider")
	}
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	notify := opts.Notifier
	if opts.Metrics != nil && notify != nil {
		notify = opts.Metrics.Instrument(notify)
	}
	minRecord := opts.MinRecordSeconds
	if minRecord <= 0 {
		minRecord = constants.MinRecordSeconds
	}

	a := &App{
		Clock:            c,
		Timer:            timer.New(c, notify),
		Ledger:           ledger.New(c),
		Streak:           streak.New(c),
		Goals:            goals.New(c),
		Gate:             entitlement.New(c),
		store:            opts.Store,
		notify:           notify,
		metrics:          opts.Metrics,
		minRecordSeconds: minRecord,
		persistTimer:     opts.PersistTimer,
		milestoneLatch:   &AlertLatch{},
		goalLatches:      make(map[constants.PeriodKind]*AlertLatch),
	}
	for _, kind := range constants.PeriodKinds {
		a.goalLatches[kind] = &AlertLatch{}
	}

	a.load(ctx, constants.StoreKeyRecords, a.Ledger)
	if !a.load(ctx, constants.StoreKeyStreak, a.Streak) && opts.MinStreakSeconds > 0 {
		a.Streak.SetMinimumStudySeconds(opts.MinStreakSeconds)
	}
	a.load(ctx, constants.StoreKeyGoals, a.Goals)
	a.load(ctx, constants.StoreKeyPremium, a.Gate)
	if a.persistTimer {
		a.loadTimer(ctx)
	}

	for kind, latch := range a.goalLatches {
		latch.Prime(a.Goals.Progress(kind).Achieved)
	}
	a.milestoneLatch.Prime(streak.IsMilestone(a.Streak.GetStreakInfo().CurrentStreakDays))
	a.refreshGauges()

	return a, nil
}

// load restores one store and reports whether a blob was found. A corrupt
// blob leaves the store at its defaults.
func (a *App) load(ctx context.Context, key string, m marshaler) bool {
	blob, err := a.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		logger.Warn("Failed to load store, using defaults", "key", key, "error", err)
		return false
	}
	if err := m.Unmarshal(blob); err != nil {
		logger.Warn("Discarding corrupt store", "key", key, "error", err)
		return false
	}
	return true
}

func (a *App) loadTimer(ctx context.Context) {
	var s models.StudySession
	if !a.load(ctx, constants.StoreKeyTimer, sessionBlob{&s}) {
		return
	}
	if err := a.Timer.Restore(s); err != nil {
		logger.Warn("Discarding invalid timer session", "error", err)
	}
}

// save persists one store. Failures are logged, never returned.
func (a *App) save(ctx context.Context, key string, m marshaler) {
	blob, err := m.Marshal()
	if err != nil {
		logger.Error("Failed to serialize store", "key", key, "error", err)
		return
	}
	if err := a.store.Put(ctx, key, blob); err != nil {
		logger.Warn("Failed to save store", "key", key, "error", err)
	}
}

// SaveTimer persists the timer session when PersistTimer is set.
func (a *App) SaveTimer(ctx context.Context) {
	if !a.persistTimer {
		return
	}
	s := a.Timer.Session()
	a.save(ctx, constants.StoreKeyTimer, sessionBlob{&s})
}

// Foreground runs the checks that depend only on the passage of time: a
// lapsed streak and an expired premium flag.
func (a *App) Foreground(ctx context.Context) {
	if a.Streak.CheckStreakBreak() {
		a.save(ctx, constants.StoreKeyStreak, a.Streak)
		a.milestoneLatch.Observe(false)
	}
	a.checkPremium(ctx)
	a.refreshGauges()
}

// checkPremium clears an expired premium flag and persists the change.
func (a *App) checkPremium(ctx context.Context) {
	premium := a.Gate.State().Premium
	if premium && !a.Gate.Check() {
		a.save(ctx, constants.StoreKeyPremium, a.Gate)
	}
}

// TickTimer advances the rest countdown and persists the expiry latch.
func (a *App) TickTimer(ctx context.Context) bool {
	fired := a.Timer.Tick()
	if fired {
		a.SaveTimer(ctx)
	}
	return fired
}

// FinishSession records the timer's elapsed time under subject, updates the
// streak and goals, and ends the timer.
func (a *App) FinishSession(ctx context.Context, subject string) (SessionSummary, error) {
	if a.Timer.State() == models.StateIdle && a.Timer.Elapsed() == 0 {
		return SessionSummary{}, errors.New("no study session to finish")
	}
	summary, err := a.RecordSession(ctx, subject, a.Timer.Elapsed())
	if err != nil {
		return SessionSummary{}, err
	}
	a.Timer.CompleteEnd()
	a.SaveTimer(ctx)
	return summary, nil
}

// RecordSession stores a completed session of seconds without touching the
// timer.
func (a *App) RecordSession(ctx context.Context, subject string, seconds int) (SessionSummary, error) {
	subject, err := models.ValidateSubject(subject)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("%w: %v", ErrInvalidSubject, err)
	}
	if seconds < a.minRecordSeconds {
		return SessionSummary{}, fmt.Errorf("%w: %s studied, minimum is %s",
			ErrSessionTooShort, utils.FormatDuration(seconds), utils.FormatDuration(a.minRecordSeconds))
	}

	rec, err := a.Ledger.AddRecord(subject, seconds)
	if err != nil {
		return SessionSummary{}, err
	}
	a.save(ctx, constants.StoreKeyRecords, a.Ledger)

	summary := SessionSummary{
		Record:       rec,
		Progress:     make(map[constants.PeriodKind]goals.Progress),
		Achievements: make(map[constants.PeriodKind]models.GoalAchievement),
	}

	summary.StreakUpdated = a.Streak.UpdateStreak(seconds)
	if summary.StreakUpdated {
		a.save(ctx, constants.StoreKeyStreak, a.Streak)
	}
	summary.Streak = a.Streak.GetStreakInfo()

	summary.TodaySeconds = a.Ledger.TotalTimeToday()
	a.evaluateGoals(ctx, summary.TodaySeconds, &summary)

	if a.milestoneLatch.Observe(streak.IsMilestone(summary.Streak.CurrentStreakDays)) {
		body := fmt.Sprintf("%d days in a row!", summary.Streak.CurrentStreakDays)
		a.alert(constants.StreakMilestoneTitle, body)
		summary.Alerts = append(summary.Alerts, constants.StreakMilestoneTitle+" "+body)
	}

	if a.metrics != nil {
		a.metrics.ObserveSession(seconds)
	}
	a.refreshGauges()

	logger.Info("Session recorded", "subject", subject, "seconds", seconds, "streak", summary.Streak.CurrentStreakDays)
	return summary, nil
}

func (a *App) evaluateGoals(ctx context.Context, todaySeconds int, summary *SessionSummary) {
	changed := false
	for _, kind := range constants.PeriodKinds {
		if snap, ok := a.Goals.CheckGoalAchievement(kind, todaySeconds); ok {
			summary.Achievements[kind] = snap
			changed = true
		}
	}
	if changed {
		a.save(ctx, constants.StoreKeyGoals, a.Goals)
	}

	for _, kind := range constants.PeriodKinds {
		p := a.Goals.Progress(kind)
		summary.Progress[kind] = p
		if !a.goalLatches[kind].Observe(p.Goal != nil && p.Achieved) {
			continue
		}
		body := fmt.Sprintf("You reached your %s goal of %s.", kind, utils.FormatDuration(p.Goal.TargetSeconds))
		a.alert(constants.GoalAchievedTitle, body)
		summary.Alerts = append(summary.Alerts, constants.GoalAchievedTitle+" "+body)
		if a.metrics != nil {
			a.metrics.GoalsAchievedTotal.WithLabelValues(string(kind)).Inc()
		}
	}
}

func (a *App) alert(title, body string) {
	if a.notify == nil {
		return
	}
	if err := a.notify.FireNow(title, body); err != nil {
		logger.Warn("Failed to send alert", "title", title, "error", err)
	}
}

// SetGoal enforces the capability gate, then sets the goal.
func (a *App) SetGoal(ctx context.Context, kind constants.PeriodKind, targetSeconds int) (models.Goal, error) {
	if !kind.Valid() {
		return models.Goal{}, fmt.Errorf("%w: %q", goals.ErrUnknownPeriod, kind)
	}
	a.checkPremium(ctx)
	if !a.Gate.IsEntitled(kind) {
		return models.Goal{}, ErrNotEntitled
	}
	g, err := a.Goals.SetGoal(kind, targetSeconds)
	if err != nil {
		return models.Goal{}, err
	}
	// a raised target may un-achieve today's snapshot
	a.Goals.CheckGoalAchievement(kind, a.Ledger.TotalTimeToday())
	a.goalLatches[kind].Prime(a.Goals.Progress(kind).Achieved)
	a.save(ctx, constants.StoreKeyGoals, a.Goals)
	return g, nil
}

// ClearRecords empties the ledger.
func (a *App) ClearRecords(ctx context.Context) {
	a.Ledger.ClearAll()
	a.save(ctx, constants.StoreKeyRecords, a.Ledger)
	a.refreshGauges()
}

// ResetStreak zeroes the streak.
func (a *App) ResetStreak(ctx context.Context) {
	a.Streak.ResetStreak()
	a.milestoneLatch.Prime(false)
	a.save(ctx, constants.StoreKeyStreak, a.Streak)
	a.refreshGauges()
}

// SetMinimumStudyMinutes changes the streak threshold.
func (a *App) SetMinimumStudyMinutes(ctx context.Context, minutes int) error {
	if err := a.Streak.SetMinimumStudyMinutes(minutes); err != nil {
		return err
	}
	a.save(ctx, constants.StoreKeyStreak, a.Streak)
	return nil
}

// SetPremium turns premium on (optionally until expiresAt) or off.
func (a *App) SetPremium(ctx context.Context, premium bool, expiresAt *time.Time) {
	a.Gate.SetPremium(premium, expiresAt)
	a.save(ctx, constants.StoreKeyPremium, a.Gate)
}

// Close releases the storage provider and cancels pending reminders.
func (a *App) Close() error {
	if a.notify != nil && !a.persistTimer {
		if err := a.notify.CancelAll(); err != nil {
			logger.Debug("Failed to cancel reminders on close", "error", err)
		}
	}
	return a.store.Close()
}

// WriteMetrics writes the textfile when a path is configured.
func (a *App) WriteMetrics(path string) {
	if a.metrics == nil || path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics", "path", path, "error", err)
	}
}

func (a *App) refreshGauges() {
	if a.metrics == nil {
		return
	}
	info := a.Streak.GetStreakInfo()
	a.metrics.CurrentStreakDays.Set(float64(info.CurrentStreakDays))
	a.metrics.LongestStreakDays.Set(float64(info.LongestStreakDays))
	a.metrics.TodaySeconds.Set(float64(a.Ledger.TotalTimeToday()))
}
