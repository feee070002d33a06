package goals

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
)

// Sunday
var sunday = time.Date(2026, 10, 11, 9, 0, 0, 0, time.UTC)

func newTestTracker() (*Tracker, *clock.Manual) {
	c := clock.NewManual(sunday)
	return New(c), c
}

func TestPeriodKey(t *testing.T) {
	wed := time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		kind    constants.PeriodKind
		want    string
		wantErr bool
	}{
		{constants.PeriodDaily, "2026-10-14", false},
		{constants.PeriodWeekly, "2026-10-11", false},
		{constants.PeriodMonthly, "2026-10", false},
		{"yearly", "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := PeriodKey(tt.kind, wed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PeriodKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PeriodKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetGoal_Validation(t *testing.T) {
	tr, _ := newTestTracker()
	if _, err := tr.SetGoal(constants.PeriodDaily, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("SetGoal(daily, 0) error = %v, want ErrInvalidTarget", err)
	}
	if _, err := tr.SetGoal(constants.PeriodDaily, -60); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("SetGoal(daily, -60) error = %v, want ErrInvalidTarget", err)
	}
	if _, err := tr.SetGoal("yearly", 60); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("SetGoal(yearly) error = %v, want ErrUnknownPeriod", err)
	}
}

func TestSetGoal_UpdatesSamePeriod(t *testing.T) {
	tr, c := newTestTracker()
	first, err := tr.SetGoal(constants.PeriodDaily, 3600)
	if err != nil {
		t.Fatalf("SetGoal() error = %v", err)
	}
	c.Advance(time.Hour)
	second, _ := tr.SetGoal(constants.PeriodDaily, 5400)
	if second.ID != first.ID {
		t.Errorf("SetGoal() in same period created a new goal")
	}
	if second.TargetSeconds != 5400 {
		t.Errorf("TargetSeconds = %d, want 5400", second.TargetSeconds)
	}
	if len(tr.Goals()) != 1 {
		t.Errorf("len(Goals()) = %d, want 1", len(tr.Goals()))
	}
}

func TestSetGoal_SupersedesPreviousPeriod(t *testing.T) {
	tr, c := newTestTracker()
	old, _ := tr.SetGoal(constants.PeriodDaily, 3600)
	c.AddDays(1)
	fresh, _ := tr.SetGoal(constants.PeriodDaily, 1800)

	if fresh.ID == old.ID {
		t.Fatal("SetGoal() in a new period reused the old goal")
	}
	goals := tr.Goals()
	if len(goals) != 2 {
		t.Fatalf("len(Goals()) = %d, want 2", len(goals))
	}
	if goals[0].IsActive {
		t.Error("old goal should be deactivated")
	}
	if !goals[1].IsActive || goals[1].PeriodKey != "2026-10-12" {
		t.Errorf("new goal = %+v", goals[1])
	}
}

func TestActiveGoal_ExpiresWithPeriod(t *testing.T) {
	tr, c := newTestTracker()
	tr.SetGoal(constants.PeriodWeekly, 7200)
	tr.SetGoal(constants.PeriodMonthly, 36000)

	c.AddDays(6) // Saturday, same week
	if _, ok := tr.ActiveGoal(constants.PeriodWeekly); !ok {
		t.Error("weekly goal should still apply on Saturday")
	}
	c.AddDays(1) // next Sunday
	if _, ok := tr.ActiveGoal(constants.PeriodWeekly); ok {
		t.Error("weekly goal should not apply in the next week")
	}
	if _, ok := tr.ActiveGoal(constants.PeriodMonthly); !ok {
		t.Error("monthly goal should apply within the month")
	}
	c.Set(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
	if _, ok := tr.ActiveGoal(constants.PeriodMonthly); ok {
		t.Error("monthly goal should not apply in November")
	}
}

func TestCheckGoalAchievement_Threshold(t *testing.T) {
	tests := []struct {
		name         string
		actual       int
		wantRate     float64
		wantAchieved bool
	}{
		{"half", 1800, 50, false},
		{"exact", 3600, 100, true},
		{"over", 7200, 100, true},
		{"none", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTracker()
			tr.SetGoal(constants.PeriodDaily, 3600)
			snap, ok := tr.CheckGoalAchievement(constants.PeriodDaily, tt.actual)
			if !ok {
				t.Fatal("CheckGoalAchievement() found no goal")
			}
			if snap.AchievementRate != tt.wantRate {
				t.Errorf("AchievementRate = %v, want %v", snap.AchievementRate, tt.wantRate)
			}
			if snap.Achieved != tt.wantAchieved {
				t.Errorf("Achieved = %v, want %v", snap.Achieved, tt.wantAchieved)
			}

			p := tr.DailyProgress()
			if p.Goal == nil || p.Percent != tt.wantRate || p.ActualSeconds != tt.actual {
				t.Errorf("DailyProgress() = %+v", p)
			}
		})
	}
}

func TestCheckGoalAchievement_NoGoal(t *testing.T) {
	tr, _ := newTestTracker()
	if _, ok := tr.CheckGoalAchievement(constants.PeriodDaily, 100); ok {
		t.Error("CheckGoalAchievement() without goal = true")
	}
	if p := tr.DailyProgress(); p.Goal != nil || p.Percent != 0 {
		t.Errorf("DailyProgress() without goal = %+v", p)
	}
	if p := tr.WeeklyProgress(); p.Goal != nil {
		t.Errorf("WeeklyProgress() without goal = %+v", p)
	}
}

func TestCheckGoalAchievement_UpsertsToday(t *testing.T) {
	tr, c := newTestTracker()
	tr.SetGoal(constants.PeriodDaily, 3600)
	tr.CheckGoalAchievement(constants.PeriodDaily, 600)
	c.Advance(time.Hour)
	tr.CheckGoalAchievement(constants.PeriodDaily, 1200)

	hist := tr.AchievementHistory(constants.PeriodDaily, 0)
	if len(hist) != 1 {
		t.Fatalf("len(AchievementHistory()) = %d, want 1", len(hist))
	}
	if hist[0].ActualSeconds != 1200 {
		t.Errorf("ActualSeconds = %d, want 1200", hist[0].ActualSeconds)
	}
}

func TestWeeklyProgress_SumsDailySnapshots(t *testing.T) {
	tr, c := newTestTracker()
	tr.SetGoal(constants.PeriodWeekly, 7200)

	daily := []int{1800, 0, 1200, 2400}
	for i, secs := range daily {
		if i > 0 {
			c.AddDays(1)
		}
		if secs > 0 {
			tr.CheckGoalAchievement(constants.PeriodWeekly, secs)
		}
	}

	p := tr.WeeklyProgress()
	if p.ActualSeconds != 5400 {
		t.Errorf("ActualSeconds = %d, want 5400", p.ActualSeconds)
	}
	if p.Percent != 75 {
		t.Errorf("Percent = %v, want 75", p.Percent)
	}
	if p.Achieved {
		t.Error("Achieved = true, want false")
	}

	c.AddDays(1)
	tr.CheckGoalAchievement(constants.PeriodWeekly, 1800)
	p = tr.WeeklyProgress()
	if !p.Achieved || p.Percent != 100 {
		t.Errorf("WeeklyProgress() = %+v, want achieved at 100", p)
	}
}

func TestMonthlyProgress(t *testing.T) {
	tr, c := newTestTracker()
	tr.SetGoal(constants.PeriodMonthly, 10000)
	tr.CheckGoalAchievement(constants.PeriodMonthly, 2500)
	c.AddDays(10)
	tr.CheckGoalAchievement(constants.PeriodMonthly, 2500)

	p := tr.MonthlyProgress()
	if p.ActualSeconds != 5000 || p.Percent != 50 || p.Achieved {
		t.Errorf("MonthlyProgress() = %+v", p)
	}
	if got := tr.Progress(constants.PeriodMonthly); got.ActualSeconds != 5000 {
		t.Errorf("Progress(monthly) = %+v", got)
	}
}

func TestAchievementHistoryAndRate(t *testing.T) {
	tr, c := newTestTracker()
	if got := tr.AchievementRate(constants.PeriodDaily, 30); got != 0 {
		t.Errorf("AchievementRate() with no history = %v, want 0", got)
	}

	tr.SetGoal(constants.PeriodDaily, 3600)
	// the daily goal is re-set each day, so history follows the latest goal
	tr.CheckGoalAchievement(constants.PeriodDaily, 3600)
	c.AddDays(1)
	tr.SetGoal(constants.PeriodDaily, 3600)
	tr.CheckGoalAchievement(constants.PeriodDaily, 100)

	hist := tr.AchievementHistory(constants.PeriodDaily, 10)
	if len(hist) != 1 || hist[0].CalendarDate != "2026-10-12" {
		t.Fatalf("AchievementHistory() = %+v", hist)
	}

	tr2, c2 := newTestTracker()
	tr2.SetGoal(constants.PeriodWeekly, 3600)
	results := []int{3600, 3600, 100, 3600}
	for i, secs := range results {
		if i > 0 {
			c2.AddDays(1)
		}
		tr2.CheckGoalAchievement(constants.PeriodWeekly, secs)
	}

	hist = tr2.AchievementHistory(constants.PeriodWeekly, 0)
	if len(hist) != 4 {
		t.Fatalf("len(AchievementHistory()) = %d, want 4", len(hist))
	}
	if hist[0].CalendarDate != "2026-10-14" || hist[3].CalendarDate != "2026-10-11" {
		t.Errorf("history not newest first: %s .. %s", hist[0].CalendarDate, hist[3].CalendarDate)
	}
	if got := tr2.AchievementHistory(constants.PeriodWeekly, 2); len(got) != 2 {
		t.Errorf("AchievementHistory(limit 2) len = %d", len(got))
	}
	if got := tr2.AchievementRate(constants.PeriodWeekly, 30); got != 75 {
		t.Errorf("AchievementRate() = %v, want 75", got)
	}
	if got := tr2.AchievementRate(constants.PeriodWeekly, 2); got != 50 {
		t.Errorf("AchievementRate(2 days) = %v, want 50", got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	tr, c := newTestTracker()
	tr.SetGoal(constants.PeriodDaily, 3600)
	tr.CheckGoalAchievement(constants.PeriodDaily, 1800)

	data, err := tr.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	restored := New(c)
	if err := restored.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p := restored.DailyProgress(); p.Percent != 50 {
		t.Errorf("restored DailyProgress() = %+v", p)
	}

	bad := []byte(`{"goals":[{"id":"x","period_kind":"yearly"}]}`)
	if err := restored.Unmarshal(bad); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("Unmarshal() error = %v, want ErrUnknownPeriod", err)
	}
}
