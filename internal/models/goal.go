package models

import "github.com/julianstephens/studylit/internal/constants"

// Goal is a target study duration for one period instance.
type Goal struct {
	ID            string               `json:"id"`
	PeriodKind    constants.PeriodKind `json:"period_kind"`
	TargetSeconds int                  `json:"target_seconds"`
	CreatedAtMs   int64                `json:"created_at_ms"`
	IsActive      bool                 `json:"is_active"`
	PeriodKey     string               `json:"period_key"` // YYYY-MM-DD, week-start YYYY-MM-DD, or YYYY-MM
}

// GoalAchievement is the outcome of one goal on one calendar day.
type GoalAchievement struct {
	GoalID          string  `json:"goal_id"`
	CalendarDate    string  `json:"calendar_date"`
	ActualSeconds   int     `json:"actual_seconds"`
	Achieved        bool    `json:"achieved"`
	AchievementRate float64 `json:"achievement_rate"` // 0..100
}

// AchievementRate returns min(100, 100*actual/target), or 0 for a
// non-positive target.
func AchievementRate(actualSeconds, targetSeconds int) float64 {
	if targetSeconds <= 0 {
		return 0
	}
	if actualSeconds <= 0 {
		return 0
	}
	rate := float64(actualSeconds) * 100 / float64(targetSeconds)
	if rate > 100 {
		return 100
	}
	return rate
}
