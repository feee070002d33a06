package models

// DailyActivity marks whether a calendar day had a qualifying session.
type DailyActivity struct {
	Date    string `json:"date"`
	Studied bool   `json:"studied"`
}

// StreakState is the persisted streak counter.
type StreakState struct {
	CurrentStreakDays        int             `json:"current_streak_days"`
	LongestStreakDays        int             `json:"longest_streak_days"`
	LastStudyDate            *string         `json:"last_study_date,omitempty"`
	RecentDailyActivity      []DailyActivity `json:"recent_daily_activity"` // newest first, at most 30
	MinimumQualifyingSeconds int             `json:"minimum_qualifying_seconds"`
}

// StreakInfo is the read model shown to users.
type StreakInfo struct {
	CurrentStreakDays      int  `json:"current_streak_days"`
	LongestStreakDays      int  `json:"longest_streak_days"`
	StudiedToday           bool `json:"studied_today"`
	DaysUntilNextMilestone int  `json:"days_until_next_milestone"`
	NextMilestone          int  `json:"next_milestone"`
}
