package constants

import "time"

// PeriodKind identifies a goal period.
type PeriodKind string

const (
	AppName            = "studylit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/studylit/studylit.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the calendar month key format (YYYY-MM)
	MonthFormat = "2006-01"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Goal periods
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"

	// Persistence keys, one per store
	StoreKeyRecords = "study-records"
	StoreKeyStreak  = "streak-storage"
	StoreKeyGoals   = "goal-storage"
	StoreKeyPremium = "premium-storage"
	StoreKeyTimer   = "timer-session"

	// Timer defaults
	DefaultRestMinutes = 1
	MaxRestMinutes     = 60

	// Streak defaults
	DefaultMinimumStreakSeconds = 60
	StreakHistoryDays           = 30

	// Record constraints
	MinRecordSeconds = 60
	MaxSubjectLength = 50

	// Goal history defaults
	DefaultHistoryLimit = 30
	DefaultRateDays     = 30

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studylit-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "daylit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.daylit"

	// Notification copy
	RestOverTitle        = "studylit"
	RestOverBody         = "Break is over. Time to get back to studying."
	GoalAchievedTitle    = "Goal achieved!"
	StreakMilestoneTitle = "Streak milestone!"

	// Redis
	RedisKeyPrefix = "studylit:"
)

// StreakMilestones is the ladder used for "days until next milestone".
var StreakMilestones = []int{10, 30, 50, 100, 200, 365}

// PeriodKinds lists every goal period in display order.
var PeriodKinds = []PeriodKind{PeriodDaily, PeriodWeekly, PeriodMonthly}

// Valid reports whether k is a known period kind.
func (k PeriodKind) Valid() bool {
	switch k {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}
