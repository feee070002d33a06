package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/studylit/internal/constants"
)

// LocalDate returns the YYYY-MM-DD string of t in t's own location.
// The date is built from t's local year/month/day components; it never goes
// through a UTC conversion, so a timestamp just after local midnight stays on
// the local calendar day.
func LocalDate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// MonthKey returns the YYYY-MM key of t in t's location.
func MonthKey(t time.Time) string {
	return t.Format(constants.MonthFormat)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the day containing t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// DaysBetween returns the number of calendar days from a to b (b - a).
// Both values are reduced to their local calendar date first, so DST
// transitions never produce a 23- or 25-hour "day".
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// DaysBetweenDates is DaysBetween for two YYYY-MM-DD strings.
func DaysBetweenDates(from, to string) (int, error) {
	a, err := time.Parse(constants.DateFormat, from)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", from, err)
	}
	b, err := time.Parse(constants.DateFormat, to)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", to, err)
	}
	return DaysBetween(a, b), nil
}

// WeekStart returns local midnight of the Sunday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekRange returns the Sunday 00:00:00 .. Saturday 23:59:59 window of the
// week offset weeks away from the week containing t.
func WeekRange(t time.Time, offset int) (time.Time, time.Time) {
	start := WeekStart(t).AddDate(0, 0, offset*7)
	end := EndOfDay(start.AddDate(0, 0, 6))
	return start, end
}

// MonthRange returns the first and last instants of the calendar month
// offset months away from the month containing t.
func MonthRange(t time.Time, offset int) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
	end := EndOfDay(start.AddDate(0, 1, -1))
	return start, end
}

// ISOWeekLabel labels a Sunday-start week with the ISO week (YYYY-Www) of
// the Monday that follows its Sunday.
func ISOWeekLabel(weekStart time.Time) string {
	year, week := weekStart.AddDate(0, 0, 1).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// InRange reports whether t falls in [start, end].
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// DateRange lists every YYYY-MM-DD from start to end inclusive.
func DateRange(start, end time.Time) []string {
	var dates []string
	for d := StartOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, LocalDate(d))
	}
	return dates
}

// ValidateDateFormat checks if the string is a YYYY-MM-DD date.
func ValidateDateFormat(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}

// FormatDuration renders seconds as "1h 05m" or "12m 30s".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
