package utils

import (
	"testing"
	"time"
)

func TestLocalDate_NearMidnight(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	// 00:30 local is still the previous day in UTC
	ts := time.Date(2026, 3, 10, 0, 30, 0, 0, loc)
	if got := LocalDate(ts); got != "2026-03-10" {
		t.Errorf("LocalDate() = %s, want 2026-03-10", got)
	}
	if got := ts.UTC().Format("2006-01-02"); got != "2026-03-09" {
		t.Fatalf("sanity check failed, UTC date = %s", got)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "late night to early morning",
			a:    time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 6, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "across month boundary",
			a:    time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC),
			want: 2,
		},
		{
			name: "backwards",
			a:    time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetween_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2026-03-08 is a 23-hour day in New York
	a := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	b := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween() across DST = %d, want 1", got)
	}
}

func TestWeekRange(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		offset    int
		wantStart string
		wantEnd   string
	}{
		{name: "current week", offset: 0, wantStart: "2026-10-11", wantEnd: "2026-10-17"},
		{name: "previous week", offset: -1, wantStart: "2026-10-04", wantEnd: "2026-10-10"},
		{name: "two weeks back", offset: -2, wantStart: "2026-09-27", wantEnd: "2026-10-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(now, tt.offset)
			if start.Weekday() != time.Sunday {
				t.Errorf("week starts on %s, want Sunday", start.Weekday())
			}
			if LocalDate(start) != tt.wantStart {
				t.Errorf("start = %s, want %s", LocalDate(start), tt.wantStart)
			}
			if LocalDate(end) != tt.wantEnd {
				t.Errorf("end = %s, want %s", LocalDate(end), tt.wantEnd)
			}
			if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
				t.Errorf("end = %s, want 23:59:59", end.Format(time.TimeOnly))
			}
		})
	}
}

func TestWeekStart_OnSunday(t *testing.T) {
	sunday := time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)
	if got := LocalDate(WeekStart(sunday)); got != "2026-10-11" {
		t.Errorf("WeekStart(Sunday) = %s, want 2026-10-11", got)
	}
	saturday := time.Date(2026, 10, 17, 23, 59, 59, 0, time.UTC)
	if got := LocalDate(WeekStart(saturday)); got != "2026-10-11" {
		t.Errorf("WeekStart(Saturday) = %s, want 2026-10-11", got)
	}
}

func TestMonthRange(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		offset    int
		wantStart string
		wantEnd   string
	}{
		{name: "current month", offset: 0, wantStart: "2026-03-01", wantEnd: "2026-03-31"},
		{name: "february", offset: -1, wantStart: "2026-02-01", wantEnd: "2026-02-28"},
		{name: "previous year", offset: -3, wantStart: "2025-12-01", wantEnd: "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthRange(now, tt.offset)
			if LocalDate(start) != tt.wantStart || LocalDate(end) != tt.wantEnd {
				t.Errorf("MonthRange() = %s..%s, want %s..%s",
					LocalDate(start), LocalDate(end), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestISOWeekLabel(t *testing.T) {
	// Sunday 2026-01-04 is followed by Monday 2026-01-05, ISO week 2
	start := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	if got := ISOWeekLabel(start); got != "2026-W02" {
		t.Errorf("ISOWeekLabel() = %s, want 2026-W02", got)
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	got := DateRange(start, end)
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(got) != len(want) {
		t.Fatalf("DateRange() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DateRange()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0m 00s"},
		{125, "2m 05s"},
		{3600, "1h 00m"},
		{5430, "1h 30m"},
		{-5, "0m 00s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
