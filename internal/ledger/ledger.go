// Package ledger holds the append-only list of completed study records and
// answers aggregate queries over it.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

// RangeStats summarizes the records inside a date window.
type RangeStats struct {
	Label          string         `json:"label,omitempty"`
	Start          string         `json:"start"`
	End            string         `json:"end"`
	TotalSeconds   int            `json:"total_seconds"`
	RecordCount    int            `json:"record_count"`
	AverageSeconds int            `json:"average_seconds"`
	PerDaySeconds  map[string]int `json:"per_day_seconds"`
}

// SubjectTotal is the time spent on one subject.
type SubjectTotal struct {
	Subject      string `json:"subject"`
	TotalSeconds int    `json:"total_seconds"`
	RecordCount  int    `json:"record_count"`
}

// Ledger stores records newest first.
type Ledger struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records []models.StudyRecord
}

type snapshot struct {
	Records []models.StudyRecord `json:"records"`
}

func New(c clock.Clock) *Ledger {
	return &Ledger{clock: c}
}

// AddRecord stamps a record with today's local date and stores it. Subject
// and minimum-duration checks belong to the caller.
func (l *Ledger) AddRecord(subject string, durationSeconds int) (models.StudyRecord, error) {
	if durationSeconds < 0 {
		return models.StudyRecord{}, fmt.Errorf("duration cannot be negative: %d", durationSeconds)
	}

	now := l.clock.Now()
	rec := models.StudyRecord{
		ID:              uuid.New().String(),
		Subject:         subject,
		DurationSeconds: durationSeconds,
		CalendarDate:    utils.LocalDate(now),
		CreatedAtMs:     now.UnixMilli(),
	}

	l.mu.Lock()
	l.records = append([]models.StudyRecord{rec}, l.records...)
	l.mu.Unlock()

	return rec, nil
}

// Records returns a copy of every record, newest first.
func (l *Ledger) Records() []models.StudyRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.StudyRecord(nil), l.records...)
}

// Len returns the number of stored records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// TodayRecords returns the records whose calendar date is today.
func (l *Ledger) TodayRecords() []models.StudyRecord {
	today := utils.LocalDate(l.clock.Now())

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.StudyRecord
	for _, r := range l.records {
		if r.CalendarDate == today {
			out = append(out, r)
		}
	}
	return out
}

// TotalTime sums every record.
func (l *Ledger) TotalTime() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, r := range l.records {
		total += r.DurationSeconds
	}
	return total
}

// TotalTimeToday sums today's records.
func (l *Ledger) TotalTimeToday() int {
	total := 0
	for _, r := range l.TodayRecords() {
		total += r.DurationSeconds
	}
	return total
}

// RecordsBetween returns the records created in [start 00:00, end 23:59:59]
// local time, newest first.
func (l *Ledger) RecordsBetween(start, end time.Time) []models.StudyRecord {
	loc := l.clock.Now().Location()
	from := utils.StartOfDay(start.In(loc))
	to := utils.EndOfDay(end.In(loc))

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.StudyRecord
	for _, r := range l.records {
		if utils.InRange(r.CreatedAtIn(loc), from, to) {
			out = append(out, r)
		}
	}
	return out
}

// StatsForRange aggregates the records between start and end inclusive.
// Every date in the window appears in PerDaySeconds, zero when nothing was
// recorded that day.
func (l *Ledger) StatsForRange(start, end time.Time) RangeStats {
	loc := l.clock.Now().Location()
	from := utils.StartOfDay(start.In(loc))
	to := utils.EndOfDay(end.In(loc))

	stats := RangeStats{
		Start:         utils.LocalDate(from),
		End:           utils.LocalDate(to),
		PerDaySeconds: make(map[string]int),
	}
	for _, d := range utils.DateRange(from, to) {
		stats.PerDaySeconds[d] = 0
	}

	for _, r := range l.RecordsBetween(from, to) {
		stats.TotalSeconds += r.DurationSeconds
		stats.RecordCount++
		stats.PerDaySeconds[utils.LocalDate(r.CreatedAtIn(loc))] += r.DurationSeconds
	}
	if stats.RecordCount > 0 {
		stats.AverageSeconds = stats.TotalSeconds / stats.RecordCount
	}
	return stats
}

// WeeklyStats covers the Sunday-start week offset weeks from the current one
// (0 = this week, -1 = last week).
func (l *Ledger) WeeklyStats(offset int) RangeStats {
	start, end := utils.WeekRange(l.clock.Now(), offset)
	stats := l.StatsForRange(start, end)
	stats.Label = utils.ISOWeekLabel(start)
	return stats
}

// MonthlyStats covers the calendar month offset months from the current one.
func (l *Ledger) MonthlyStats(offset int) RangeStats {
	start, end := utils.MonthRange(l.clock.Now(), offset)
	stats := l.StatsForRange(start, end)
	stats.Label = utils.MonthKey(start)
	return stats
}

// SubjectTotals groups all records by subject, largest total first.
func (l *Ledger) SubjectTotals() []SubjectTotal {
	l.mu.RLock()
	byName := make(map[string]*SubjectTotal)
	for _, r := range l.records {
		st, ok := byName[r.Subject]
		if !ok {
			st = &SubjectTotal{Subject: r.Subject}
			byName[r.Subject] = st
		}
		st.TotalSeconds += r.DurationSeconds
		st.RecordCount++
	}
	l.mu.RUnlock()

	out := make([]SubjectTotal, 0, len(byName))
	for _, st := range byName {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// ClearAll drops every record. It cannot be undone.
func (l *Ledger) ClearAll() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}

// Marshal serializes the ledger for the persistence port.
func (l *Ledger) Marshal() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	records := l.records
	if records == nil {
		records = []models.StudyRecord{}
	}
	return json.Marshal(snapshot{Records: records})
}

// Unmarshal replaces the ledger contents with a previously marshaled blob.
func (l *Ledger) Unmarshal(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode study records: %w", err)
	}
	sort.SliceStable(snap.Records, func(i, j int) bool {
		return snap.Records[i].CreatedAtMs > snap.Records[j].CreatedAtMs
	})

	l.mu.Lock()
	l.records = snap.Records
	l.mu.Unlock()
	return nil
}
