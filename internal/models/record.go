package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/studylit/internal/constants"
)

// StudyRecord is one completed study session. Records are never mutated.
type StudyRecord struct {
	ID              string `json:"id" yaml:"id"`
	Subject         string `json:"subject" yaml:"subject"`
	DurationSeconds int    `json:"duration_seconds" yaml:"duration_seconds"`
	CalendarDate    string `json:"calendar_date" yaml:"calendar_date"` // YYYY-MM-DD, local
	CreatedAtMs     int64  `json:"created_at_ms" yaml:"created_at_ms"`
}

// CreatedAtIn returns the creation instant in loc.
func (r StudyRecord) CreatedAtIn(loc *time.Location) time.Time {
	return time.UnixMilli(r.CreatedAtMs).In(loc)
}

// ValidateSubject trims the subject and checks its length (1..50 characters).
func ValidateSubject(subject string) (string, error) {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return "", fmt.Errorf("subject cannot be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n > constants.MaxSubjectLength {
		return "", fmt.Errorf("subject is %d characters, maximum is %d", n, constants.MaxSubjectLength)
	}
	return trimmed, nil
}
