package errors

import (
	"errors"
	"fmt"
	"testing"
)

var errNotEntitled = errors.New("weekly and monthly goals require premium")

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("no active goal"), expected: "Error: no active goal"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("failed to save goal-storage: %w", errors.New("disk full")),
			expected: "Error: failed to save goal-storage: disk full",
		},
		{
			name:     "hinted error",
			err:      WithHint(errNotEntitled, "run 'studylit premium on'"),
			expected: "Error: weekly and monthly goals require premium\nHint: run 'studylit premium on'",
		},
		{
			name:     "hint below a wrap",
			err:      fmt.Errorf("goal set: %w", WithHint(errNotEntitled, "run 'studylit premium on'")),
			expected: "Error: goal set: weekly and monthly goals require premium\nHint: run 'studylit premium on'",
		},
		{
			name:     "empty hint",
			err:      WithHint(errNotEntitled, ""),
			expected: "Error: weekly and monthly goals require premium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	if WithHint(nil, "ignored") != nil {
		t.Error("WithHint(nil) should return nil")
	}

	err := WithHint(errNotEntitled, "run 'studylit premium on'")
	if !errors.Is(err, errNotEntitled) {
		t.Errorf("errors.Is(%v, errNotEntitled) = false, want true", err)
	}
	if err.Error() != errNotEntitled.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), errNotEntitled.Error())
	}
}
