package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/studylit/internal/constants"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return tempDir, nil }
	return tempDir
}

func withProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func writeLockfile(t *testing.T, configDir, content string) {
	t.Helper()
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := withConfigDir(t)

	expectedDefault := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != expectedDefault {
		t.Errorf("expected %s, got %s", expectedDefault, dir)
	}

	if err := os.MkdirAll(expectedDefault, 0755); err != nil {
		t.Fatal(err)
	}
	customDir := "/custom/daylit/dir"
	settingsJSON := fmt.Sprintf(`{"settings": {"lockfile_dir": "%s"}}`, customDir)
	if err := os.WriteFile(filepath.Join(expectedDefault, "settings.json"), []byte(settingsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    string
	}{
		{name: "valid", content: "8080|123|secret", executable: "daylit-tray"},
		{name: "malformed", content: "8080|123", executable: "daylit-tray", wantErr: "malformed"},
		{name: "bad port", content: "abc|123|secret", executable: "daylit-tray", wantErr: "invalid port"},
		{name: "port out of range", content: "70000|123|secret", executable: "daylit-tray", wantErr: "outside valid range"},
		{name: "bad pid", content: "8080|x|secret", executable: "daylit-tray", wantErr: "invalid process ID"},
		{name: "empty secret", content: "8080|123| ", executable: "daylit-tray", wantErr: "secret"},
		{name: "wrong process", content: "8080|123|secret", executable: "bash", wantErr: "not daylit-tray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "lock")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			withProcess(t, tt.executable)

			port, secret, err := findAndValidateTrayProcess(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if port != "8080" || secret != "secret" {
					t.Errorf("got port=%q secret=%q", port, secret)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFireNow_SendsPayload(t *testing.T) {
	var received WebhookPayload
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Daylit-Secret")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	port := server.URL[strings.LastIndex(server.URL, ":")+1:]
	configDir := withConfigDir(t)
	writeLockfile(t, configDir, port+"|42|s3cret")
	withProcess(t, "daylit-tray")

	if err := New().FireNow("studylit", "Break is over"); err != nil {
		t.Fatalf("FireNow() error = %v", err)
	}
	if received.Text != "studylit: Break is over" {
		t.Errorf("payload text = %q", received.Text)
	}
	if received.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload duration = %d", received.DurationMs)
	}
	if gotSecret != "s3cret" {
		t.Errorf("secret header = %q", gotSecret)
	}
}

func TestFireNow_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	port := server.URL[strings.LastIndex(server.URL, ":")+1:]
	configDir := withConfigDir(t)
	writeLockfile(t, configDir, port+"|42|s3cret")
	withProcess(t, "daylit-tray")

	if err := New().FireNow("", "hello"); err != nil {
		t.Fatalf("FireNow() error = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestFireNow_TrayNotRunningIsNotRetried(t *testing.T) {
	withConfigDir(t)

	start := time.Now()
	err := New().FireNow("t", "b")
	if err == nil || !strings.Contains(err.Error(), "not running") {
		t.Fatalf("error = %v, want tray not running", err)
	}
	if time.Since(start) > constants.NotifyRetryDelay {
		t.Errorf("FireNow retried a permanent failure")
	}
}

func TestScheduleAfter_CancelAll(t *testing.T) {
	n := NewLog()
	h, err := n.ScheduleAfter(3600, "t", "b")
	if err != nil {
		t.Fatalf("ScheduleAfter() error = %v", err)
	}
	if got := n.pending.count(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	if err := n.CancelAll(); err != nil {
		t.Fatalf("CancelAll() error = %v", err)
	}
	if got := n.pending.count(); got != 0 {
		t.Errorf("pending after CancelAll = %d, want 0", got)
	}
	if h.Cancel() {
		t.Errorf("Cancel() after CancelAll reported success")
	}
}

func TestScheduleAfter_Fires(t *testing.T) {
	p := newPending()
	fired := make(chan struct{})
	p.schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder did not fire")
	}
	if got := p.count(); got != 0 {
		t.Errorf("pending after fire = %d, want 0", got)
	}
}

func TestHandle_Cancel(t *testing.T) {
	p := newPending()
	h := p.schedule(time.Hour, func() {})
	if !h.Cancel() {
		t.Error("first Cancel() = false, want true")
	}
	if h.Cancel() {
		t.Error("second Cancel() = true, want false")
	}
	if (Handle{}).Cancel() {
		t.Error("zero Handle Cancel() = true")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_, _ = r.ScheduleAfter(300, "a", "b")
	_ = r.FireNow("a", "b")
	_ = r.CancelAll()

	if r.Count("schedule") != 1 || r.Count("fire") != 1 || r.Count("cancel") != 1 {
		t.Errorf("calls = %+v", r.Calls())
	}
	if r.Calls()[0].Seconds != 300 {
		t.Errorf("schedule seconds = %d, want 300", r.Calls()[0].Seconds)
	}
}

func TestRecorder_DeliverAndCancel(t *testing.T) {
	r := NewRecorder()
	first, err := r.ScheduleAfter(300, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if r.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", r.Pending())
	}
	if n := r.Deliver(); n != 1 {
		t.Errorf("Deliver() = %d, want 1", n)
	}
	if first.Cancel() {
		t.Error("Cancel() after delivery = true, want false")
	}

	second, _ := r.ScheduleAfter(60, "a", "b")
	if !second.Cancel() {
		t.Error("Cancel() on a pending reminder = false, want true")
	}
	if n := r.Deliver(); n != 0 {
		t.Errorf("Deliver() after cancel = %d, want 0", n)
	}

	_, _ = r.ScheduleAfter(60, "a", "b")
	_ = r.CancelAll()
	if r.Pending() != 0 {
		t.Errorf("Pending() after CancelAll = %d, want 0", r.Pending())
	}
	if r.Count("deliver") != 1 {
		t.Errorf("deliver calls = %d, want 1", r.Count("deliver"))
	}
}
