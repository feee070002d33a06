package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Tray delivers notifications to the daylit tray app over its local webhook.
type Tray struct {
	pending *pending
	client  *http.Client
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Tray {
	return &Tray{
		pending: newPending(),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// ScheduleAfter arms an in-process reminder. It only fires while this
// process is alive, which holds for the TUI.
func (n *Tray) ScheduleAfter(seconds int, title, body string) (Handle, error) {
	if seconds < 0 {
		seconds = 0
	}
	h := n.pending.schedule(time.Duration(seconds)*time.Second, func() {
		if err := n.FireNow(title, body); err != nil {
			logger.Warn("Scheduled notification failed", "error", err)
		}
	})
	logger.Debug("Reminder scheduled", "id", h.ID, "seconds", seconds)
	return h, nil
}

// FireNow sends the notification immediately, retrying transient failures.
func (n *Tray) FireNow(title, body string) error {
	text := body
	if title != "" {
		text = title + ": " + body
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(constants.NotifyRetryDelay), constants.NotifyMaxRetries)
	return backoff.Retry(func() error {
		err := n.notify(text)
		if err != nil && errors.Is(err, errTrayNotRunning) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (n *Tray) CancelAll() error {
	if c := n.pending.cancelAll(); c > 0 {
		logger.Debug("Cancelled pending reminders", "count", c)
	}
	return nil
}

func (n *Tray) notify(text string) error {
	trayAppConfigPath, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayAppConfigPath, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	}
	return n.sendNotification(port, secret, payload)
}

var errTrayNotRunning = errors.New("daylit-tray is not running")

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// A custom lockfile dir may be set in the tray's settings.json
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil {
		if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
			return *store.Settings.LockfileDir, nil
		}
	}

	return trayConfigDir, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", backoff.Permanent(errors.New("lockfile is malformed"))
	}

	port := strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", backoff.Permanent(errors.New("invalid port number in lockfile"))
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", backoff.Permanent(fmt.Errorf("port number %d is outside valid range (1-65535)", portNum))
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", backoff.Permanent(errors.New("invalid process ID in lockfile"))
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", backoff.Permanent(errors.New("secret in lockfile is empty"))
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errTrayNotRunning
	}

	if !strings.HasPrefix(process.Executable(), "daylit-tray") {
		return "", "", backoff.Permanent(fmt.Errorf("process with PID %d is not daylit-tray (is %s)", pid, process.Executable()))
	}

	return port, secret, nil
}

func (n *Tray) sendNotification(port string, secret string, payload WebhookPayload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return backoff.Permanent(err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Daylit-Secret", secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	err = fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
	if res.StatusCode < http.StatusInternalServerError {
		return backoff.Permanent(err)
	}
	return err
}
