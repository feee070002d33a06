// Package metrics exposes study counters in the Prometheus text format. A
// CLI process is short-lived, so instead of serving /metrics the registry is
// written to a node-exporter textfile after each command.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/studylit/internal/notifier"
)

const namespace = "studylit"

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	SessionsTotal        prometheus.Counter
	StudiedSecondsTotal  prometheus.Counter
	GoalsAchievedTotal   *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	CurrentStreakDays    prometheus.Gauge
	LongestStreakDays    prometheus.Gauge
	TodaySeconds         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Study sessions recorded.",
		}),
		StudiedSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "studied_seconds_total",
			Help:      "Seconds of study recorded.",
		}),
		GoalsAchievedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goals_achieved_total",
			Help:      "Goal achievement alerts, by period kind.",
		}, []string{"period"}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notification requests that returned an error.",
		}),
		CurrentStreakDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_streak_days",
			Help:      "Current study streak in days.",
		}),
		LongestStreakDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "longest_streak_days",
			Help:      "Longest study streak in days.",
		}),
		TodaySeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "today_seconds",
			Help:      "Seconds studied today.",
		}),
	}
	m.registry.MustRegister(
		m.SessionsTotal,
		m.StudiedSecondsTotal,
		m.GoalsAchievedTotal,
		m.NotificationFailures,
		m.CurrentStreakDays,
		m.LongestStreakDays,
		m.TodaySeconds,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSession counts one recorded session.
func (m *Metrics) ObserveSession(seconds int) {
	m.SessionsTotal.Inc()
	m.StudiedSecondsTotal.Add(float64(seconds))
}

// WriteTextfile writes every metric to path for the textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Instrument wraps a notifier so failed requests are counted.
func (m *Metrics) Instrument(p notifier.Port) notifier.Port {
	return &countingPort{next: p, failures: m.NotificationFailures}
}

type countingPort struct {
	next     notifier.Port
	failures prometheus.Counter
}

func (c *countingPort) ScheduleAfter(seconds int, title, body string) (notifier.Handle, error) {
	h, err := c.next.ScheduleAfter(seconds, title, body)
	c.count(err)
	return h, err
}

func (c *countingPort) FireNow(title, body string) error {
	err := c.next.FireNow(title, body)
	c.count(err)
	return err
}

func (c *countingPort) CancelAll() error {
	err := c.next.CancelAll()
	c.count(err)
	return err
}

func (c *countingPort) count(err error) {
	if err != nil {
		c.failures.Inc()
	}
}
