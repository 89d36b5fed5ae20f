package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AlertType identifies which resource an Alert concerns.
type AlertType string

const (
	AlertCPUHigh     AlertType = "cpu_high"
	AlertMemoryHigh  AlertType = "memory_high"
	AlertDiskHigh    AlertType = "disk_high"
)

// Alert is one threshold crossing, grounded on the original's Alert
// struct: it stays in the active set until the underlying metric drops
// back below its threshold, and also lives on in history once resolved.
type Alert struct {
	ID           string    `json:"id"`
	Type         AlertType `json:"type"`
	Message      string    `json:"message"`
	Threshold    float64   `json:"threshold"`
	CurrentValue float64   `json:"current_value"`
	Timestamp    time.Time `json:"timestamp"`
	Active       bool      `json:"active"`
}

// AlertCallback is invoked whenever an alert is triggered or resolved.
type AlertCallback func(Alert)

// Thresholds configures the percentage above which each resource type
// triggers an alert.
type Thresholds struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
}

// AlertManager tracks which thresholds are currently breached and keeps a
// bounded history of past alerts.
type AlertManager struct {
	mu         sync.Mutex
	thresholds Thresholds
	callback   AlertCallback

	active  map[AlertType]*Alert
	history []Alert

	maxHistory int
}

// NewAlertManager returns an AlertManager enforcing the given thresholds.
func NewAlertManager(thresholds Thresholds) *AlertManager {
	return &AlertManager{
		thresholds: thresholds,
		active:     make(map[AlertType]*Alert),
		maxHistory: 100,
	}
}

// SetCallback installs cb, replacing any previous callback.
func (m *AlertManager) SetCallback(cb AlertCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = cb
}

// Check evaluates s against the configured thresholds, triggering or
// resolving alerts as needed.
func (m *AlertManager) Check(s Sample) {
	m.checkOne(AlertCPUHigh, s.CPUPercent, m.thresholds.CPUPercent, "CPU usage")
	m.checkOne(AlertMemoryHigh, s.MemoryPercent, m.thresholds.MemPercent, "Memory usage")
	m.checkOne(AlertDiskHigh, s.DiskPercent, m.thresholds.DiskPercent, "Disk usage")
}

func (m *AlertManager) checkOne(kind AlertType, value, threshold float64, label string) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	_, wasActive := m.active[kind]
	breached := value >= threshold

	var toFire *Alert
	switch {
	case breached && !wasActive:
		a := &Alert{
			ID:           uuid.NewString(),
			Type:         kind,
			Message:      label + " exceeded threshold",
			Threshold:    threshold,
			CurrentValue: value,
			Timestamp:    time.Now(),
			Active:       true,
		}
		m.active[kind] = a
		m.appendHistoryLocked(*a)
		toFire = a
	case !breached && wasActive:
		a := m.active[kind]
		a.Active = false
		a.CurrentValue = value
		a.Timestamp = time.Now()
		delete(m.active, kind)
		resolved := *a
		m.appendHistoryLocked(resolved)
		toFire = &resolved
	case breached && wasActive:
		m.active[kind].CurrentValue = value
	}
	cb := m.callback
	m.mu.Unlock()

	if toFire != nil && cb != nil {
		cb(*toFire)
	}
}

func (m *AlertManager) appendHistoryLocked(a Alert) {
	m.history = append(m.history, a)
	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}

// ActiveAlerts returns every currently breached alert.
func (m *AlertManager) ActiveAlerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, *a)
	}
	return out
}

// History returns up to count of the most recent alert events, oldest first.
func (m *AlertManager) History(count int) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count > len(m.history) || count <= 0 {
		count = len(m.history)
	}
	start := len(m.history) - count
	out := make([]Alert, count)
	copy(out, m.history[start:])
	return out
}
