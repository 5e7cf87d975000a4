package model

import (
	"sort"
	"time"
)

// AlertLevel ranks crew alerts from benign to time-critical.
type AlertLevel int

const (
	AlertNormal AlertLevel = iota
	AlertAdvisory
	AlertCaution
	AlertWarning
	AlertEmergency
)

// String returns the conventional annunciator spelling for the level.
func (l AlertLevel) String() string {
	switch l {
	case AlertNormal:
		return "NORMAL"
	case AlertAdvisory:
		return "ADVISORY"
	case AlertCaution:
		return "CAUTION"
	case AlertWarning:
		return "WARNING"
	case AlertEmergency:
		return "EMERGENCY"
	default:
		return "UNKNOWN"
	}
}

// Alert is a single crew alert. Subsystems recompute their alert lists
// wholesale on every tick from current entity state; the list is a derived
// view, never an accumulated event log. Acknowledged and Inhibited are
// caller-managed and must be preserved across recomputation for alerts
// whose ID survives the tick.
type Alert struct {
	ID           string     `json:"id"`
	Level        AlertLevel `json:"level"`
	Message      string     `json:"message"`
	System       string     `json:"system"`
	Timestamp    time.Time  `json:"timestamp"`
	Acknowledged bool       `json:"acknowledged"`
	Inhibited    bool       `json:"inhibited"`
	Active       bool       `json:"active"`
	Flashing     bool       `json:"flashing"`
}

// SortAlerts orders alerts most-severe first, breaking ties by timestamp
// (oldest first) and then ID so the ordering is stable across ticks.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Level != alerts[j].Level {
			return alerts[i].Level > alerts[j].Level
		}
		if !alerts[i].Timestamp.Equal(alerts[j].Timestamp) {
			return alerts[i].Timestamp.Before(alerts[j].Timestamp)
		}
		return alerts[i].ID < alerts[j].ID
	})
}

// AlertBook carries per-tick alert recomputation for one subsystem. It
// preserves acknowledgement/inhibition flags and the original timestamp for
// alerts that remain active between ticks, so callers see a stable entity
// rather than a freshly minted one every tick.
type AlertBook struct {
	system string
	clock  func() time.Time

	previous map[string]Alert
	current  []Alert
}

// NewAlertBook creates a book for the named subsystem. A nil clock defaults
// to time.Now.
func NewAlertBook(system string, clock func() time.Time) *AlertBook {
	if clock == nil {
		clock = time.Now
	}
	return &AlertBook{
		system:   system,
		clock:    clock,
		previous: make(map[string]Alert),
	}
}

// Begin starts a new tick's recomputation, discarding last tick's list but
// remembering it for flag carry-over. Only alerts raised on the previous tick
// are remembered; an ID that cleared and later re-raises starts fresh.
func (b *AlertBook) Begin() {
	b.previous = make(map[string]Alert, len(b.current))
	for _, a := range b.current {
		b.previous[a.ID] = a
	}
	b.current = b.current[:0]
}

// Raise records an active alert for this tick. Flags and timestamp are
// carried over when the same ID was active on the previous tick.
func (b *AlertBook) Raise(id string, level AlertLevel, message string) {
	a := Alert{
		ID:        id,
		Level:     level,
		Message:   message,
		System:    b.system,
		Timestamp: b.clock(),
		Active:    true,
		Flashing:  level >= AlertWarning,
	}
	if prev, ok := b.previous[id]; ok && prev.Active {
		a.Timestamp = prev.Timestamp
		a.Acknowledged = prev.Acknowledged
		a.Inhibited = prev.Inhibited
		// An acknowledged alert stops flashing until it escalates.
		if prev.Acknowledged && prev.Level == level {
			a.Flashing = false
		}
	}
	b.current = append(b.current, a)
}

// Acknowledge marks the alert with the given ID as acknowledged. It returns
// false when no active alert carries that ID.
func (b *AlertBook) Acknowledge(id string) bool {
	for i := range b.current {
		if b.current[i].ID == id {
			b.current[i].Acknowledged = true
			b.current[i].Flashing = false
			return true
		}
	}
	return false
}

// Inhibit sets or clears the inhibited flag on an active alert.
func (b *AlertBook) Inhibit(id string, inhibited bool) bool {
	for i := range b.current {
		if b.current[i].ID == id {
			b.current[i].Inhibited = inhibited
			return true
		}
	}
	return false
}

// Snapshot returns a sorted copy of the current alert list, safe to hold
// across ticks.
func (b *AlertBook) Snapshot() []Alert {
	out := make([]Alert, len(b.current))
	copy(out, b.current)
	SortAlerts(out)
	return out
}
