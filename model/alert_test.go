package model

import (
	"testing"
	"time"
)

// tickClock returns a clock function that advances one second per Begin call
// via the returned step func.
func tickClock(start time.Time) (func() time.Time, func()) {
	now := start
	return func() time.Time { return now }, func() { now = now.Add(time.Second) }
}

func TestAlertBookCarriesFlagsWhileActive(t *testing.T) {
	start := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	clock, step := tickClock(start)
	book := NewAlertBook("ELEC", clock)

	book.Begin()
	book.Raise("GEN-1-FAIL", AlertWarning, "generator 1 offline")
	if !book.Acknowledge("GEN-1-FAIL") {
		t.Fatalf("Acknowledge(GEN-1-FAIL) = false, want true")
	}

	step()
	book.Begin()
	book.Raise("GEN-1-FAIL", AlertWarning, "generator 1 offline")

	alerts := book.Snapshot()
	if len(alerts) != 1 {
		t.Fatalf("Snapshot() returned %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if !a.Acknowledged {
		t.Fatalf("alert active across ticks lost its acknowledgement")
	}
	if a.Flashing {
		t.Fatalf("acknowledged alert resumed flashing without escalating")
	}
	if !a.Timestamp.Equal(start) {
		t.Fatalf("alert timestamp = %v, want original %v", a.Timestamp, start)
	}
}

func TestAlertBookClearedAlertReRaisesFresh(t *testing.T) {
	start := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	clock, step := tickClock(start)
	book := NewAlertBook("ELEC", clock)

	book.Begin()
	book.Raise("GEN-1-FAIL", AlertWarning, "generator 1 offline")
	if !book.Acknowledge("GEN-1-FAIL") {
		t.Fatalf("Acknowledge(GEN-1-FAIL) = false, want true")
	}

	// Condition clears: several ticks pass with nothing raised.
	for i := 0; i < 10; i++ {
		step()
		book.Begin()
	}
	if got := book.Snapshot(); len(got) != 0 {
		t.Fatalf("Snapshot() after clear returned %d alerts, want 0", len(got))
	}

	// Condition recurs: the alert must present as new.
	step()
	book.Begin()
	book.Raise("GEN-1-FAIL", AlertWarning, "generator 1 offline")

	alerts := book.Snapshot()
	if len(alerts) != 1 {
		t.Fatalf("Snapshot() returned %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Acknowledged {
		t.Fatalf("re-raised alert arrived pre-acknowledged")
	}
	if !a.Flashing {
		t.Fatalf("re-raised WARNING alert not flashing")
	}
	want := start.Add(11 * time.Second)
	if !a.Timestamp.Equal(want) {
		t.Fatalf("re-raised alert timestamp = %v, want %v", a.Timestamp, want)
	}
}

func TestAlertBookEscalationResumesFlashing(t *testing.T) {
	clock, step := tickClock(time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC))
	book := NewAlertBook("HYD", clock)

	book.Begin()
	book.Raise("GREEN-PRESS-LOW", AlertCaution, "green circuit pressure low")
	if !book.Acknowledge("GREEN-PRESS-LOW") {
		t.Fatalf("Acknowledge(GREEN-PRESS-LOW) = false, want true")
	}

	step()
	book.Begin()
	book.Raise("GREEN-PRESS-LOW", AlertWarning, "green circuit pressure low")

	alerts := book.Snapshot()
	if len(alerts) != 1 {
		t.Fatalf("Snapshot() returned %d alerts, want 1", len(alerts))
	}
	if !alerts[0].Flashing {
		t.Fatalf("escalated alert did not resume flashing")
	}
}
