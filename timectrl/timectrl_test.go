package timectrl

import (
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerStepNotifiesListeners(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 100*time.Millisecond, Accelerated)

	var seen []time.Time
	tc.AddListener(func(now time.Time) { seen = append(seen, now) })

	tc.Step()
	tc.Step()
	tc.Step()

	if len(seen) != 3 {
		t.Fatalf("listener fired %d times, want 3", len(seen))
	}
	if want := start.Add(300 * time.Millisecond); !seen[2].Equal(want) {
		t.Fatalf("third tick at %v, want %v", seen[2], want)
	}
	if got := tc.Now(); !got.Equal(seen[2]) {
		t.Fatalf("Now() = %v, want %v", got, seen[2])
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, Accelerated)

	done := tc.Start(15 * time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestTimeControllerStopEndsUnboundedRun(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Millisecond, Accelerated)

	ticks := make(chan struct{}, 1)
	tc.AddListener(func(time.Time) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := tc.Start(0)
	<-ticks
	tc.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start loop did not stop")
	}
}
