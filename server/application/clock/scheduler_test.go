package clock_test

import (
	"testing"
	"time"

	"skirmish/server/application/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScheduler_DrainOrder(t *testing.T) {
	s := clock.NewScheduler()
	var got []string

	s.At(epoch.Add(300*time.Millisecond), func(time.Time) { got = append(got, "c") })
	s.At(epoch.Add(100*time.Millisecond), func(time.Time) { got = append(got, "a") })
	s.At(epoch.Add(100*time.Millisecond), func(time.Time) { got = append(got, "b") })

	if n := s.Drain(epoch.Add(50 * time.Millisecond)); n != 0 {
		t.Fatalf("Drain before due ran %d tasks, want 0", n)
	}
	if n := s.Drain(epoch.Add(100 * time.Millisecond)); n != 2 {
		t.Fatalf("Drain ran %d tasks, want 2", n)
	}
	s.Drain(epoch.Add(time.Second))

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScheduler_TaskReceivesDrainTime(t *testing.T) {
	s := clock.NewScheduler()
	var at time.Time
	s.After(epoch, 100*time.Millisecond, func(now time.Time) { at = now })

	drainAt := epoch.Add(116 * time.Millisecond)
	s.Drain(drainAt)

	if !at.Equal(drainAt) {
		t.Errorf("task now = %v, want %v", at, drainAt)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := clock.NewScheduler()
	ran := false
	id := s.At(epoch, func(time.Time) { ran = true })

	if !s.Cancel(id) {
		t.Fatal("Cancel() = false, want true")
	}
	if s.Cancel(id) {
		t.Error("second Cancel() = true, want false")
	}
	s.Drain(epoch.Add(time.Hour))
	if ran {
		t.Error("cancelled task ran")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestScheduler_NestedScheduling(t *testing.T) {
	s := clock.NewScheduler()
	var order []int
	s.At(epoch, func(now time.Time) {
		order = append(order, 1)
		s.At(now, func(time.Time) { order = append(order, 2) })
		s.At(now.Add(time.Second), func(time.Time) { order = append(order, 3) })
	})

	s.Drain(epoch)
	if len(order) != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestManual_Advance(t *testing.T) {
	c := clock.NewManual(epoch)
	got := c.Advance(16 * time.Millisecond)
	if !got.Equal(epoch.Add(16 * time.Millisecond)) {
		t.Errorf("Advance() = %v", got)
	}
	if !c.Now().Equal(got) {
		t.Errorf("Now() = %v, want %v", c.Now(), got)
	}
}
