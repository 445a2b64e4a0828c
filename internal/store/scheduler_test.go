package store

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerStartStop(t *testing.T) {
	var ticks atomic.Int64
	sched := NewScheduler(10*time.Millisecond, func() { ticks.Add(1) })

	if sched.Running() {
		t.Fatal("New scheduler must not be running")
	}

	sched.Start()
	defer sched.Stop()
	if !sched.Running() {
		t.Fatal("Scheduler should report running after Start")
	}

	deadline := time.After(time.Second)
	for ticks.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Scheduler never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sched.Stop()
	if sched.Running() {
		t.Error("Scheduler should report stopped after Stop")
	}

	seen := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != seen {
		t.Error("Scheduler must not tick after Stop")
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	sched := NewScheduler(time.Hour, func() {})

	sched.Stop()
	sched.Start()
	sched.Stop()
	sched.Stop()

	if sched.Running() {
		t.Error("Scheduler should be stopped")
	}
}

func TestSchedulerRestartReplacesTimer(t *testing.T) {
	var ticks atomic.Int64
	sched := NewScheduler(20*time.Millisecond, func() { ticks.Add(1) })

	// Restarting repeatedly must never stack timers.
	for i := 0; i < 5; i++ {
		sched.Start()
	}
	defer sched.Stop()

	time.Sleep(110 * time.Millisecond)
	got := ticks.Load()

	// One live timer ticks ~5 times in the window; stacked timers would
	// multiply that.
	if got > 8 {
		t.Errorf("Restart stacked timers: %d ticks in window", got)
	}
	if got == 0 {
		t.Error("Restarted scheduler never ticked")
	}
}
