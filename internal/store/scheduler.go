package store

import (
	"sync"
	"time"

	"github.com/jmalmgren/repodeck/internal/logger"
)

// Scheduler owns the periodic refresh timer. Start and Stop are idempotent;
// starting while already running cancels the prior timer first, so at most
// one timer exists at a time.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func()
	stop     chan struct{}
}

func NewScheduler(interval time.Duration, fn func()) *Scheduler {
	return &Scheduler{interval: interval, fn: fn}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop
	go s.run(stop)

	logger.Log("scheduler started (interval %s)", s.interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil

	logger.Log("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) run(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fn()
		case <-stop:
			return
		}
	}
}
