package retention

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler deletes files after a delay. Pending deletions can be cancelled
// individually or all at once.
type Scheduler struct {
	logger zerolog.Logger
	remove func(string) error

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewScheduler creates a scheduler that deletes with os.Remove.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.With().Str("component", "retention").Logger(),
		remove: os.Remove,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule deletes path after delay. Scheduling an existing key replaces its
// pending deletion. It reports false once the scheduler is stopped.
func (s *Scheduler) Schedule(key, path string, delay time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[key] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		if err := s.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", path).Msg("scheduled delete failed")
			return
		}
		s.logger.Info().Str("path", path).Msg("expired upload deleted")
	})
	s.timers[key] = timer

	s.logger.Debug().Str("key", key).Str("path", path).Dur("delay", delay).Msg("deletion scheduled")
	return true
}

// Cancel stops the pending deletion for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

// Pending returns the number of scheduled deletions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending deletion and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.stopped = true
}
