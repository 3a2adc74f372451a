package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name     string
	schedule string
	handler  func() error
	cronID   cron.EntryID
	lastRun  *time.Time
	lastErr  string
}

// Service runs the pipeline stages on cron schedules. A global mutex
// serializes job execution: the stages share one store and one portal
// session budget, and overlapping runs would race on hearing
// lookup-or-create.
type Service struct {
	cron     *cron.Cron
	logger   arbor.ILogger
	mu       sync.Mutex // Protects jobs map and running flag
	globalMu sync.Mutex // Prevents concurrent job execution
	jobs     map[string]*jobEntry
	running  bool
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// Register adds a named job on a cron schedule. Jobs registered after Start
// are picked up immediately.
func (s *Service) Register(name, schedule string, handler func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{name: name, schedule: schedule, handler: handler}
	cronID, err := s.cron.AddFunc(schedule, func() { s.runJob(entry) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().Str("job", name).Str("schedule", schedule).Msg("Registered scheduled job")
	return nil
}

func (s *Service) runJob(entry *jobEntry) {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	now := time.Now()
	entry.lastRun = &now

	s.logger.Info().Str("job", entry.name).Msg("Running scheduled job")
	if err := entry.handler(); err != nil {
		entry.lastErr = err.Error()
		s.logger.Error().Str("job", entry.name).Err(err).Msg("Scheduled job failed")
		return
	}
	entry.lastErr = ""
	s.logger.Info().
		Str("job", entry.name).
		Str("duration", time.Since(now).String()).
		Msg("Scheduled job completed")
}

// Start begins the scheduler
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}
