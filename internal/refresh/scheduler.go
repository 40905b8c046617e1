package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"monitoring-console/internal/observability/metrics"
)

// Job re-dispatches one slice fetch. A returned error marks the run failed.
type Job func(ctx context.Context) error

// Scheduler runs slice refresh jobs on cron specs.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// Option customizes the scheduler.
type Option func(*Scheduler)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithTimeout bounds every run.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScheduler constructs a stopped scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		logger:  zerolog.Nop(),
		timeout: 30 * time.Second,
		entries: make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Add registers job under name. An empty spec skips the job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if job == nil {
		return errors.New("refresh: nil job")
	}
	if spec == "" {
		s.logger.Debug().Str("job", name).Msg("refresh job disabled")
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() { s.Run(name, job) })
	if err != nil {
		return err
	}
	s.mu.Lock()
	if old, ok := s.entries[name]; ok {
		s.cron.Remove(old)
	}
	s.entries[name] = id
	s.mu.Unlock()
	s.logger.Info().Str("job", name).Str("spec", spec).Msg("refresh job scheduled")
	return nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	return out
}

// Run executes job once and records the result.
func (s *Scheduler) Run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := job(ctx); err != nil {
		metrics.IncRefreshRun(name, metrics.ResultError)
		s.logger.Warn().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("refresh failed")
		return
	}
	metrics.IncRefreshRun(name, metrics.ResultSuccess)
	s.logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("refresh done")
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
