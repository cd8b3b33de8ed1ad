// Package schedule runs cron-driven jobs: scheduled retraining rules and
// endpoint monitoring schedules.
package schedule

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled unit of work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context)

// Validate reports whether spec is a valid standard cron expression.
func Validate(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Scheduler wraps a cron runner with named, replaceable entries.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped Scheduler.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Register adds a named job with the given cron spec. Registering an existing
// name replaces the previous entry.
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() { job(s.ctx) })
	if err != nil {
		return err
	}
	if old, ok := s.entries[name]; ok {
		s.cron.Remove(old)
	}
	s.entries[name] = id
	return nil
}

// Remove drops a named job. Removing an unknown name is a no-op.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels job contexts and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
