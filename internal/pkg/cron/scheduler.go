package cron

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const defaultJobTimeout = 5 * time.Minute

// Job is a named function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error

	running atomic.Bool
	stats   Stats
	mu      sync.Mutex
}

// Stats describes what a job has done so far.
type Stats struct {
	Runs      int
	Failures  int
	Skipped   int
	LastRunAt time.Time
	LastError error
}

// Scheduler runs registered jobs until stopped.
type Scheduler struct {
	jobs   []*Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	now    func() time.Time
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// AddJob registers fn with the default timeout.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.AddJobWithTimeout(name, interval, defaultJobTimeout, fn)
}

func (s *Scheduler) AddJobWithTimeout(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval, "timeout", timeout)
}

// Start runs every job once right away, then on its interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels in-flight runs and waits for every loop to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.execute(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

// execute runs job under its timeout. A run still in progress makes the
// next tick a no-op.
func (s *Scheduler) execute(parent context.Context, job *Job) {
	if !job.running.CompareAndSwap(false, true) {
		job.record(s.now(), nil, true)
		slog.Warn("Cron job still running, tick skipped", "name", job.Name)
		return
	}
	defer job.running.Store(false)

	ctx, cancel := context.WithTimeout(parent, job.Timeout)
	defer cancel()

	start := s.now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(ctx)
	job.record(start, err, false)
	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every job a single time in registration order.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.execute(ctx, job)
	}
}

// Stats returns a snapshot per job name.
func (s *Scheduler) Stats() map[string]Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Stats, len(s.jobs))
	for _, job := range s.jobs {
		job.mu.Lock()
		out[job.Name] = job.stats
		job.mu.Unlock()
	}
	return out
}

func (j *Job) record(at time.Time, err error, skipped bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if skipped {
		j.stats.Skipped++
		return
	}
	j.stats.Runs++
	j.stats.LastRunAt = at
	j.stats.LastError = err
	if err != nil {
		j.stats.Failures++
	}
}
