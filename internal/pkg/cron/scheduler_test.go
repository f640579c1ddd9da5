package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepCounter struct {
	attendance.AttendanceService
	calls atomic.Int32
	err   error
}

func (s *sweepCounter) SweepAbsences(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestScheduler_RunOnce(t *testing.T) {
	svc := &sweepCounter{}
	s := NewScheduler()
	NewAttendanceJobs(svc).RegisterJobs(s)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), svc.calls.Load())

	svc.err = errors.New("boom")
	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), svc.calls.Load())

	stats := s.Stats()[AttendanceSweepJob]
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 1, stats.Failures)
	assert.EqualError(t, stats.LastError, "boom")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	svc := &sweepCounter{}
	s := NewScheduler()
	NewAttendanceJobs(svc).RegisterJobs(s)

	s.Start()
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	s := NewScheduler()
	s.AddJob("slow", time.Hour, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		s.RunOnce(context.Background())
		close(done)
	}()
	<-started

	s.RunOnce(context.Background())
	close(release)
	<-done

	stats := s.Stats()["slow"]
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 1, stats.Skipped)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler()
	s.AddJobWithTimeout("bounded", time.Hour, 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	s.RunOnce(context.Background())

	stats := s.Stats()["bounded"]
	require.Equal(t, 1, stats.Failures)
	assert.ErrorIs(t, stats.LastError, context.DeadlineExceeded)
}
