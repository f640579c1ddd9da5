package cron

import (
	"context"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
)

const AttendanceSweepJob = "attendance_sweep"

// AttendanceJobs contains attendance-related cron jobs
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService) *AttendanceJobs {
	return &AttendanceJobs{attendanceService: attendanceService}
}

// RegisterJobs registers all attendance-related cron jobs. The sweep itself
// is a no-op before the configured local hour.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJobWithTimeout(AttendanceSweepJob, time.Hour, 10*time.Minute, j.SweepAbsences)
}

// SweepAbsences records absent or on_leave rows for active employees
// without an attendance entry today.
func (j *AttendanceJobs) SweepAbsences(ctx context.Context) error {
	return j.attendanceService.SweepAbsences(ctx)
}
