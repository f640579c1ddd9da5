package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/export"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
)

const clockLayout = "2006-01-02 15:04:05"

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	rules          attendance.Rules
	sweepHour      int
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	rules attendance.Rules,
	sweepHour int,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		rules:          rules,
		sweepHour:      sweepHour,
		now:            time.Now,
	}
}

// Record dispatches on req.Action.
func (s *AttendanceServiceImpl) Record(ctx context.Context, req attendance.CheckRequest) (attendance.Attendance, error) {
	if err := req.Validate(); err != nil {
		return attendance.Attendance{}, err
	}
	switch req.Action {
	case attendance.ActionCheckIn:
		return s.CheckIn(ctx, req)
	case attendance.ActionCheckOut:
		return s.CheckOut(ctx, req)
	}
	return attendance.Attendance{}, attendance.ErrInvalidAction
}

// CheckIn implements attendance.AttendanceService. A row left by the
// absence sweep for today is taken over instead of inserting a second one;
// taking over an on_leave row keeps a note of the overridden leave.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckRequest) (attendance.Attendance, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := policy.Check(actor, policy.EntityAttendance, policy.ActionCreate, policy.Resource{OwnerEmployeeID: actor.EmployeeID}); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.now().UTC()
	date := s.rules.LocalDate(now)

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, actor.EmployeeID, date)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if existing != nil && existing.CheckInTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}

	breakMinutes := 0
	if req.BreakMinutes != nil {
		breakMinutes = *req.BreakMinutes
	}

	if existing != nil {
		overridesLeave := existing.Status == attendance.StatusOnLeave
		existing.CheckInTime = &now
		existing.Status = s.rules.StatusForCheckIn(now)
		existing.BreakMinutes = breakMinutes
		if req.Notes != nil {
			existing.Notes = req.Notes
		}
		if overridesLeave {
			note := attendance.LeaveOverrideNote
			if existing.Notes != nil && *existing.Notes != "" {
				note += "; " + *existing.Notes
			}
			existing.Notes = &note
			slog.Warn("Check-in during approved leave", "employee_id", actor.EmployeeID, "date", date.Format("2006-01-02"))
		}
		if req.Location != nil {
			existing.Location = req.Location
		}
		return s.attendanceRepo.Update(ctx, *existing)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := s.attendanceRepo.Create(ctx, attendance.Attendance{
		ID:           id.String(),
		EmployeeID:   actor.EmployeeID,
		Date:         date,
		CheckInTime:  &now,
		BreakMinutes: breakMinutes,
		Status:       s.rules.StatusForCheckIn(now),
		Notes:        req.Notes,
		Location:     req.Location,
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("Checked in", "employee_id", actor.EmployeeID, "date", date.Format("2006-01-02"), "status", created.Status)
	return created, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckRequest) (attendance.Attendance, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := policy.Check(actor, policy.EntityAttendance, policy.ActionCreate, policy.Resource{OwnerEmployeeID: actor.EmployeeID}); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.now().UTC()
	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, actor.EmployeeID, s.rules.LocalDate(now))
	if err != nil {
		return attendance.Attendance{}, err
	}
	if record == nil || record.CheckInTime == nil {
		return attendance.Attendance{}, attendance.ErrNotCheckedIn
	}
	if record.CheckOutTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	if !now.After(*record.CheckInTime) {
		return attendance.Attendance{}, attendance.ErrCheckOutBeforeIn
	}

	if req.BreakMinutes != nil {
		record.BreakMinutes = *req.BreakMinutes
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if req.Location != nil {
		record.Location = req.Location
	}

	record.CheckOutTime = &now
	record.WorkingHours, record.OvertimeHours = s.rules.ComputeHours(*record.CheckInTime, now, record.BreakMinutes)
	record.Status = attendance.StatusAfterCheckOut(record.Status, record.WorkingHours)

	updated, err := s.attendanceRepo.Update(ctx, *record)
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("Checked out", "employee_id", actor.EmployeeID, "working_hours", updated.WorkingHours)
	return updated, nil
}

func (s *AttendanceServiceImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return attendance.Attendance{}, err
	}
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := policy.Check(actor, policy.EntityAttendance, policy.ActionView, policy.Resource{OwnerEmployeeID: record.EmployeeID}); err != nil {
		return attendance.Attendance{}, err
	}
	return record, nil
}

// Correct lets hr fix a recorded day. Hours are derived again whenever both
// timestamps are known.
func (s *AttendanceServiceImpl) Correct(ctx context.Context, req attendance.CorrectionRequest) (attendance.Attendance, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.Attendance{}, err
	}

	record, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := policy.Check(actor, policy.EntityAttendance, policy.ActionUpdate, policy.Resource{OwnerEmployeeID: record.EmployeeID}); err != nil {
		return attendance.Attendance{}, err
	}

	if req.CheckIn != nil {
		in := req.CheckIn.UTC()
		record.CheckInTime = &in
		record.Status = s.rules.StatusForCheckIn(in)
	}
	if req.CheckOut != nil {
		out := req.CheckOut.UTC()
		record.CheckOutTime = &out
	}
	if req.BreakMinutes != nil {
		record.BreakMinutes = *req.BreakMinutes
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if record.CheckInTime != nil && record.CheckOutTime != nil {
		if !record.CheckOutTime.After(*record.CheckInTime) {
			return attendance.Attendance{}, attendance.ErrCheckOutBeforeIn
		}
		record.WorkingHours, record.OvertimeHours = s.rules.ComputeHours(*record.CheckInTime, *record.CheckOutTime, record.BreakMinutes)
		record.Status = attendance.StatusAfterCheckOut(s.rules.StatusForCheckIn(*record.CheckInTime), record.WorkingHours)
	}
	if req.Status != nil {
		record.Status = attendance.Status(*req.Status)
	}

	updated, err := s.attendanceRepo.Update(ctx, record)
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("Attendance corrected", "attendance_id", updated.ID, "by", actor.UserID)
	return updated, nil
}

func (s *AttendanceServiceImpl) scoped(ctx context.Context, filter *attendance.AttendanceFilter) error {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return err
	}
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Scope = actor.Scope.Narrow(filter.EmployeeID)
	return nil
}

func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (pagination.Result[attendance.Attendance, attendance.Summary], error) {
	if err := s.scoped(ctx, &filter); err != nil {
		return pagination.Result[attendance.Attendance, attendance.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(attendance.DefaultLimit)

	return query.Execute(ctx, filter.Params, query.Reader[attendance.Attendance, attendance.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.attendanceRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]attendance.Attendance, error) {
			return s.attendanceRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (attendance.Summary, error) {
			return s.attendanceRepo.Summarize(ctx, filter)
		},
	})
}

// Summary aggregates attendance per employee within the caller's scope.
func (s *AttendanceServiceImpl) Summary(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.EmployeeSummary, error) {
	if err := s.scoped(ctx, &filter); err != nil {
		return nil, err
	}

	rows, err := s.attendanceRepo.SummarizeByEmployee(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Finalize()
	}
	if rows == nil {
		rows = []attendance.EmployeeSummary{}
	}
	return rows, nil
}

// Export renders every scoped row matching filter as a workbook.
func (s *AttendanceServiceImpl) Export(ctx context.Context, filter attendance.AttendanceFilter) ([]byte, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.EntityAttendance, policy.ActionExport, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Scope = actor.Scope.Narrow(filter.EmployeeID)

	records, err := s.attendanceRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Name:    "Attendance",
		Headers: []string{"Employee Code", "Employee", "Date", "Check In", "Check Out", "Break (min)", "Working Hours", "Overtime Hours", "Status", "Notes"},
		Widths:  map[int]float64{1: 15, 2: 28, 3: 12, 4: 20, 5: 20, 10: 40},
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []interface{}{
			deref(r.EmployeeCode),
			deref(r.EmployeeName),
			r.Date.Format("2006-01-02"),
			s.clock(r.CheckInTime),
			s.clock(r.CheckOutTime),
			r.BreakMinutes,
			r.WorkingHours,
			r.OvertimeHours,
			string(r.Status),
			deref(r.Notes),
		})
	}

	data, err := export.XLSX(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance export: %w", err)
	}

	slog.Info("Attendance exported", "rows", len(records), "by", actor.UserID)
	return data, nil
}

// SweepAbsences fills today's missing rows once the local clock has passed
// the sweep hour on a work day. Running it again the same day inserts nothing.
func (s *AttendanceServiceImpl) SweepAbsences(ctx context.Context) error {
	now := s.now()
	if !s.rules.IsWorkDay(now) {
		slog.Debug("Attendance sweep skipped on non-work day", "weekday", s.rules.InZone(now).Weekday().String())
		return nil
	}
	if s.rules.InZone(now).Hour() < s.sweepHour {
		slog.Debug("Attendance sweep skipped before sweep hour", "sweep_hour", s.sweepHour)
		return nil
	}

	date := s.rules.LocalDate(now)
	res, err := s.attendanceRepo.FillMissing(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to sweep attendance for %s: %w", date.Format("2006-01-02"), err)
	}

	slog.Info("Attendance sweep finished", "date", date.Format("2006-01-02"), "absent", res.Absent, "on_leave", res.OnLeave)
	return nil
}

func (s *AttendanceServiceImpl) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return s.rules.InZone(*t).Format(clockLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
