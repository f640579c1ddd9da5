package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewUserRepository(testDB)

	emp := createEmployee(t, ctx, "EMP0001", "ada@example.com", nil)
	created := createUser(t, ctx, "Ada@Example.com", user.RoleEmployee, &emp.ID)

	found, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.EmployeeName)
	assert.Equal(t, "Test EMP0001", *found.EmployeeName)

	_, err = repo.Create(ctx, user.User{ID: uuid.NewString(), Email: "ADA@example.com", PasswordHash: "x", Role: user.RoleEmployee, IsActive: true})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEmployeeRepository_ScopedList(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewEmployeeRepository(testDB)

	manager := createEmployee(t, ctx, "EMP0001", "m@example.com", nil)
	report := createEmployee(t, ctx, "EMP0002", "r@example.com", &manager.ID)
	createEmployee(t, ctx, "EMP0003", "o@example.com", nil)

	reports, err := repo.ListDirectReportIDs(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{report.ID}, reports)

	filter := employee.EmployeeFilter{
		Params: pagination.Params{Page: 1, Limit: 10},
		Scope:  policy.Only(manager.ID, report.ID),
	}
	total, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	list, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	filter.Page = 5
	list, err = repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, list)

	last, err := repo.LastEmployeeCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EMP0003", last)

	_, err = repo.Create(ctx, employee.Employee{
		ID: uuid.NewString(), EmployeeCode: "EMP0009", FirstName: "Dup", LastName: "Email",
		Email: "M@example.com", Position: "x", HireDate: time.Now(), Status: employee.StatusActive,
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestAttendanceRepository_UniquePerDay(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewAttendanceRepository(testDB)
	emp := createEmployee(t, ctx, "EMP0001", "a@example.com", nil)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	in := time.Date(2024, 3, 4, 8, 55, 0, 0, time.UTC)
	_, err := repo.Create(ctx, attendance.Attendance{
		ID: uuid.NewString(), EmployeeID: emp.ID, Date: day, CheckInTime: &in, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, attendance.Attendance{
		ID: uuid.NewString(), EmployeeID: emp.ID, Date: day, CheckInTime: &in, Status: attendance.StatusPresent,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	found, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, attendance.StatusPresent, found.Status)

	res, err := repo.FillMissing(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, attendance.SweepResult{}, res)

	res, err = repo.FillMissing(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Absent)
}

func TestLeaveRepository_Overlap(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewLeaveRepository(testDB)
	emp := createEmployee(t, ctx, "EMP0001", "a@example.com", nil)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, leave.Leave{
		ID: uuid.NewString(), EmployeeID: emp.ID, LeaveType: leave.TypeAnnual, StartDate: start, EndDate: end,
		TotalDays: 3, Reason: "trip", Status: leave.StatusPending,
	})
	require.NoError(t, err)

	overlap, err := repo.HasOverlap(ctx, emp.ID, end, end.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, emp.ID, end.AddDate(0, 0, 1), end.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.False(t, overlap)

	usage, err := repo.UsageByType(ctx, emp.ID, 2030)
	require.NoError(t, err)
	assert.Equal(t, leave.Usage{Pending: 3}, usage[leave.TypeAnnual])
}

func TestLeaveRepository_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewLeaveRepository(testDB)
	emp := createEmployee(t, ctx, "EMP0001", "a@example.com", nil)

	pending, err := repo.Create(ctx, leave.Leave{
		ID: uuid.NewString(), EmployeeID: emp.ID, LeaveType: leave.TypeAnnual,
		StartDate: time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC),
		TotalDays: 2, Reason: "trip", Status: leave.StatusPending,
	})
	require.NoError(t, err)

	cancelled := pending
	require.NoError(t, cancelled.Cancel(time.Now()))
	_, err = repo.UpdateStatus(ctx, cancelled, leave.StatusPending)
	require.NoError(t, err)

	approved := pending
	require.NoError(t, approved.Decide(true, emp.ID, nil, time.Now()))
	_, err = repo.UpdateStatus(ctx, approved, leave.StatusPending)
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)

	got, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, got.Status)

	missing := approved
	missing.ID = uuid.NewString()
	_, err = repo.UpdateStatus(ctx, missing, leave.StatusPending)
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestLeaveRepository_LockEmployeeInsideTx(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewLeaveRepository(testDB)
	emp := createEmployee(t, ctx, "EMP0001", "a@example.com", nil)

	err := postgresql.NewTransactor(testDB).WithinTx(ctx, func(ctx context.Context) error {
		return repo.LockEmployee(ctx, emp.ID)
	})
	assert.NoError(t, err)
}

func TestTaskRepository_ScopeByAssignee(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewTaskRepository(testDB)

	boss := createEmployee(t, ctx, "EMP0001", "b@example.com", nil)
	worker := createEmployee(t, ctx, "EMP0002", "w@example.com", nil)
	other := createEmployee(t, ctx, "EMP0003", "o@example.com", nil)
	assigner := createUser(t, ctx, "b@example.com", user.RoleManager, &boss.ID)

	_, err := repo.Create(ctx, task.Task{
		ID: uuid.NewString(), Title: "Ship", Priority: task.PriorityHigh, Status: task.StatusTodo,
		AssignedBy: assigner.ID, AssignedTo: []string{worker.ID},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		EstimatedHours: 10,
	})
	require.NoError(t, err)

	params := pagination.Params{Page: 1, Limit: 10}
	for _, tc := range []struct {
		scope policy.Scope
		want  int64
	}{
		{policy.Only(worker.ID), 1},
		{policy.Only(boss.ID), 1},
		{policy.Only(other.ID), 0},
		{policy.All(), 1},
	} {
		n, err := repo.Count(ctx, task.TaskFilter{Params: params, Scope: tc.scope})
		require.NoError(t, err)
		assert.Equal(t, tc.want, n)
	}

	totals, err := repo.Totals(ctx, task.TaskFilter{Params: params, Scope: policy.All(), Now: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, totals.Overdue)
	assert.Equal(t, 10.0, totals.EstimatedHours)
}

func TestPayrollRepository_UpsertLocksAfterDraft(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewPayrollRepository(testDB)
	emp := createEmployee(t, ctx, "EMP0001", "a@example.com", nil)

	start, end, err := payroll.ParsePeriod("2024-03")
	require.NoError(t, err)
	p := payroll.Payroll{
		ID: uuid.NewString(), EmployeeID: emp.ID, PeriodStart: start, PeriodEnd: end,
		BaseSalary: decimal.NewFromInt(4000), GrossPay: decimal.NewFromInt(4000), NetPay: decimal.NewFromInt(3600),
		Tax: decimal.NewFromInt(400),
	}
	first, err := repo.Upsert(ctx, p)
	require.NoError(t, err)

	p.ID = uuid.NewString()
	p.NetPay = decimal.NewFromInt(3500)
	second, err := repo.Upsert(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.NetPay.Equal(decimal.NewFromInt(3500)))

	require.NoError(t, second.Advance(payroll.StatusProcessed, time.Now()))
	_, err = repo.UpdateStatus(ctx, second)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, p)
	assert.ErrorIs(t, err, payroll.ErrPayrollLocked)
}

func TestRevocationRepository_ListActive(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewRevocationRepository(testDB)
	now := time.Now()

	require.NoError(t, repo.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "stale", now.Add(-time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "live", now.Add(2*time.Hour)))

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.WithinDuration(t, now.Add(2*time.Hour), active["live"], time.Second)
}
