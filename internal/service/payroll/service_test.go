package payroll

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bossID = "0198a0f2-7b8c-7b4a-8a2b-000000000001"
	devID  = "0198a0f2-7b8c-7b4a-8a2b-000000000002"
)

type memPayrolls struct {
	rows map[string]payroll.Payroll
}

func (m *memPayrolls) Upsert(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	for id, existing := range m.rows {
		if existing.EmployeeID == p.EmployeeID && existing.PeriodStart.Equal(p.PeriodStart) {
			if existing.Status != payroll.StatusDraft {
				return payroll.Payroll{}, payroll.ErrPayrollLocked
			}
			p.ID = id
		}
	}
	m.rows[p.ID] = p
	return p, nil
}

func (m *memPayrolls) GetByID(_ context.Context, id string) (payroll.Payroll, error) {
	p, ok := m.rows[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (m *memPayrolls) UpdateStatus(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	m.rows[p.ID] = p
	return p, nil
}

func (m *memPayrolls) visible(filter payroll.PayrollFilter) []payroll.Payroll {
	var out []payroll.Payroll
	for _, p := range m.rows {
		if filter.Scope.Allows(p.EmployeeID) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memPayrolls) Count(_ context.Context, filter payroll.PayrollFilter) (int64, error) {
	return int64(len(m.visible(filter))), nil
}

func (m *memPayrolls) List(_ context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, error) {
	return m.visible(filter), nil
}

func (m *memPayrolls) Summarize(_ context.Context, filter payroll.PayrollFilter) (payroll.Summary, error) {
	s := payroll.Summary{ByStatus: map[payroll.Status]int64{}, TotalGross: decimal.Zero, TotalNet: decimal.Zero}
	for _, p := range m.visible(filter) {
		s.ByStatus[p.Status]++
		s.TotalNet = s.TotalNet.Add(p.NetPay)
	}
	return s, nil
}

func (m *memPayrolls) byEmployee(employeeID string) payroll.Payroll {
	for _, p := range m.rows {
		if p.EmployeeID == employeeID {
			return p
		}
	}
	return payroll.Payroll{}
}

type memEmployees struct {
	employee.EmployeeRepository
	rows    map[string]employee.Employee
	reports servicetest.Reports
}

func (m memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m memEmployees) ListActive(context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range m.rows {
		if e.Status == employee.StatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEmployees) ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error) {
	return m.reports.ListDirectReportIDs(ctx, managerID)
}

type overtimeOnly struct {
	attendance.AttendanceRepository
	hours map[string]float64
}

func (o overtimeOnly) SumOvertime(_ context.Context, employeeID string, _, _ time.Time) (float64, error) {
	return o.hours[employeeID], nil
}

type unpaidOnly struct {
	leave.LeaveRepository
	days map[string]int
}

func (u unpaidOnly) ApprovedDays(_ context.Context, employeeID string, t leave.Type, _, _ time.Time) (int, error) {
	if t != leave.TypeUnpaid {
		return 0, nil
	}
	return u.days[employeeID], nil
}

var (
	hr   = servicetest.As("u-hr", user.RoleHRManager, "")
	boss = servicetest.As("u-boss", user.RoleManager, bossID)
	dev  = servicetest.As("u-dev", user.RoleEmployee, devID)
)

func newTestService() (*PayrollServiceImpl, *memPayrolls, *servicetest.Tx) {
	repo := &memPayrolls{rows: map[string]payroll.Payroll{}}
	employees := memEmployees{
		rows: map[string]employee.Employee{
			bossID: {ID: bossID, Salary: decimal.NewFromInt(8800), Status: employee.StatusActive},
			devID:  {ID: devID, Salary: decimal.NewFromInt(4400), Status: employee.StatusActive, EmployeeCode: "EMP0002"},
		},
		reports: servicetest.Reports{bossID: {devID}},
	}
	rates := payroll.Rates{
		WorkingDays:        22,
		StandardHours:      8,
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		TaxRate:            decimal.RequireFromString("0.10"),
	}
	tx := &servicetest.Tx{}
	svc := NewPayrollService(tx, repo, employees,
		overtimeOnly{hours: map[string]float64{devID: 4}},
		unpaidOnly{days: map[string]int{devID: 2}},
		rates,
	).(*PayrollServiceImpl)
	svc.now = servicetest.Clock(time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	return svc, repo, tx
}

func TestGenerate(t *testing.T) {
	svc, repo, tx := newTestService()

	_, err := svc.Generate(boss, payroll.GenerateRequest{Month: "2026-03"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	res, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03", res.Period)
	assert.Equal(t, 2, res.Generated)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 1, tx.Calls)

	p := repo.byEmployee(devID)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), p.PeriodEnd)
	assert.Equal(t, "150", p.OvertimePay.String())
	assert.Equal(t, "400", p.Deductions.String())
	assert.Equal(t, "4550", p.GrossPay.String())
	assert.Equal(t, "415", p.Tax.String())
	assert.Equal(t, "3735", p.NetPay.String())
	assert.Equal(t, payroll.StatusDraft, p.Status)

	res, err = svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Generated)
	assert.Len(t, repo.rows, 2)
}

func TestGenerate_SkipsLockedPeriod(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)

	p := repo.byEmployee(devID)
	_, err = svc.UpdateStatus(hr, payroll.StatusRequest{ID: p.ID, Status: "processed"})
	require.NoError(t, err)

	res, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03", EmployeeIDs: []string{devID, bossID}})
	require.NoError(t, err)
	assert.Equal(t, []string{devID}, res.Skipped)
	assert.Equal(t, 1, res.Generated)
}

func TestUpdateStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)
	id := repo.byEmployee(devID).ID

	_, err = svc.UpdateStatus(hr, payroll.StatusRequest{ID: id, Status: "paid"})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	_, err = svc.UpdateStatus(dev, payroll.StatusRequest{ID: id, Status: "processed"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	got, err := svc.UpdateStatus(hr, payroll.StatusRequest{ID: id, Status: "processed"})
	require.NoError(t, err)
	assert.NotNil(t, got.ProcessedAt)

	got, err = svc.UpdateStatus(hr, payroll.StatusRequest{ID: id, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, got.Status)
}

func TestList_SelfOnlyForManagers(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)

	res, err := svc.List(boss, payroll.PayrollFilter{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, bossID, res.Records[0].EmployeeID)

	res, err = svc.List(boss, payroll.PayrollFilter{EmployeeID: devID})
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	res, err = svc.List(hr, payroll.PayrollFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)
}

func TestPayslip(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Generate(hr, payroll.GenerateRequest{Month: "2026-03"})
	require.NoError(t, err)
	p := repo.byEmployee(devID)
	p.EmployeeCode = servicetest.Ptr("EMP0002")
	repo.rows[p.ID] = p

	_, _, err = svc.Payslip(boss, p.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	data, name, err := svc.Payslip(dev, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "payslip-EMP0002-2026-03.pdf", name)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
