package employee

import (
	"context"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/department"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/etms-hr/etms-backend-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEmployees struct {
	rows    map[string]employee.Employee
	reports servicetest.Reports
	last    string
}

func (m *memEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.rows[e.ID] = e
	m.last = e.EmployeeCode
	return e, nil
}

func (m *memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memEmployees) Update(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.rows[e.ID] = e
	return e, nil
}

func (m *memEmployees) SoftDelete(_ context.Context, id string, at time.Time) error {
	e := m.rows[id]
	e.Status = employee.StatusTerminated
	e.DeletedAt = &at
	m.rows[id] = e
	return nil
}

func (m *memEmployees) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for _, e := range m.rows {
		if e.Email == email && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEmployees) LastEmployeeCode(context.Context) (string, error) {
	return m.last, nil
}

func (m *memEmployees) ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error) {
	return m.reports.ListDirectReportIDs(ctx, managerID)
}

func (m *memEmployees) ListActive(context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (m *memEmployees) visible(filter employee.EmployeeFilter) []employee.Employee {
	var out []employee.Employee
	for _, e := range m.rows {
		if filter.Scope.Allows(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memEmployees) Count(_ context.Context, filter employee.EmployeeFilter) (int64, error) {
	return int64(len(m.visible(filter))), nil
}

func (m *memEmployees) List(_ context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return m.visible(filter), nil
}

func (m *memEmployees) Summarize(_ context.Context, filter employee.EmployeeFilter) (employee.Summary, error) {
	s := employee.Summary{ByStatus: map[employee.Status]int64{}}
	for _, e := range m.visible(filter) {
		s.Total++
		s.ByStatus[e.Status]++
	}
	return s, nil
}

type memDepartments struct {
	department.DepartmentRepository
	ids map[string]bool
}

func (m *memDepartments) GetByID(_ context.Context, id string) (department.Department, error) {
	if !m.ids[id] {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return department.Department{ID: id}, nil
}

type memUsers struct {
	user.UserRepository
	created     []user.User
	deactivated []string
}

func (m *memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	m.created = append(m.created, u)
	return u, nil
}

func (m *memUsers) DeactivateByEmployeeID(_ context.Context, employeeID string) error {
	m.deactivated = append(m.deactivated, employeeID)
	return nil
}

type fixture struct {
	svc   *EmployeeServiceImpl
	repo  *memEmployees
	users *memUsers
	tx    *servicetest.Tx
}

func newFixture() fixture {
	repo := &memEmployees{
		rows: map[string]employee.Employee{
			"boss": {ID: "boss", EmployeeCode: "EMP0001", FirstName: "Grace", Email: "grace@example.com", Status: employee.StatusActive},
			"dev":  {ID: "dev", EmployeeCode: "EMP0002", FirstName: "Alan", Email: "alan@example.com", Status: employee.StatusActive, ManagerID: servicetest.Ptr("boss")},
			"ops":  {ID: "ops", EmployeeCode: "EMP0003", FirstName: "Linus", Email: "linus@example.com", Status: employee.StatusActive},
		},
		reports: servicetest.Reports{"boss": {"dev"}},
		last:    "EMP0003",
	}
	users := &memUsers{}
	tx := &servicetest.Tx{}
	svc := NewEmployeeService(tx, repo, &memDepartments{ids: map[string]bool{"d1": true}}, users).(*EmployeeServiceImpl)
	svc.now = servicetest.Clock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return fixture{svc: svc, repo: repo, users: users, tx: tx}
}

func validCreate() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName:    "Barbara",
		LastName:     "Liskov",
		Email:        "Barbara@Example.com ",
		DepartmentID: servicetest.Ptr("0198a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"),
		Position:     "Engineer",
		Salary:       servicetest.Ptr(decimal.NewFromInt(5000)),
		HireDate:     "2026-03-01",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()
	f.svc.departmentRepo = &memDepartments{ids: map[string]bool{"0198a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b": true}}
	hr := servicetest.As("u-hr", user.RoleHRManager, "")

	req := validCreate()
	req.Account = &employee.AccountRequest{Password: "password123"}

	created, err := f.svc.Create(hr, req)
	require.NoError(t, err)
	assert.Equal(t, "EMP0004", created.EmployeeCode)
	assert.Equal(t, "barbara@example.com", created.Email)
	assert.Equal(t, employee.StatusActive, created.Status)
	assert.Equal(t, 1, f.tx.Calls)

	require.Len(t, f.users.created, 1)
	assert.Equal(t, user.RoleEmployee, f.users.created[0].Role)
	assert.Equal(t, created.ID, *f.users.created[0].EmployeeID)
	assert.NotEqual(t, "password123", f.users.created[0].PasswordHash)
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(servicetest.As("u-mgr", user.RoleManager, "boss"), validCreate())
	assert.ErrorIs(t, err, policy.ErrForbidden)

	hr := servicetest.As("u-hr", user.RoleHRManager, "")

	req := validCreate()
	req.Email = "alan@example.com"
	_, err = f.svc.Create(hr, req)
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	req = validCreate()
	req.ManagerID = servicetest.Ptr("0198a0f2-7b8c-7b4a-8a2b-000000000000")
	_, err = f.svc.Create(hr, req)
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	req = validCreate()
	req.Salary = nil
	req.HireDate = "01/03/2026"
	_, err = f.svc.Create(hr, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "salary")
	assert.Contains(t, verrs.ToMap(), "hireDate")
}

func TestGetByID_Scope(t *testing.T) {
	f := newFixture()
	mgr := servicetest.As("u-mgr", user.RoleManager, "boss")

	got, err := f.svc.GetByID(mgr, "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", got.ID)

	_, err = f.svc.GetByID(mgr, "ops")
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = f.svc.GetByID(mgr, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture()
	self := servicetest.As("u-dev", user.RoleEmployee, "dev")

	got, err := f.svc.Update(self, employee.UpdateEmployeeRequest{ID: "dev", Phone: servicetest.Ptr("+1 555 0100")})
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0100", *got.Phone)

	_, err = f.svc.Update(self, employee.UpdateEmployeeRequest{ID: "dev", Position: servicetest.Ptr("CTO")})
	assert.ErrorIs(t, err, employee.ErrFieldNotEditable)

	_, err = f.svc.Update(self, employee.UpdateEmployeeRequest{ID: "ops", Phone: servicetest.Ptr("1")})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	hr := servicetest.As("u-hr", user.RoleAdmin, "")
	_, err = f.svc.Update(hr, employee.UpdateEmployeeRequest{ID: "ops", Email: servicetest.Ptr("grace@example.com")})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	got, err = f.svc.Update(hr, employee.UpdateEmployeeRequest{ID: "dev", ManagerID: servicetest.Ptr("")})
	require.NoError(t, err)
	assert.Nil(t, got.ManagerID)
}

func TestUpdate_SelfManager(t *testing.T) {
	f := newFixture()
	id := "0198a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"
	f.repo.rows[id] = employee.Employee{ID: id, Email: "x@example.com", Status: employee.StatusActive}

	_, err := f.svc.Update(servicetest.As("u-hr", user.RoleAdmin, ""), employee.UpdateEmployeeRequest{ID: id, ManagerID: &id})
	assert.ErrorIs(t, err, employee.ErrSelfManager)
}

func TestUpdate_ManagerCycle(t *testing.T) {
	f := newFixture()
	top := "0198a0f2-7b8c-7b4a-8a2b-000000000001"
	mid := "0198a0f2-7b8c-7b4a-8a2b-000000000002"
	low := "0198a0f2-7b8c-7b4a-8a2b-000000000003"
	f.repo.rows[top] = employee.Employee{ID: top, Email: "top@example.com", Status: employee.StatusActive}
	f.repo.rows[mid] = employee.Employee{ID: mid, Email: "mid@example.com", Status: employee.StatusActive, ManagerID: &top}
	f.repo.rows[low] = employee.Employee{ID: low, Email: "low@example.com", Status: employee.StatusActive, ManagerID: &mid}
	hr := servicetest.As("u-hr", user.RoleAdmin, "")

	_, err := f.svc.Update(hr, employee.UpdateEmployeeRequest{ID: top, ManagerID: &low})
	assert.ErrorIs(t, err, employee.ErrManagerCycle)
	assert.Nil(t, f.repo.rows[top].ManagerID)

	_, err = f.svc.Update(hr, employee.UpdateEmployeeRequest{ID: mid, ManagerID: &low})
	assert.ErrorIs(t, err, employee.ErrManagerCycle)

	got, err := f.svc.Update(hr, employee.UpdateEmployeeRequest{ID: low, ManagerID: &top})
	require.NoError(t, err)
	assert.Equal(t, top, *got.ManagerID)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	hr := servicetest.As("u-hr", user.RoleHRManager, "ops")

	require.NoError(t, f.svc.Delete(hr, "dev"))
	assert.Equal(t, employee.StatusTerminated, f.repo.rows["dev"].Status)
	assert.Equal(t, []string{"dev"}, f.users.deactivated)

	assert.ErrorIs(t, f.svc.Delete(hr, "dev"), employee.ErrAlreadyTerminated)
	assert.ErrorIs(t, f.svc.Delete(hr, "ops"), policy.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(servicetest.As("u-mgr", user.RoleManager, "boss"), "dev"), policy.ErrForbidden)
}

func TestList_Scoped(t *testing.T) {
	f := newFixture()

	res, err := f.svc.List(servicetest.As("u-mgr", user.RoleManager, "boss"), employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, int64(2), res.Pagination.Total)
	assert.Equal(t, employee.DefaultLimit, res.Pagination.Limit)

	res, err = f.svc.List(servicetest.As("u-dev", user.RoleEmployee, "dev"), employee.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "dev", res.Records[0].ID)

	res, err = f.svc.List(servicetest.As("u-none", user.RoleEmployee, ""), employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	res, err = f.svc.List(servicetest.As("u-hr", user.RoleAdmin, ""), employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Summary.Total)
}
