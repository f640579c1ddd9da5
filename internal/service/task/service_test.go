package task

import (
	"context"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bossID = "0198a0f2-7b8c-7b4a-8a2b-000000000001"
	devID  = "0198a0f2-7b8c-7b4a-8a2b-000000000002"
	opsID  = "0198a0f2-7b8c-7b4a-8a2b-000000000003"
	ghost  = "0198a0f2-7b8c-7b4a-8a2b-00000000dead"
)

type memTasks struct {
	rows     map[string]task.Task
	comments []task.Comment
	racing   func()
}

func (m *memTasks) Create(_ context.Context, t task.Task) (task.Task, error) {
	m.rows[t.ID] = t
	return t, nil
}

func (m *memTasks) GetByID(_ context.Context, id string) (task.Task, error) {
	t, ok := m.rows[id]
	if !ok || t.DeletedAt != nil {
		return task.Task{}, task.ErrTaskNotFound
	}
	return t, nil
}

func (m *memTasks) Update(_ context.Context, t task.Task, from task.Status) (task.Task, error) {
	if m.racing != nil {
		m.racing()
		m.racing = nil
	}
	if m.rows[t.ID].Status != from {
		return task.Task{}, task.ErrInvalidTransition
	}
	m.rows[t.ID] = t
	return t, nil
}

func (m *memTasks) SoftDelete(_ context.Context, id string) error {
	t := m.rows[id]
	now := time.Now()
	t.DeletedAt = &now
	m.rows[id] = t
	return nil
}

func (m *memTasks) AddComment(_ context.Context, c task.Comment) (task.Comment, error) {
	m.comments = append(m.comments, c)
	return c, nil
}

func (m *memTasks) ListComments(_ context.Context, taskID string) ([]task.Comment, error) {
	var out []task.Comment
	for _, c := range m.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memTasks) visible(filter task.TaskFilter) []task.Task {
	var out []task.Task
	for _, t := range m.rows {
		if t.DeletedAt == nil && filter.Scope.AllowsAny(t.AssignedTo) {
			out = append(out, t)
		}
	}
	return out
}

func (m *memTasks) Count(_ context.Context, filter task.TaskFilter) (int64, error) {
	return int64(len(m.visible(filter))), nil
}

func (m *memTasks) List(_ context.Context, filter task.TaskFilter) ([]task.Task, error) {
	return m.visible(filter), nil
}

func (m *memTasks) Totals(_ context.Context, filter task.TaskFilter) (task.Totals, error) {
	totals := task.Totals{ByStatus: map[task.Status]int64{}}
	for _, t := range m.visible(filter) {
		totals.ByStatus[t.Status]++
		totals.EstimatedHours += t.EstimatedHours
		totals.ActualHours += t.ActualHours
		if t.Overdue(filter.Now) {
			totals.Overdue++
		}
	}
	return totals, nil
}

type memEmployees struct {
	employee.EmployeeRepository
	reports servicetest.Reports
}

func (m memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	switch id {
	case bossID, devID, opsID:
		return employee.Employee{ID: id}, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m memEmployees) ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error) {
	return m.reports.ListDirectReportIDs(ctx, managerID)
}

var (
	boss = servicetest.As("u-boss", user.RoleManager, bossID)
	dev  = servicetest.As("u-dev", user.RoleEmployee, devID)
	ops  = servicetest.As("u-ops", user.RoleEmployee, opsID)
	hr   = servicetest.As("u-hr", user.RoleAdmin, "")
)

func newTestService() (*TaskServiceImpl, *memTasks) {
	repo := &memTasks{rows: map[string]task.Task{}}
	svc := NewTaskService(repo, memEmployees{reports: servicetest.Reports{bossID: {devID}}}).(*TaskServiceImpl)
	svc.now = servicetest.Clock(time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC))
	return svc, repo
}

func createReq(assignees ...string) task.CreateTaskRequest {
	return task.CreateTaskRequest{
		Title:          "Ship payroll export",
		AssignedTo:     assignees,
		StartDate:      "2026-03-02",
		DueDate:        "2026-03-13",
		EstimatedHours: 10,
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Create(boss, createReq(devID, devID))
	require.NoError(t, err)
	assert.Equal(t, []string{devID}, got.AssignedTo)
	assert.Equal(t, task.StatusTodo, got.Status)
	assert.Equal(t, task.PriorityMedium, got.Priority)
	assert.Equal(t, "u-boss", got.AssignedBy)
	assert.NotNil(t, got.Tags)

	_, err = svc.Create(boss, createReq(opsID))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Create(dev, createReq(devID))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Create(hr, createReq(ghost))
	assert.ErrorIs(t, err, task.ErrAssigneeNotFound)
}

func TestUpdate_AssigneeProgressOnly(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)
	repo.rows[created.ID] = withAssigner(created, bossID)

	_, err = svc.Update(dev, task.UpdateTaskRequest{ID: created.ID, Title: servicetest.Ptr("Rename")})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	got, err := svc.Update(dev, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr("in_progress"), ActualHours: servicetest.Ptr(3.0)})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, 3.0, got.ActualHours)

	_, err = svc.Update(dev, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr("completed")})
	assert.ErrorIs(t, err, task.ErrInvalidTransition)

	_, err = svc.Update(ops, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr("review")})
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestUpdate_Completion(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	for _, st := range []string{"in_progress", "review", "completed"} {
		_, err = svc.Update(boss, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr(st)})
		require.NoError(t, err, st)
	}
	got, err := svc.GetByID(boss, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedDate)
	assert.Equal(t, time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC), *got.CompletedDate)

	_, err = svc.Update(boss, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr("todo")})
	assert.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestUpdate_StaleStatusIsRejected(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	repo.racing = func() {
		tk := repo.rows[created.ID]
		tk.Status = task.StatusCancelled
		repo.rows[created.ID] = tk
	}
	_, err = svc.Update(boss, task.UpdateTaskRequest{ID: created.ID, Status: servicetest.Ptr("in_progress")})
	assert.ErrorIs(t, err, task.ErrInvalidTransition)
	assert.Equal(t, task.StatusCancelled, repo.rows[created.ID].Status)
}

func TestUpdate_Dates(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	_, err = svc.Update(boss, task.UpdateTaskRequest{ID: created.ID, DueDate: servicetest.Ptr("2026-03-01")})
	assert.ErrorIs(t, err, task.ErrDueBeforeStart)

	_, err = svc.Update(boss, task.UpdateTaskRequest{ID: created.ID, AssignedTo: &[]string{opsID}})
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestDeleteAndComments(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	c, err := svc.AddComment(dev, task.CommentRequest{TaskID: created.ID, Comment: "  on it  "})
	require.NoError(t, err)
	assert.Equal(t, "on it", c.Comment)
	assert.Equal(t, "u-dev@example.com", *c.AuthorEmail)

	_, err = svc.AddComment(ops, task.CommentRequest{TaskID: created.ID, Comment: "hi"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	got, err := svc.GetByID(dev, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)

	assert.ErrorIs(t, svc.Delete(dev, created.ID), policy.ErrForbidden)
	require.NoError(t, svc.Delete(boss, created.ID))
	_, err = svc.GetByID(boss, created.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestList_Summary(t *testing.T) {
	svc, repo := newTestService()
	repo.rows["t1"] = task.Task{ID: "t1", AssignedTo: []string{devID}, Status: task.StatusCompleted, EstimatedHours: 10, ActualHours: 12, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	repo.rows["t2"] = task.Task{ID: "t2", AssignedTo: []string{devID}, Status: task.StatusInProgress, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	repo.rows["t3"] = task.Task{ID: "t3", AssignedTo: []string{opsID}, Status: task.StatusTodo, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}

	res, err := svc.List(boss, task.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, int64(2), res.Summary.Total)
	assert.Equal(t, int64(1), res.Summary.Overdue)
	assert.Equal(t, 50.0, res.Summary.CompletionRate)
	assert.Equal(t, 83.33, res.Summary.Efficiency)

	res, err = svc.List(hr, task.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Pagination.Total)
}

func withAssigner(t task.Task, employeeID string) task.Task {
	t.AssignerEmployeeID = &employeeID
	return t
}
