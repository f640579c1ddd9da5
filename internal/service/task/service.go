package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
)

type TaskServiceImpl struct {
	taskRepo     task.TaskRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewTaskService(taskRepo task.TaskRepository, employeeRepo employee.EmployeeRepository) task.TaskService {
	return &TaskServiceImpl{
		taskRepo:     taskRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

func resourceOf(t task.Task) policy.Resource {
	res := policy.Resource{CreatorUserID: t.AssignedBy, AssigneeIDs: t.AssignedTo}
	if t.AssignerEmployeeID != nil {
		res.OwnerEmployeeID = *t.AssignerEmployeeID
	}
	return res
}

func (s *TaskServiceImpl) checkAssignees(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return task.ErrAssigneeNotFound
			}
			return err
		}
	}
	return nil
}

// Create implements task.TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, req task.CreateTaskRequest) (task.Task, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return task.Task{}, err
	}
	if err := req.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := policy.Check(actor, policy.EntityTask, policy.ActionCreate, policy.Resource{AssigneeIDs: req.AssignedTo}); err != nil {
		return task.Task{}, err
	}
	if err := s.checkAssignees(ctx, req.AssignedTo); err != nil {
		return task.Task{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to generate id: %w", err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	created, err := s.taskRepo.Create(ctx, task.Task{
		ID:             id.String(),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       task.Priority(req.Priority),
		Status:         task.StatusTodo,
		AssignedBy:     actor.UserID,
		AssignedTo:     req.AssignedTo,
		StartDate:      req.Start,
		DueDate:        req.Due,
		EstimatedHours: req.EstimatedHours,
		Tags:           tags,
	})
	if err != nil {
		return task.Task{}, err
	}

	slog.Info("Task created", "task_id", created.ID, "assignees", len(created.AssignedTo), "by", actor.UserID)
	return created, nil
}

// GetByID returns the task with its comments.
func (s *TaskServiceImpl) GetByID(ctx context.Context, id string) (task.Task, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return task.Task{}, err
	}
	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := policy.Check(actor, policy.EntityTask, policy.ActionView, resourceOf(t)); err != nil {
		return task.Task{}, err
	}

	comments, err := s.taskRepo.ListComments(ctx, t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.Comments = comments
	return t, nil
}

// Update implements task.TaskService. Assignees who did not create the task
// may only move its status and log actual hours.
func (s *TaskServiceImpl) Update(ctx context.Context, req task.UpdateTaskRequest) (task.Task, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return task.Task{}, err
	}
	if err := req.Validate(); err != nil {
		return task.Task{}, err
	}

	t, err := s.taskRepo.GetByID(ctx, req.ID)
	if err != nil {
		return task.Task{}, err
	}

	from := t.Status
	action := policy.ActionUpdate
	if req.ProgressOnly() {
		action = policy.ActionProgress
	}
	if err := policy.Check(actor, policy.EntityTask, action, resourceOf(t)); err != nil {
		return task.Task{}, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Priority != nil {
		t.Priority = task.Priority(*req.Priority)
	}
	if req.AssignedTo != nil {
		if err := policy.Check(actor, policy.EntityTask, policy.ActionCreate, policy.Resource{AssigneeIDs: *req.AssignedTo}); err != nil {
			return task.Task{}, err
		}
		if err := s.checkAssignees(ctx, *req.AssignedTo); err != nil {
			return task.Task{}, err
		}
		t.AssignedTo = *req.AssignedTo
	}
	if req.StartDate != nil {
		t.StartDate, _ = validator.IsValidDate(*req.StartDate)
	}
	if req.DueDate != nil {
		t.DueDate, _ = validator.IsValidDate(*req.DueDate)
	}
	if !t.DueDate.After(t.StartDate) {
		return task.Task{}, task.ErrDueBeforeStart
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		t.ActualHours = *req.ActualHours
	}
	if req.Tags != nil {
		t.Tags = *req.Tags
	}
	if req.Status != nil {
		if err := t.ApplyStatus(task.Status(*req.Status), s.now().UTC()); err != nil {
			return task.Task{}, err
		}
	}

	updated, err := s.taskRepo.Update(ctx, t, from)
	if err != nil {
		return task.Task{}, err
	}

	slog.Info("Task updated", "task_id", updated.ID, "status", updated.Status, "by", actor.UserID)
	return updated, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return err
	}
	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.EntityTask, policy.ActionDelete, resourceOf(t)); err != nil {
		return err
	}
	if err := s.taskRepo.SoftDelete(ctx, t.ID); err != nil {
		return err
	}
	slog.Info("Task deleted", "task_id", t.ID, "by", actor.UserID)
	return nil
}

func (s *TaskServiceImpl) AddComment(ctx context.Context, req task.CommentRequest) (task.Comment, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return task.Comment{}, err
	}
	if err := req.Validate(); err != nil {
		return task.Comment{}, err
	}

	t, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return task.Comment{}, err
	}
	if err := policy.Check(actor, policy.EntityTask, policy.ActionComment, resourceOf(t)); err != nil {
		return task.Comment{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return task.Comment{}, fmt.Errorf("failed to generate id: %w", err)
	}

	c, err := s.taskRepo.AddComment(ctx, task.Comment{
		ID:      id.String(),
		TaskID:  t.ID,
		UserID:  actor.UserID,
		Comment: req.Comment,
	})
	if err != nil {
		return task.Comment{}, err
	}
	c.AuthorEmail = &actor.Email
	return c, nil
}

func (s *TaskServiceImpl) List(ctx context.Context, filter task.TaskFilter) (pagination.Result[task.Task, task.Summary], error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return pagination.Result[task.Task, task.Summary]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Result[task.Task, task.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(task.DefaultLimit)
	filter.Scope = actor.Scope
	filter.Now = s.now().UTC()

	return query.Execute(ctx, filter.Params, query.Reader[task.Task, task.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.taskRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]task.Task, error) {
			return s.taskRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (task.Summary, error) {
			totals, err := s.taskRepo.Totals(ctx, filter)
			if err != nil {
				return task.Summary{}, err
			}
			return task.Summarize(totals), nil
		},
	})
}
