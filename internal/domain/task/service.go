package task

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest) (Task, error)
	GetByID(ctx context.Context, id string) (Task, error)
	Update(ctx context.Context, req UpdateTaskRequest) (Task, error)
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, req CommentRequest) (Comment, error)
	List(ctx context.Context, filter TaskFilter) (pagination.Result[Task, Summary], error)
}
