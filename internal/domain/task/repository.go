package task

import "context"

type TaskRepository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByID(ctx context.Context, id string) (Task, error)
	// Update writes t only while the stored status is still from.
	Update(ctx context.Context, t Task, from Status) (Task, error)
	SoftDelete(ctx context.Context, id string) error
	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, taskID string) ([]Comment, error)

	Count(ctx context.Context, filter TaskFilter) (int64, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Totals(ctx context.Context, filter TaskFilter) (Totals, error)
}
