package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

const taskSelect = `
		SELECT t.id, t.title, t.description, t.priority, t.status, t.assigned_by, t.assigned_to::text[],
			t.start_date, t.due_date, t.completed_date, t.estimated_hours, t.actual_hours, t.tags,
			t.deleted_at, t.created_at, t.updated_at,
			u.employee_id
		FROM tasks t
		INNER JOIN users u ON u.id = t.assigned_by
`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.AssignedBy, &t.AssignedTo,
		&t.StartDate, &t.DueDate, &t.CompletedDate, &t.EstimatedHours, &t.ActualHours, &t.Tags,
		&t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
		&t.AssignerEmployeeID,
	)
	return t, err
}

// Create implements task.TaskRepository.
func (r *taskRepositoryImpl) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tasks (
			id, title, description, priority, status, assigned_by, assigned_to,
			start_date, due_date, estimated_hours, actual_hours, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7::uuid[], $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.AssignedBy, t.AssignedTo,
		t.StartDate, t.DueDate, t.EstimatedHours, t.ActualHours, nonNil(t.Tags),
	).Scan(&id)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements task.TaskRepository. Deleted tasks are not found.
func (r *taskRepositoryImpl) GetByID(ctx context.Context, id string) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanTask(q.QueryRow(ctx, taskSelect+` WHERE t.id = $1 AND t.deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return found, nil
}

// Update implements task.TaskRepository.
func (r *taskRepositoryImpl) Update(ctx context.Context, t task.Task, from task.Status) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, assigned_to = $5::uuid[],
			start_date = $6, due_date = $7, completed_date = $8, estimated_hours = $9,
			actual_hours = $10, tags = $11, updated_at = NOW()
		WHERE id = $12 AND status = $13 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		t.Title, t.Description, t.Priority, t.Status, t.AssignedTo,
		t.StartDate, t.DueDate, t.CompletedDate, t.EstimatedHours,
		t.ActualHours, nonNil(t.Tags), t.ID, from,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return task.Task{}, err
		}
		return task.Task{}, task.ErrInvalidTransition
	}
	return r.GetByID(ctx, t.ID)
}

// SoftDelete implements task.TaskRepository.
func (r *taskRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE tasks SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// AddComment implements task.TaskRepository.
func (r *taskRepositoryImpl) AddComment(ctx context.Context, c task.Comment) (task.Comment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO task_comments (id, task_id, user_id, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	created := c
	if err := q.QueryRow(ctx, query, c.ID, c.TaskID, c.UserID, c.Comment).Scan(&created.ID, &created.CreatedAt); err != nil {
		if _, ok := database.ConstraintViolation(err, database.CodeForeignKeyViolation); ok {
			return task.Comment{}, task.ErrTaskNotFound
		}
		return task.Comment{}, fmt.Errorf("failed to add task comment: %w", err)
	}
	return created, nil
}

// ListComments implements task.TaskRepository.
func (r *taskRepositoryImpl) ListComments(ctx context.Context, taskID string) ([]task.Comment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.task_id, c.user_id, c.comment, c.created_at, u.email
		FROM task_comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at
	`

	rows, err := q.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task comments: %w", err)
	}
	defer rows.Close()

	var comments []task.Comment
	for rows.Next() {
		var c task.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Comment, &c.CreatedAt, &c.AuthorEmail); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// taskWhere scopes tasks by assignee or assigner: a task is visible when any
// assignee or the assigner's employee is inside the scope.
func taskWhere(filter task.TaskFilter) *whereBuilder {
	w := newWhere("t.deleted_at IS NULL")
	if filter.AssignedTo != "" {
		w.add("$%[1]d::uuid = ANY(t.assigned_to)", filter.AssignedTo)
	}
	if filter.Status != "" {
		w.add("t.status = $%[1]d", filter.Status)
	}
	if filter.Priority != "" {
		w.add("t.priority = $%[1]d", filter.Priority)
	}
	if filter.Search != "" {
		w.add("(t.title ILIKE $%[1]d OR t.description ILIKE $%[1]d)", likePattern(filter.Search))
	}
	switch {
	case filter.Scope.Unrestricted():
	case filter.Scope.Empty():
		w.clauses = append(w.clauses, "FALSE")
	default:
		w.add("(t.assigned_to && $%[1]d::uuid[] OR u.employee_id = ANY($%[1]d::uuid[]))", filter.Scope.EmployeeIDs())
	}
	return w
}

// Count implements task.TaskRepository.
func (r *taskRepositoryImpl) Count(ctx context.Context, filter task.TaskFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := taskWhere(filter)

	query := `SELECT COUNT(*) FROM tasks t INNER JOIN users u ON u.id = t.assigned_by WHERE ` + w.String()

	var total int64
	if err := q.QueryRow(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// List implements task.TaskRepository.
func (r *taskRepositoryImpl) List(ctx context.Context, filter task.TaskFilter) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)
	w := taskWhere(filter)

	query := taskSelect + ` WHERE ` + w.String() + ` ORDER BY t.due_date, t.created_at DESC ` + w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Totals implements task.TaskRepository.
func (r *taskRepositoryImpl) Totals(ctx context.Context, filter task.TaskFilter) (task.Totals, error) {
	q := GetQuerier(ctx, r.db)
	w := taskWhere(filter)

	w.args = append(w.args, filter.Now)
	nowIdx := len(w.args)

	query := fmt.Sprintf(`
		SELECT t.status, COUNT(*),
			COUNT(*) FILTER (
				WHERE t.status NOT IN ('completed', 'cancelled')
					AND ((t.due_date + 1)::timestamp AT TIME ZONE 'UTC') < $%d::timestamptz
			),
			COALESCE(SUM(t.estimated_hours), 0),
			COALESCE(SUM(t.actual_hours), 0)
		FROM tasks t
		INNER JOIN users u ON u.id = t.assigned_by
		WHERE %s
		GROUP BY t.status
	`, nowIdx, w.String())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return task.Totals{}, fmt.Errorf("failed to summarize tasks: %w", err)
	}
	defer rows.Close()

	totals := task.Totals{ByStatus: map[task.Status]int64{}}
	for rows.Next() {
		var (
			status            task.Status
			n, overdue        int64
			estimated, actual float64
		)
		if err := rows.Scan(&status, &n, &overdue, &estimated, &actual); err != nil {
			return task.Totals{}, err
		}
		totals.ByStatus[status] = n
		totals.Overdue += overdue
		totals.EstimatedHours += estimated
		totals.ActualHours += actual
	}
	return totals, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
