package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/department"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

const departmentSelect = `
		SELECT d.id, d.name, d.code, d.description, d.head_id, d.budget, d.is_active, d.created_at, d.updated_at,
			NULLIF(TRIM(CONCAT(h.first_name, ' ', h.last_name)), '') AS head_name,
			(SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id AND e.deleted_at IS NULL) AS employee_count
		FROM departments d
		LEFT JOIN employees h ON h.id = d.head_id
`

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(
		&d.ID, &d.Name, &d.Code, &d.Description, &d.HeadID, &d.Budget, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
		&d.HeadName, &d.EmployeeCount,
	)
	return d, err
}

func departmentWriteError(err error, action string) error {
	if _, ok := database.ConstraintViolation(err, database.CodeUniqueViolation); ok {
		return department.ErrDepartmentNameExists
	}
	if _, ok := database.ConstraintViolation(err, database.CodeForeignKeyViolation); ok {
		return department.ErrHeadNotFound
	}
	return fmt.Errorf("failed to %s department: %w", action, err)
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (id, name, code, description, head_id, budget, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id string
	if err := q.QueryRow(ctx, query, d.ID, d.Name, d.Code, d.Description, d.HeadID, d.Budget, d.IsActive).Scan(&id); err != nil {
		return department.Department{}, departmentWriteError(err, "create")
	}
	return r.GetByID(ctx, id)
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanDepartment(q.QueryRow(ctx, departmentSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	return found, nil
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments
		SET name = $1, code = $2, description = $3, head_id = $4, budget = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query, d.Name, d.Code, d.Description, d.HeadID, d.Budget, d.IsActive, d.ID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, departmentWriteError(err, "update")
	}
	return r.GetByID(ctx, id)
}

// Delete implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if _, ok := database.ConstraintViolation(err, database.CodeForeignKeyViolation); ok {
			return department.ErrDepartmentHasMembers
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// CountMembers implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) CountMembers(ctx context.Context, id string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE department_id = $1 AND deleted_at IS NULL`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count department members: %w", err)
	}
	return n, nil
}

func departmentWhere(filter department.DepartmentFilter) *whereBuilder {
	w := newWhere()
	if filter.Search != "" {
		w.add("(d.name ILIKE $%[1]d OR d.code ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.IsActive != nil {
		w.add("d.is_active = $%[1]d", *filter.IsActive)
	}
	return w
}

// Count implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Count(ctx context.Context, filter department.DepartmentFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := departmentWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM departments d WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count departments: %w", err)
	}
	return total, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) List(ctx context.Context, filter department.DepartmentFilter) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)
	w := departmentWhere(filter)

	query := departmentSelect + ` WHERE ` + w.String() + ` ORDER BY d.name ` + w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// Summarize implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Summarize(ctx context.Context, filter department.DepartmentFilter) (department.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := departmentWhere(filter)

	query := `
		SELECT COUNT(*) FILTER (WHERE d.is_active),
			COUNT(*) FILTER (WHERE NOT d.is_active),
			COALESCE(SUM(d.budget), 0)
		FROM departments d
		WHERE ` + w.String()

	var s department.Summary
	var budget decimal.Decimal
	if err := q.QueryRow(ctx, query, w.args...).Scan(&s.Active, &s.Inactive, &budget); err != nil {
		return department.Summary{}, fmt.Errorf("failed to summarize departments: %w", err)
	}
	s.TotalBudget = budget
	return s, nil
}
