package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
		SELECT e.id, e.employee_code, e.first_name, e.last_name, e.email, e.phone, e.address,
			e.department_id, e.position, e.manager_id, e.salary, e.hire_date, e.status,
			e.deleted_at, e.created_at, e.updated_at,
			d.name AS department_name,
			NULLIF(TRIM(CONCAT(m.first_name, ' ', m.last_name)), '') AS manager_name
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN employees m ON m.id = e.manager_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.Address,
		&emp.DepartmentID, &emp.Position, &emp.ManagerID, &emp.Salary, &emp.HireDate, &emp.Status,
		&emp.DeletedAt, &emp.CreatedAt, &emp.UpdatedAt,
		&emp.DepartmentName, &emp.ManagerName,
	)
	return emp, err
}

func employeeWriteError(err error, action string) error {
	if constraint, ok := database.ConstraintViolation(err, database.CodeUniqueViolation); ok {
		if constraint == "employees_employee_code_key" {
			return employee.ErrEmployeeCodeExists
		}
		return employee.ErrEmailExists
	}
	if constraint, ok := database.ConstraintViolation(err, database.CodeForeignKeyViolation); ok {
		if constraint == "employees_manager_id_fkey" {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to %s employee: department does not exist: %w", action, err)
	}
	return fmt.Errorf("failed to %s employee: %w", action, err)
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			id, employee_code, first_name, last_name, email, phone, address,
			department_id, position, manager_id, salary, hire_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		e.ID, e.EmployeeCode, e.FirstName, e.LastName, e.Email, e.Phone, e.Address,
		e.DepartmentID, e.Position, e.ManagerID, e.Salary, e.HireDate, e.Status,
	).Scan(&id)
	if err != nil {
		return employee.Employee{}, employeeWriteError(err, "create")
	}
	return r.GetByID(ctx, id)
}

// GetByID implements employee.EmployeeRepository. Terminated employees are
// still returned.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanEmployee(q.QueryRow(ctx, employeeSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return found, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5,
			department_id = $6, position = $7, manager_id = $8, salary = $9, status = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		e.FirstName, e.LastName, e.Email, e.Phone, e.Address,
		e.DepartmentID, e.Position, e.ManagerID, e.Salary, e.Status,
		e.ID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, employeeWriteError(err, "update")
	}
	return r.GetByID(ctx, id)
}

// SoftDelete implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET status = $1, deleted_at = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query, employee.StatusTerminated, at, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ExistsByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE lower(email) = lower($1) AND ($2 = '' OR id::text <> $2))`

	var exists bool
	if err := q.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

// LastEmployeeCode implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) LastEmployeeCode(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_code FROM employees
		WHERE employee_code ~ '^EMP[0-9]+$'
		ORDER BY length(employee_code) DESC, employee_code DESC
		LIMIT 1
	`

	var code string
	err := q.QueryRow(ctx, query).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get last employee code: %w", err)
	}
	return code, nil
}

// ListDirectReportIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM employees WHERE manager_id = $1 AND deleted_at IS NULL`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct reports: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan direct reports: %w", err)
	}
	return ids, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, employeeSelect+` WHERE e.status = $1 AND e.deleted_at IS NULL ORDER BY e.employee_code`, employee.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func employeeWhere(filter employee.EmployeeFilter) *whereBuilder {
	w := newWhere()
	if filter.Status != "" {
		w.add("e.status = $%[1]d", filter.Status)
	} else {
		w.clauses = append(w.clauses, "e.deleted_at IS NULL")
	}
	if filter.DepartmentID != "" {
		w.add("e.department_id = $%[1]d", filter.DepartmentID)
	}
	if filter.ManagerID != "" {
		w.add("e.manager_id = $%[1]d", filter.ManagerID)
	}
	if filter.Search != "" {
		w.add(`(e.first_name ILIKE $%[1]d OR e.last_name ILIKE $%[1]d OR e.email ILIKE $%[1]d
			OR e.employee_code ILIKE $%[1]d OR e.position ILIKE $%[1]d)`, likePattern(filter.Search))
	}
	w.scope("e.id", filter.Scope)
	return w
}

// Count implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Count(ctx context.Context, filter employee.EmployeeFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := employeeWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees e WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return total, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	w := employeeWhere(filter)

	var orderBy string
	switch filter.SortBy {
	case "employee_code", "first_name", "last_name", "hire_date":
		orderBy = "e." + filter.SortBy
	default:
		orderBy = "e.created_at"
	}
	orderBy += " " + orderDirection(filter.SortOrder) + ", e.id"

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s `, employeeSelect, w.String(), orderBy) +
		w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Summarize implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Summarize(ctx context.Context, filter employee.EmployeeFilter) (employee.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := employeeWhere(filter)

	rows, err := q.Query(ctx, `SELECT e.status, COUNT(*) FROM employees e WHERE `+w.String()+` GROUP BY e.status`, w.args...)
	if err != nil {
		return employee.Summary{}, fmt.Errorf("failed to summarize employees: %w", err)
	}
	defer rows.Close()

	summary := employee.Summary{ByStatus: map[employee.Status]int64{}}
	for rows.Next() {
		var status employee.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return employee.Summary{}, err
		}
		summary.ByStatus[status] = n
		summary.Total += n
	}
	return summary, rows.Err()
}
