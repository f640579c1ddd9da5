package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveSelect = `
		SELECT l.id, l.employee_id, l.leave_type, l.start_date, l.end_date, l.total_days, l.reason,
			l.status, l.approved_by, l.approved_at, l.rejection_reason, l.cancelled_at,
			l.created_at, l.updated_at,
			NULLIF(TRIM(CONCAT(e.first_name, ' ', e.last_name)), '') AS employee_name
		FROM leaves l
		INNER JOIN employees e ON e.id = l.employee_id
`

func scanLeave(row pgx.Row) (leave.Leave, error) {
	var l leave.Leave
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.TotalDays, &l.Reason,
		&l.Status, &l.ApprovedBy, &l.ApprovedAt, &l.RejectionReason, &l.CancelledAt,
		&l.CreatedAt, &l.UpdatedAt,
		&l.EmployeeName,
	)
	return l, err
}

// Create implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Create(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leaves (id, employee_id, leave_type, start_date, end_date, total_days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		l.ID, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate, l.TotalDays, l.Reason, l.Status,
	).Scan(&id)
	if err != nil {
		return leave.Leave{}, fmt.Errorf("failed to create leave: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanLeave(q.QueryRow(ctx, leaveSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Leave{}, leave.ErrLeaveNotFound
		}
		return leave.Leave{}, fmt.Errorf("failed to get leave: %w", err)
	}
	return found, nil
}

// UpdateStatus implements leave.LeaveRepository. A row whose status moved
// since it was read is reported as already processed.
func (r *leaveRepositoryImpl) UpdateStatus(ctx context.Context, l leave.Leave, from leave.Status) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leaves
		SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4, cancelled_at = $5,
			updated_at = NOW()
		WHERE id = $6 AND status = $7
	`

	tag, err := q.Exec(ctx, query, l.Status, l.ApprovedBy, l.ApprovedAt, l.RejectionReason, l.CancelledAt, l.ID, from)
	if err != nil {
		return leave.Leave{}, fmt.Errorf("failed to update leave status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return leave.Leave{}, err
		}
		return leave.Leave{}, leave.ErrLeaveAlreadyProcessed
	}
	return r.GetByID(ctx, l.ID)
}

// LockEmployee implements leave.LeaveRepository with a transaction-scoped
// advisory lock keyed by the employee id.
func (r *leaveRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('leave:' || $1, 0))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock leave requests: %w", err)
	}
	return nil
}

// HasOverlap implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leaves
			WHERE employee_id = $1 AND status IN ('pending', 'approved')
				AND start_date <= $3 AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return exists, nil
}

// UsageByType implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) UsageByType(ctx context.Context, employeeID string, year int) (map[leave.Type]leave.Usage, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type,
			COALESCE(SUM(total_days) FILTER (WHERE status = 'approved'), 0),
			COALESCE(SUM(total_days) FILTER (WHERE status = 'pending'), 0)
		FROM leaves
		WHERE employee_id = $1 AND EXTRACT(YEAR FROM start_date) = $2
		GROUP BY leave_type
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[leave.Type]leave.Usage)
	for rows.Next() {
		var (
			t                 leave.Type
			approved, pending int
		)
		if err := rows.Scan(&t, &approved, &pending); err != nil {
			return nil, err
		}
		usage[t] = leave.Usage{Approved: approved, Pending: pending}
	}
	return usage, rows.Err()
}

// ApprovedDays implements leave.LeaveRepository. Requests that straddle the
// window only count the days inside it.
func (r *leaveRepositoryImpl) ApprovedDays(ctx context.Context, employeeID string, leaveType leave.Type, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(LEAST(end_date, $4::date) - GREATEST(start_date, $3::date) + 1), 0)
		FROM leaves
		WHERE employee_id = $1 AND leave_type = $2 AND status = 'approved'
			AND start_date <= $4::date AND end_date >= $3::date
	`

	var days int
	if err := q.QueryRow(ctx, query, employeeID, leaveType, from, to).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to sum approved leave days: %w", err)
	}
	return days, nil
}

func leaveWhere(filter leave.LeaveFilter) *whereBuilder {
	w := newWhere()
	if filter.EmployeeID != "" {
		w.add("l.employee_id = $%[1]d", filter.EmployeeID)
	}
	if filter.Status != "" {
		w.add("l.status = $%[1]d", filter.Status)
	}
	if filter.LeaveType != "" {
		w.add("l.leave_type = $%[1]d", filter.LeaveType)
	}
	if filter.From != nil {
		w.add("l.end_date >= $%[1]d", *filter.From)
	}
	if filter.To != nil {
		w.add("l.start_date <= $%[1]d", *filter.To)
	}
	w.scope("l.employee_id", filter.Scope)
	return w
}

// Count implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Count(ctx context.Context, filter leave.LeaveFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := leaveWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leaves l WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count leaves: %w", err)
	}
	return total, nil
}

// List implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Leave, error) {
	q := GetQuerier(ctx, r.db)
	w := leaveWhere(filter)

	query := leaveSelect + ` WHERE ` + w.String() + ` ORDER BY l.created_at DESC, l.id ` + w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var leaves []leave.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// Summarize implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Summarize(ctx context.Context, filter leave.LeaveFilter) (leave.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := leaveWhere(filter)

	rows, err := q.Query(ctx, `SELECT l.status, COUNT(*), COALESCE(SUM(l.total_days), 0) FROM leaves l WHERE `+w.String()+` GROUP BY l.status`, w.args...)
	if err != nil {
		return leave.Summary{}, fmt.Errorf("failed to summarize leaves: %w", err)
	}
	defer rows.Close()

	summary := leave.Summary{ByStatus: map[leave.Status]int64{}, DaysByStatus: map[leave.Status]int64{}}
	for rows.Next() {
		var (
			status  leave.Status
			n, days int64
		)
		if err := rows.Scan(&status, &n, &days); err != nil {
			return leave.Summary{}, err
		}
		summary.ByStatus[status] = n
		summary.DaysByStatus[status] = days
	}
	return summary, rows.Err()
}
