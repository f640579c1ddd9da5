package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceSelect = `
		SELECT a.id, a.employee_id, a.date, a.check_in_time, a.check_out_time, a.break_minutes,
			a.working_hours, a.overtime_hours, a.status, a.notes, a.location, a.created_at, a.updated_at,
			NULLIF(TRIM(CONCAT(e.first_name, ' ', e.last_name)), '') AS employee_name,
			e.employee_code
		FROM attendance a
		INNER JOIN employees e ON e.id = a.employee_id
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.CheckInTime, &a.CheckOutTime, &a.BreakMinutes,
		&a.WorkingHours, &a.OvertimeHours, &a.Status, &a.Notes, &a.Location, &a.CreatedAt, &a.UpdatedAt,
		&a.EmployeeName, &a.EmployeeCode,
	)
	return a, err
}

func collectAttendance(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.employee_id = $1 AND a.date = $2`, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance for date: %w", err)
	}
	return &found, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return found, nil
}

// Create implements attendance.AttendanceRepository. A second row for the same
// employee and day surfaces as ErrAlreadyCheckedIn.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (
			id, employee_id, date, check_in_time, check_out_time, break_minutes,
			working_hours, overtime_hours, status, notes, location
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.Date, a.CheckInTime, a.CheckOutTime, a.BreakMinutes,
		a.WorkingHours, a.OvertimeHours, a.Status, a.Notes, a.Location,
	).Scan(&id)
	if err != nil {
		if constraint, ok := database.ConstraintViolation(err, database.CodeUniqueViolation); ok && constraint == "attendance_employee_date_key" {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance
		SET check_in_time = $1, check_out_time = $2, break_minutes = $3, working_hours = $4,
			overtime_hours = $5, status = $6, notes = $7, location = $8, updated_at = NOW()
		WHERE id = $9
	`

	tag, err := q.Exec(ctx, query,
		a.CheckInTime, a.CheckOutTime, a.BreakMinutes, a.WorkingHours,
		a.OvertimeHours, a.Status, a.Notes, a.Location, a.ID,
	)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.GetByID(ctx, a.ID)
}

func attendanceWhere(filter attendance.AttendanceFilter) *whereBuilder {
	w := newWhere()
	if filter.EmployeeID != "" {
		w.add("a.employee_id = $%[1]d", filter.EmployeeID)
	}
	if filter.Status != "" {
		w.add("a.status = $%[1]d", filter.Status)
	}
	if filter.StartDate != nil {
		w.add("a.date >= $%[1]d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		w.add("a.date <= $%[1]d", *filter.EndDate)
	}
	w.scope("a.employee_id", filter.Scope)
	return w
}

// Count implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Count(ctx context.Context, filter attendance.AttendanceFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := attendanceWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance a WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return total, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	w := attendanceWhere(filter)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.date %s, e.employee_code `, attendanceSelect, w.String(), orderDirection(filter.SortOrder)) +
		w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	return collectAttendance(rows)
}

// ListAll implements attendance.AttendanceRepository. Used by the export,
// which ignores pagination.
func (r *attendanceRepositoryImpl) ListAll(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	w := attendanceWhere(filter)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.date %s, e.employee_code`, attendanceSelect, w.String(), orderDirection(filter.SortOrder))

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance export: %w", err)
	}
	return collectAttendance(rows)
}

// Summarize implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Summarize(ctx context.Context, filter attendance.AttendanceFilter) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := attendanceWhere(filter)

	query := `
		SELECT a.status, COUNT(*), COALESCE(SUM(a.working_hours), 0), COALESCE(SUM(a.overtime_hours), 0)
		FROM attendance a
		WHERE ` + w.String() + `
		GROUP BY a.status
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	defer rows.Close()

	summary := attendance.Summary{ByStatus: map[attendance.Status]int64{}}
	for rows.Next() {
		var (
			status            attendance.Status
			n                 int64
			working, overtime float64
		)
		if err := rows.Scan(&status, &n, &working, &overtime); err != nil {
			return attendance.Summary{}, err
		}
		summary.ByStatus[status] = n
		summary.TotalWorkingHours += working
		summary.TotalOvertimeHours += overtime
	}
	return summary, rows.Err()
}

// SummarizeByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SummarizeByEmployee(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)
	w := attendanceWhere(filter)

	query := `
		SELECT e.id, TRIM(CONCAT(e.first_name, ' ', e.last_name)), e.employee_code,
			COUNT(*),
			COUNT(*) FILTER (WHERE a.status = 'present'),
			COUNT(*) FILTER (WHERE a.status = 'late'),
			COUNT(*) FILTER (WHERE a.status = 'half_day'),
			COUNT(*) FILTER (WHERE a.status = 'absent'),
			COUNT(*) FILTER (WHERE a.status = 'on_leave'),
			COALESCE(SUM(a.working_hours), 0),
			COALESCE(SUM(a.overtime_hours), 0)
		FROM attendance a
		INNER JOIN employees e ON e.id = a.employee_id
		WHERE ` + w.String() + `
		GROUP BY e.id, e.first_name, e.last_name, e.employee_code
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attendance by employee: %w", err)
	}
	defer rows.Close()

	var out []attendance.EmployeeSummary
	for rows.Next() {
		var s attendance.EmployeeSummary
		if err := rows.Scan(
			&s.EmployeeID, &s.EmployeeName, &s.EmployeeCode,
			&s.TotalDays, &s.PresentDays, &s.LateDays, &s.HalfDays, &s.AbsentDays, &s.LeaveDays,
			&s.WorkingHours, &s.OvertimeHours,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FillMissing implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) FillMissing(ctx context.Context, date time.Time) (attendance.SweepResult, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH inserted AS (
			INSERT INTO attendance (employee_id, date, status)
			SELECT e.id, $1::date,
				CASE WHEN EXISTS (
					SELECT 1 FROM leaves l
					WHERE l.employee_id = e.id AND l.status = 'approved'
						AND $1::date BETWEEN l.start_date AND l.end_date
				) THEN 'on_leave' ELSE 'absent' END
			FROM employees e
			WHERE e.status = 'active' AND e.deleted_at IS NULL AND e.hire_date <= $1::date
			ON CONFLICT (employee_id, date) DO NOTHING
			RETURNING status
		)
		SELECT COUNT(*) FILTER (WHERE status = 'absent'), COUNT(*) FILTER (WHERE status = 'on_leave')
		FROM inserted
	`

	var res attendance.SweepResult
	if err := q.QueryRow(ctx, query, date).Scan(&res.Absent, &res.OnLeave); err != nil {
		return attendance.SweepResult{}, fmt.Errorf("failed to fill missing attendance: %w", err)
	}
	return res, nil
}

// SumOvertime implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SumOvertime(ctx context.Context, employeeID string, from, to time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	var total float64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(overtime_hours), 0) FROM attendance WHERE employee_id = $1 AND date BETWEEN $2 AND $3`,
		employeeID, from, to,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum overtime: %w", err)
	}
	return total, nil
}
