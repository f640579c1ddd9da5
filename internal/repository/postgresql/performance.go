package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/etms-hr/etms-backend-go/internal/pkg/stats"
	"github.com/jackc/pgx/v5"
)

type reviewRepositoryImpl struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) performance.ReviewRepository {
	return &reviewRepositoryImpl{db: db}
}

const reviewSelect = `
		SELECT pr.id, pr.employee_id, pr.reviewer_id, pr.review_type, pr.period_start, pr.period_end,
			pr.quality_of_work, pr.productivity, pr.communication, pr.teamwork, pr.initiative, pr.punctuality,
			pr.overall_rating, pr.goals, pr.strengths, pr.improvements, pr.reviewer_comments,
			pr.employee_comments, pr.status, pr.submitted_at, pr.approved_by, pr.approved_at,
			pr.acknowledged_at, pr.created_at, pr.updated_at,
			NULLIF(TRIM(CONCAT(e.first_name, ' ', e.last_name)), '') AS employee_name,
			ru.email AS reviewer_email
		FROM performance_reviews pr
		INNER JOIN employees e ON e.id = pr.employee_id
		LEFT JOIN users ru ON ru.id = pr.reviewer_id
`

func scanReview(row pgx.Row) (performance.Review, error) {
	var r performance.Review
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.ReviewerID, &r.ReviewType, &r.PeriodStart, &r.PeriodEnd,
		&r.Ratings.QualityOfWork, &r.Ratings.Productivity, &r.Ratings.Communication,
		&r.Ratings.Teamwork, &r.Ratings.Initiative, &r.Ratings.Punctuality,
		&r.OverallRating, &r.Goals, &r.Strengths, &r.Improvements, &r.ReviewerComments,
		&r.EmployeeComments, &r.Status, &r.SubmittedAt, &r.ApprovedBy, &r.ApprovedAt,
		&r.AcknowledgedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName, &r.ReviewerEmail,
	)
	return r, err
}

// Create implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) Create(ctx context.Context, rv performance.Review) (performance.Review, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO performance_reviews (
			id, employee_id, reviewer_id, review_type, period_start, period_end,
			quality_of_work, productivity, communication, teamwork, initiative, punctuality,
			overall_rating, goals, strengths, improvements, reviewer_comments, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		rv.ID, rv.EmployeeID, rv.ReviewerID, rv.ReviewType, rv.PeriodStart, rv.PeriodEnd,
		rv.Ratings.QualityOfWork, rv.Ratings.Productivity, rv.Ratings.Communication,
		rv.Ratings.Teamwork, rv.Ratings.Initiative, rv.Ratings.Punctuality,
		rv.OverallRating, nonNil(rv.Goals), rv.Strengths, rv.Improvements, rv.ReviewerComments, rv.Status,
	).Scan(&id)
	if err != nil {
		return performance.Review{}, fmt.Errorf("failed to create performance review: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) GetByID(ctx context.Context, id string) (performance.Review, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanReview(q.QueryRow(ctx, reviewSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return performance.Review{}, performance.ErrReviewNotFound
		}
		return performance.Review{}, fmt.Errorf("failed to get performance review: %w", err)
	}
	return found, nil
}

// Update implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) Update(ctx context.Context, rv performance.Review, from performance.Status) (performance.Review, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE performance_reviews
		SET quality_of_work = $1, productivity = $2, communication = $3, teamwork = $4,
			initiative = $5, punctuality = $6, overall_rating = $7, goals = $8, strengths = $9,
			improvements = $10, reviewer_comments = $11, employee_comments = $12, status = $13,
			submitted_at = $14, approved_by = $15, approved_at = $16, acknowledged_at = $17,
			updated_at = NOW()
		WHERE id = $18 AND status = $19
	`

	tag, err := q.Exec(ctx, query,
		rv.Ratings.QualityOfWork, rv.Ratings.Productivity, rv.Ratings.Communication, rv.Ratings.Teamwork,
		rv.Ratings.Initiative, rv.Ratings.Punctuality, rv.OverallRating, nonNil(rv.Goals), rv.Strengths,
		rv.Improvements, rv.ReviewerComments, rv.EmployeeComments, rv.Status,
		rv.SubmittedAt, rv.ApprovedBy, rv.ApprovedAt, rv.AcknowledgedAt,
		rv.ID, from,
	)
	if err != nil {
		return performance.Review{}, fmt.Errorf("failed to update performance review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, rv.ID); err != nil {
			return performance.Review{}, err
		}
		return performance.Review{}, performance.ErrInvalidTransition
	}
	return r.GetByID(ctx, rv.ID)
}

// reviewWhere scopes by the reviewed employee; a ReviewerID additionally
// admits reviews written by that user.
func reviewWhere(filter performance.ReviewFilter) *whereBuilder {
	w := newWhere()
	if filter.EmployeeID != "" {
		w.add("pr.employee_id = $%[1]d", filter.EmployeeID)
	}
	if filter.Status != "" {
		w.add("pr.status = $%[1]d", filter.Status)
	}
	if filter.ReviewType != "" {
		w.add("pr.review_type = $%[1]d", filter.ReviewType)
	}
	switch {
	case filter.Scope.Unrestricted():
	case filter.ReviewerID != "":
		w.args = append(w.args, filter.Scope.EmployeeIDs(), filter.ReviewerID)
		w.clauses = append(w.clauses, fmt.Sprintf("(pr.employee_id = ANY($%d::uuid[]) OR pr.reviewer_id = $%d)", len(w.args)-1, len(w.args)))
	default:
		w.scope("pr.employee_id", filter.Scope)
	}
	return w
}

// Count implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) Count(ctx context.Context, filter performance.ReviewFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM performance_reviews pr WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count performance reviews: %w", err)
	}
	return total, nil
}

// List implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) List(ctx context.Context, filter performance.ReviewFilter) ([]performance.Review, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	query := reviewSelect + ` WHERE ` + w.String() + ` ORDER BY pr.period_end DESC, pr.created_at DESC ` + w.page(filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance reviews: %w", err)
	}
	defer rows.Close()

	var reviews []performance.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// Summarize implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) Summarize(ctx context.Context, filter performance.ReviewFilter) (performance.Summary, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	query := `
		SELECT pr.status, COUNT(*), COALESCE(SUM(pr.overall_rating), 0)
		FROM performance_reviews pr
		WHERE ` + w.String() + `
		GROUP BY pr.status
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return performance.Summary{}, fmt.Errorf("failed to summarize performance reviews: %w", err)
	}
	defer rows.Close()

	summary := performance.Summary{ByStatus: map[performance.Status]int64{}}
	var ratingSum float64
	for rows.Next() {
		var (
			status performance.Status
			n      int64
			sum    float64
		)
		if err := rows.Scan(&status, &n, &sum); err != nil {
			return performance.Summary{}, err
		}
		summary.ByStatus[status] = n
		summary.Total += n
		ratingSum += sum
	}
	if err := rows.Err(); err != nil {
		return performance.Summary{}, err
	}
	if summary.Total > 0 {
		summary.AverageRating = stats.Round2(ratingSum / float64(summary.Total))
	}
	return summary, nil
}

// CategoryAverages implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) CategoryAverages(ctx context.Context, filter performance.ReviewFilter) (map[string]float64, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	query := `
		SELECT COALESCE(AVG(pr.quality_of_work), 0)::float8, COALESCE(AVG(pr.productivity), 0)::float8,
			COALESCE(AVG(pr.communication), 0)::float8, COALESCE(AVG(pr.teamwork), 0)::float8,
			COALESCE(AVG(pr.initiative), 0)::float8, COALESCE(AVG(pr.punctuality), 0)::float8
		FROM performance_reviews pr
		WHERE ` + w.String()

	var quality, productivity, communication, teamwork, initiative, punctuality float64
	err := q.QueryRow(ctx, query, w.args...).Scan(&quality, &productivity, &communication, &teamwork, &initiative, &punctuality)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category averages: %w", err)
	}

	return map[string]float64{
		"qualityOfWork": stats.Round2(quality),
		"productivity":  stats.Round2(productivity),
		"communication": stats.Round2(communication),
		"teamwork":      stats.Round2(teamwork),
		"initiative":    stats.Round2(initiative),
		"punctuality":   stats.Round2(punctuality),
	}, nil
}

// RatingDistribution implements performance.ReviewRepository. Overall
// ratings are bucketed to the nearest whole star.
func (r *reviewRepositoryImpl) RatingDistribution(ctx context.Context, filter performance.ReviewFilter) (map[int]int64, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	query := `
		SELECT ROUND(pr.overall_rating)::int AS bucket, COUNT(*)
		FROM performance_reviews pr
		WHERE ` + w.String() + `
		GROUP BY bucket
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating distribution: %w", err)
	}
	defer rows.Close()

	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var bucket int
		var n int64
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		dist[bucket] = n
	}
	return dist, rows.Err()
}

// CountByType implements performance.ReviewRepository.
func (r *reviewRepositoryImpl) CountByType(ctx context.Context, filter performance.ReviewFilter) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)

	rows, err := q.Query(ctx, `SELECT pr.review_type, COUNT(*) FROM performance_reviews pr WHERE `+w.String()+` GROUP BY pr.review_type`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by type: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}

// TopPerformers implements performance.ReviewRepository. Only approved and
// acknowledged reviews count.
func (r *reviewRepositoryImpl) TopPerformers(ctx context.Context, filter performance.ReviewFilter, limit int) ([]performance.Performer, error) {
	q := GetQuerier(ctx, r.db)
	w := reviewWhere(filter)
	w.clauses = append(w.clauses, "pr.status IN ('approved', 'acknowledged')")
	w.args = append(w.args, limit)

	query := fmt.Sprintf(`
		SELECT e.id, TRIM(CONCAT(e.first_name, ' ', e.last_name)), AVG(pr.overall_rating)::float8, COUNT(*)
		FROM performance_reviews pr
		INNER JOIN employees e ON e.id = pr.employee_id
		WHERE %s
		GROUP BY e.id, e.first_name, e.last_name
		ORDER BY AVG(pr.overall_rating) DESC, COUNT(*) DESC
		LIMIT $%d
	`, w.String(), len(w.args))

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top performers: %w", err)
	}
	defer rows.Close()

	performers := []performance.Performer{}
	for rows.Next() {
		var p performance.Performer
		if err := rows.Scan(&p.EmployeeID, &p.EmployeeName, &p.AverageRating, &p.Reviews); err != nil {
			return nil, err
		}
		p.AverageRating = stats.Round2(p.AverageRating)
		performers = append(performers, p)
	}
	return performers, rows.Err()
}
