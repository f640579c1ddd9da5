package performance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/service/query"
	"github.com/google/uuid"
)

type ReviewServiceImpl struct {
	reviewRepo   performance.ReviewRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewReviewService(reviewRepo performance.ReviewRepository, employeeRepo employee.EmployeeRepository) performance.ReviewService {
	return &ReviewServiceImpl{
		reviewRepo:   reviewRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

func resourceOf(r performance.Review) policy.Resource {
	return policy.Resource{OwnerEmployeeID: r.EmployeeID, CreatorUserID: r.ReviewerID}
}

// Create implements performance.ReviewService. The caller becomes the
// reviewer and the review starts as a draft.
func (s *ReviewServiceImpl) Create(ctx context.Context, req performance.CreateReviewRequest) (performance.Review, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return performance.Review{}, err
	}
	if err := req.Validate(); err != nil {
		return performance.Review{}, err
	}
	if err := policy.Check(actor, policy.EntityReview, policy.ActionCreate, policy.Resource{OwnerEmployeeID: req.EmployeeID}); err != nil {
		return performance.Review{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return performance.Review{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return performance.Review{}, fmt.Errorf("failed to generate id: %w", err)
	}

	goals := req.Goals
	if goals == nil {
		goals = []string{}
	}

	created, err := s.reviewRepo.Create(ctx, performance.Review{
		ID:               id.String(),
		EmployeeID:       req.EmployeeID,
		ReviewerID:       actor.UserID,
		ReviewType:       performance.ReviewType(req.ReviewType),
		PeriodStart:      req.Start,
		PeriodEnd:        req.End,
		Ratings:          req.Ratings,
		OverallRating:    req.Ratings.Overall(),
		Goals:            goals,
		Strengths:        req.Strengths,
		Improvements:     req.Improvements,
		ReviewerComments: req.ReviewerComments,
		Status:           performance.StatusDraft,
	})
	if err != nil {
		return performance.Review{}, err
	}

	slog.Info("Performance review created", "review_id", created.ID, "employee_id", created.EmployeeID, "by", actor.UserID)
	return created, nil
}

func (s *ReviewServiceImpl) GetByID(ctx context.Context, id string) (performance.Review, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return performance.Review{}, err
	}
	r, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return performance.Review{}, err
	}
	if err := policy.Check(actor, policy.EntityReview, policy.ActionView, resourceOf(r)); err != nil {
		return performance.Review{}, err
	}
	return r, nil
}

// Update either edits a draft or moves the review along
// draft, submitted, approved, acknowledged.
func (s *ReviewServiceImpl) Update(ctx context.Context, req performance.UpdateReviewRequest) (performance.Review, error) {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return performance.Review{}, err
	}
	if err := req.Validate(); err != nil {
		return performance.Review{}, err
	}

	r, err := s.reviewRepo.GetByID(ctx, req.ID)
	if err != nil {
		return performance.Review{}, err
	}

	from := r.Status
	now := s.now().UTC()
	switch req.Action {
	case "":
		if err := policy.Check(actor, policy.EntityReview, policy.ActionUpdate, resourceOf(r)); err != nil {
			return performance.Review{}, err
		}
		if r.Status != performance.StatusDraft {
			return performance.Review{}, performance.ErrNotEditable
		}
		applyContent(&r, req)
	case performance.ActionSubmit:
		if err := policy.Check(actor, policy.EntityReview, policy.ActionSubmit, resourceOf(r)); err != nil {
			return performance.Review{}, err
		}
		err = r.Submit(now)
	case performance.ActionApprove:
		if err := policy.Check(actor, policy.EntityReview, policy.ActionApprove, resourceOf(r)); err != nil {
			return performance.Review{}, err
		}
		err = r.Approve(actor.UserID, now)
	case performance.ActionAcknowledge:
		if err := policy.Check(actor, policy.EntityReview, policy.ActionAcknowledge, resourceOf(r)); err != nil {
			return performance.Review{}, err
		}
		err = r.Acknowledge(req.EmployeeComments, now)
	default:
		return performance.Review{}, performance.ErrInvalidAction
	}
	if err != nil {
		return performance.Review{}, err
	}

	updated, err := s.reviewRepo.Update(ctx, r, from)
	if err != nil {
		return performance.Review{}, err
	}

	slog.Info("Performance review updated", "review_id", updated.ID, "status", updated.Status, "by", actor.UserID)
	return updated, nil
}

func applyContent(r *performance.Review, req performance.UpdateReviewRequest) {
	if req.Ratings != nil {
		r.Ratings = *req.Ratings
		r.OverallRating = req.Ratings.Overall()
	}
	if req.Goals != nil {
		r.Goals = *req.Goals
	}
	if req.Strengths != nil {
		r.Strengths = req.Strengths
	}
	if req.Improvements != nil {
		r.Improvements = req.Improvements
	}
	if req.ReviewerComments != nil {
		r.ReviewerComments = req.ReviewerComments
	}
}

// scoped restricts filter to the caller. Non-privileged callers also see the
// reviews they wrote.
func (s *ReviewServiceImpl) scoped(ctx context.Context, filter *performance.ReviewFilter) error {
	actor, err := policy.ResolveActor(ctx, s.employeeRepo)
	if err != nil {
		return err
	}
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Scope = actor.Scope
	filter.ReviewerID = ""
	if !actor.Scope.Unrestricted() {
		filter.ReviewerID = actor.UserID
	}
	return nil
}

func (s *ReviewServiceImpl) List(ctx context.Context, filter performance.ReviewFilter) (pagination.Result[performance.Review, performance.Summary], error) {
	if err := s.scoped(ctx, &filter); err != nil {
		return pagination.Result[performance.Review, performance.Summary]{}, err
	}
	filter.Params = filter.Params.Normalize(performance.DefaultLimit)

	return query.Execute(ctx, filter.Params, query.Reader[performance.Review, performance.Summary]{
		Count: func(ctx context.Context) (int64, error) {
			return s.reviewRepo.Count(ctx, filter)
		},
		Find: func(ctx context.Context) ([]performance.Review, error) {
			return s.reviewRepo.List(ctx, filter)
		},
		Summarize: func(ctx context.Context) (performance.Summary, error) {
			return s.reviewRepo.Summarize(ctx, filter)
		},
	})
}
