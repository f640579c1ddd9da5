package performance

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"golang.org/x/sync/errgroup"
)

const topPerformers = 5

// Analytics runs the aggregate queries concurrently over the caller's scope.
func (s *ReviewServiceImpl) Analytics(ctx context.Context, filter performance.ReviewFilter) (performance.Analytics, error) {
	if err := s.scoped(ctx, &filter); err != nil {
		return performance.Analytics{}, err
	}

	var (
		summary      performance.Summary
		categories   map[string]float64
		distribution map[int]int64
		byType       map[string]int64
		top          []performance.Performer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.reviewRepo.Summarize(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.reviewRepo.CategoryAverages(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		distribution, err = s.reviewRepo.RatingDistribution(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.reviewRepo.CountByType(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.reviewRepo.TopPerformers(gctx, filter, topPerformers)
		return err
	})
	if err := g.Wait(); err != nil {
		return performance.Analytics{}, err
	}

	if top == nil {
		top = []performance.Performer{}
	}

	return performance.Analytics{
		TotalReviews:       summary.Total,
		AverageOverall:     summary.AverageRating,
		CategoryAverages:   categories,
		RatingDistribution: distribution,
		ByType:             byType,
		TopPerformers:      top,
		PendingAcknowledge: summary.ByStatus[performance.StatusApproved],
	}, nil
}
