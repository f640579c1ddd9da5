package performance

import "context"

type ReviewRepository interface {
	Create(ctx context.Context, r Review) (Review, error)
	GetByID(ctx context.Context, id string) (Review, error)
	// Update writes r only while the stored status is still from.
	Update(ctx context.Context, r Review, from Status) (Review, error)

	Count(ctx context.Context, filter ReviewFilter) (int64, error)
	List(ctx context.Context, filter ReviewFilter) ([]Review, error)
	Summarize(ctx context.Context, filter ReviewFilter) (Summary, error)

	CategoryAverages(ctx context.Context, filter ReviewFilter) (map[string]float64, error)
	RatingDistribution(ctx context.Context, filter ReviewFilter) (map[int]int64, error)
	CountByType(ctx context.Context, filter ReviewFilter) (map[string]int64, error)
	TopPerformers(ctx context.Context, filter ReviewFilter, limit int) ([]Performer, error)
}
