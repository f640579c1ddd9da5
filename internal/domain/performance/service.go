package performance

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type ReviewService interface {
	Create(ctx context.Context, req CreateReviewRequest) (Review, error)
	GetByID(ctx context.Context, id string) (Review, error)
	Update(ctx context.Context, req UpdateReviewRequest) (Review, error)
	List(ctx context.Context, filter ReviewFilter) (pagination.Result[Review, Summary], error)
	Analytics(ctx context.Context, filter ReviewFilter) (Analytics, error)
}
