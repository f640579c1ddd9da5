// Package query runs the count, page and summary reads of a list request.
package query

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"golang.org/x/sync/errgroup"
)

// Reader is the read side of a scoped repository for one filter value.
type Reader[T any, S any] struct {
	Count     func(ctx context.Context) (int64, error)
	Find      func(ctx context.Context) ([]T, error)
	Summarize func(ctx context.Context) (S, error)
}

// Execute runs the three reads concurrently and assembles the page. A page
// past the last one yields an empty record list.
func Execute[T any, S any](ctx context.Context, params pagination.Params, r Reader[T, S]) (pagination.Result[T, S], error) {
	var (
		total   int64
		records []T
		summary S
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = r.Count(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		records, err = r.Find(gctx)
		return err
	})

	if r.Summarize != nil {
		g.Go(func() error {
			var err error
			summary, err = r.Summarize(gctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return pagination.Result[T, S]{}, err
	}

	if records == nil {
		records = []T{}
	}

	return pagination.Result[T, S]{
		Records:    records,
		Pagination: pagination.NewMeta(params, total),
		Summary:    summary,
	}, nil
}
