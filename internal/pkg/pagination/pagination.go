package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

const MaxLimit = 100

type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Parse reads page and limit from a query string. Missing values fall back to
// page 1 and defaultLimit; a limit above MaxLimit is capped.
func Parse(q url.Values, defaultLimit int) (Params, error) {
	p := Params{Page: 1, Limit: defaultLimit}
	var errs validator.ValidationErrors

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			errs.Add("page", "page must be a positive integer")
		} else {
			p.Page = v
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			errs.Add("limit", "limit must be a positive integer")
		} else {
			p.Limit = v
		}
	}
	if err := errs.Err(); err != nil {
		return Params{}, err
	}
	return p.Normalize(defaultLimit), nil
}

// Normalize applies defaults and the MaxLimit cap.
func (p Params) Normalize(defaultLimit int) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// Result is what every list operation returns.
type Result[T any, S any] struct {
	Records    []T
	Pagination Meta
	Summary    S
}
