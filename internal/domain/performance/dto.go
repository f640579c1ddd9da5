package performance

import (
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

const DefaultLimit = 10

const (
	ActionSubmit      = "submit"
	ActionApprove     = "approve"
	ActionAcknowledge = "acknowledge"
)

type CreateReviewRequest struct {
	EmployeeID       string   `json:"employeeId" validate:"required,uuid"`
	ReviewType       string   `json:"reviewType" validate:"required,oneof=annual quarterly probation project"`
	PeriodStart      string   `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd        string   `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	Ratings          Ratings  `json:"ratings"`
	Goals            []string `json:"goals" validate:"omitempty,dive,max=500"`
	Strengths        *string  `json:"strengths" validate:"omitempty,max=5000"`
	Improvements     *string  `json:"improvements" validate:"omitempty,max=5000"`
	ReviewerComments *string  `json:"reviewerComments" validate:"omitempty,max=5000"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateReviewRequest) Validate() error {
	errs := validator.Struct(r)
	start, okStart := validator.IsValidDate(r.PeriodStart)
	end, okEnd := validator.IsValidDate(r.PeriodEnd)
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("periodEnd", "periodEnd must not be before periodStart")
		}
		r.Start, r.End = start, end
	}
	return errs.Err()
}

// UpdateReviewRequest is either a content edit or a state action.
type UpdateReviewRequest struct {
	ID               string    `json:"-"`
	Action           string    `json:"action" validate:"omitempty,oneof=submit approve acknowledge"`
	Ratings          *Ratings  `json:"ratings"`
	Goals            *[]string `json:"goals"`
	Strengths        *string   `json:"strengths" validate:"omitempty,max=5000"`
	Improvements     *string   `json:"improvements" validate:"omitempty,max=5000"`
	ReviewerComments *string   `json:"reviewerComments" validate:"omitempty,max=5000"`
	EmployeeComments *string   `json:"employeeComments" validate:"omitempty,max=5000"`
}

func (r *UpdateReviewRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Action == "" && !r.HasContent() {
		errs.Add("request", "provide an action or at least one field to update")
	}
	if r.Action != "" && r.HasContent() {
		errs.Add("action", "action cannot be combined with content changes")
	}
	if r.Action != ActionAcknowledge && r.EmployeeComments != nil {
		errs.Add("employeeComments", "employeeComments can only be sent when acknowledging")
	}
	if r.Goals != nil {
		goals := make([]string, 0, len(*r.Goals))
		for _, g := range *r.Goals {
			if g = strings.TrimSpace(g); g != "" {
				goals = append(goals, g)
			}
		}
		r.Goals = &goals
	}
	return errs.Err()
}

// HasContent reports whether the request edits review content.
func (r *UpdateReviewRequest) HasContent() bool {
	return r.Ratings != nil || r.Goals != nil || r.Strengths != nil || r.Improvements != nil || r.ReviewerComments != nil
}

type ReviewFilter struct {
	pagination.Params
	Scope      policy.Scope
	EmployeeID string
	Status     string
	ReviewType string
	// ReviewerID widens a scoped listing with reviews the caller wrote.
	ReviewerID string
}

func (f *ReviewFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [draft submitted approved acknowledged]")
	}
	if f.ReviewType != "" && !validator.IsInSlice(f.ReviewType, []string{"annual", "quarterly", "probation", "project"}) {
		errs.Add("reviewType", "reviewType must be one of [annual quarterly probation project]")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid id")
	}
	return errs.Err()
}
