package task

import (
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

const DefaultLimit = 20

type CreateTaskRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo     []string `json:"assignedTo" validate:"min=1,dive,uuid"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	DueDate        string   `json:"dueDate" validate:"required,datetime=2006-01-02"`
	EstimatedHours float64  `json:"estimatedHours" validate:"gte=0"`
	Tags           []string `json:"tags" validate:"omitempty,dive,max=50"`

	Start time.Time `json:"-"`
	Due   time.Time `json:"-"`
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Priority == "" {
		r.Priority = string(PriorityMedium)
	}
	errs := validator.Struct(r)

	start, okStart := validator.IsValidDate(r.StartDate)
	due, okDue := validator.IsValidDate(r.DueDate)
	if okStart && okDue {
		if !due.After(start) {
			errs.Add("dueDate", "dueDate must be after startDate")
		}
		r.Start, r.Due = start, due
	}
	r.AssignedTo = dedupe(r.AssignedTo)
	return errs.Err()
}

type UpdateTaskRequest struct {
	ID             string    `json:"-"`
	Title          *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string   `json:"description" validate:"omitempty,max=5000"`
	Priority       *string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status         *string   `json:"status" validate:"omitempty,oneof=todo in_progress review completed cancelled"`
	AssignedTo     *[]string `json:"assignedTo"`
	StartDate      *string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate        *string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	EstimatedHours *float64  `json:"estimatedHours" validate:"omitempty,gte=0"`
	ActualHours    *float64  `json:"actualHours" validate:"omitempty,gte=0"`
	Tags           *[]string `json:"tags"`
}

func (r *UpdateTaskRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Title == nil && r.Description == nil && r.Priority == nil && r.Status == nil &&
		r.AssignedTo == nil && r.StartDate == nil && r.DueDate == nil &&
		r.EstimatedHours == nil && r.ActualHours == nil && r.Tags == nil {
		errs.Add("request", "at least one field must be provided")
	}
	if r.AssignedTo != nil {
		ids := dedupe(*r.AssignedTo)
		if len(ids) == 0 {
			errs.Add("assignedTo", "assignedTo must contain at least 1 item(s) or character(s)")
		}
		for _, id := range ids {
			if !validator.IsValidUUID(id) {
				errs.Add("assignedTo", "assignedTo must contain valid ids")
				break
			}
		}
		r.AssignedTo = &ids
	}
	if r.Tags != nil {
		for _, tag := range *r.Tags {
			if len(tag) > 50 {
				errs.Add("tags", "tags must not exceed 50 characters")
				break
			}
		}
	}
	return errs.Err()
}

// ProgressOnly reports whether the update touches only status and actual
// hours, the fields an assignee may change.
func (r *UpdateTaskRequest) ProgressOnly() bool {
	return r.Title == nil && r.Description == nil && r.Priority == nil &&
		r.AssignedTo == nil && r.StartDate == nil && r.DueDate == nil &&
		r.EstimatedHours == nil && r.Tags == nil
}

type CommentRequest struct {
	TaskID  string `json:"-"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

func (r *CommentRequest) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	return validator.Struct(r).Err()
}

type TaskFilter struct {
	pagination.Params
	Scope      policy.Scope
	AssignedTo string
	Status     string
	Priority   string
	Search     string
	// Now anchors the overdue count.
	Now time.Time
}

func (f *TaskFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [todo in_progress review completed cancelled]")
	}
	if f.Priority != "" && !validator.IsInSlice(f.Priority, []string{"low", "medium", "high", "urgent"}) {
		errs.Add("priority", "priority must be one of [low medium high urgent]")
	}
	if f.AssignedTo != "" && !validator.IsValidUUID(f.AssignedTo) {
		errs.Add("assignedTo", "assignedTo must be a valid id")
	}
	return errs.Err()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
