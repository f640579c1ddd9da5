package attendance

import (
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

const DefaultLimit = 30

const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// CheckRequest is the body of POST /attendance and the check-in/out shortcuts.
type CheckRequest struct {
	Action       string  `json:"action" validate:"omitempty,oneof=check_in check_out"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
	Location     *string `json:"location" validate:"omitempty,max=255"`
	BreakMinutes *int    `json:"breakMinutes" validate:"omitempty,gte=0,lte=720"`
}

func (r *CheckRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Action == "" {
		errs.Add("action", "action is required")
	}
	return errs.Err()
}

// CorrectionRequest lets hr fix a recorded day.
type CorrectionRequest struct {
	ID           string  `json:"-"`
	CheckInTime  *string `json:"checkInTime"`
	CheckOutTime *string `json:"checkOutTime"`
	BreakMinutes *int    `json:"breakMinutes" validate:"omitempty,gte=0,lte=720"`
	Status       *string `json:"status" validate:"omitempty,oneof=present late half_day absent on_leave"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`

	CheckIn  *time.Time `json:"-"`
	CheckOut *time.Time `json:"-"`
}

func (r *CorrectionRequest) Validate() error {
	errs := validator.Struct(r)
	if r.CheckInTime != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckInTime); ok {
			r.CheckIn = &t
		} else {
			errs.Add("checkInTime", "checkInTime must be an RFC3339 timestamp")
		}
	}
	if r.CheckOutTime != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckOutTime); ok {
			r.CheckOut = &t
		} else {
			errs.Add("checkOutTime", "checkOutTime must be an RFC3339 timestamp")
		}
	}
	if r.CheckIn != nil && r.CheckOut != nil && !r.CheckOut.After(*r.CheckIn) {
		errs.Add("checkOutTime", "checkOutTime must be after checkInTime")
	}
	if r.CheckInTime == nil && r.CheckOutTime == nil && r.BreakMinutes == nil && r.Status == nil && r.Notes == nil {
		errs.Add("request", "at least one field must be provided")
	}
	return errs.Err()
}

type AttendanceFilter struct {
	pagination.Params
	Scope      policy.Scope
	EmployeeID string
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
	SortOrder  string
}

// ParseDates validates the raw start/end query values and stores them.
func (f *AttendanceFilter) ParseDates(start, end string) error {
	var errs validator.ValidationErrors
	if start != "" {
		if d, ok := validator.IsValidDate(start); ok {
			f.StartDate = &d
		} else {
			errs.Add("startDate", "startDate must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if d, ok := validator.IsValidDate(end); ok {
			f.EndDate = &d
		} else {
			errs.Add("endDate", "endDate must be YYYY-MM-DD")
		}
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	return errs.Err()
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [present late half_day absent on_leave]")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid id")
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs.Add("sortOrder", "sortOrder must be asc or desc")
	}
	return errs.Err()
}
