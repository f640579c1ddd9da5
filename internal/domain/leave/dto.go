package leave

import (
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
)

const DefaultLimit = 10

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionCancel  = "cancel"
)

type CreateLeaveRequest struct {
	EmployeeID string `json:"employeeId" validate:"omitempty,uuid"`
	LeaveType  string `json:"leaveType" validate:"required,oneof=annual sick personal maternity paternity emergency unpaid"`
	StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"required,max=1000"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	errs := validator.Struct(r)

	start, okStart := validator.IsValidDate(r.StartDate)
	end, okEnd := validator.IsValidDate(r.EndDate)
	if okStart && okEnd {
		if !end.After(start) {
			errs.Add("endDate", "endDate must be after startDate")
		}
		r.Start, r.End = start, end
	}
	return errs.Err()
}

type ActionRequest struct {
	ID              string  `json:"-"`
	Action          string  `json:"action" validate:"required,oneof=approve reject cancel"`
	RejectionReason *string `json:"rejectionReason" validate:"omitempty,max=1000"`
}

func (r *ActionRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Action == ActionReject && (r.RejectionReason == nil || validator.IsEmpty(*r.RejectionReason)) {
		errs.Add("rejectionReason", "rejectionReason is required when rejecting")
	}
	return errs.Err()
}

type LeaveFilter struct {
	pagination.Params
	Scope      policy.Scope
	EmployeeID string
	Status     string
	LeaveType  string
	From       *time.Time
	To         *time.Time
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of [pending approved rejected cancelled]")
	}
	if f.LeaveType != "" && !Type(f.LeaveType).Valid() {
		errs.Add("leaveType", "leaveType is not a known leave type")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid id")
	}
	return errs.Err()
}
