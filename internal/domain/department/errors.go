package department

import "errors"

var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameExists = errors.New("department name or code already exists")
	ErrDepartmentHasMembers = errors.New("department still has employees assigned")
	ErrHeadNotFound         = errors.New("department head employee not found")
)
