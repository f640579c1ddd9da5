package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrManagerNotFound    = errors.New("manager not found")
	ErrSelfManager        = errors.New("an employee cannot be their own manager")
	ErrManagerCycle       = errors.New("manager assignment would create a reporting cycle")
	ErrFieldNotEditable   = errors.New("you can only update your phone and address")
	ErrAlreadyTerminated  = errors.New("employee is already terminated")
)
