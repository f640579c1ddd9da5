package http

import (
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Record(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// filter reads the shared list/summary/export query parameters.
func (h *attendanceHandlerImpl) filter(w http.ResponseWriter, r *http.Request) (attendance.AttendanceFilter, bool) {
	params, ok := pageParams(w, r, attendance.DefaultLimit)
	if !ok {
		return attendance.AttendanceFilter{}, false
	}

	q := newQueryParser(r)
	filter := attendance.AttendanceFilter{
		Params:     params,
		EmployeeID: q.String("employeeId"),
		Status:     q.String("status"),
		SortOrder:  q.String("sortOrder"),
	}
	if err := filter.ParseDates(q.String("startDate"), q.String("endDate")); err != nil {
		response.HandleError(w, err)
		return attendance.AttendanceFilter{}, false
	}
	return filter, true
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// Record implements AttendanceHandler. The body names the action.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.record(w, r, req)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.shortcut(w, r, attendance.ActionCheckIn)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.shortcut(w, r, attendance.ActionCheckOut)
}

func (h *attendanceHandlerImpl) shortcut(w http.ResponseWriter, r *http.Request, action string) {
	var req attendance.CheckRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	req.Action = action
	h.record(w, r, req)
}

func (h *attendanceHandlerImpl) record(w http.ResponseWriter, r *http.Request, req attendance.CheckRequest) {
	result, err := h.attendanceService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Action == attendance.ActionCheckOut {
		response.SuccessWithMessage(w, "Check-out successful", result)
		return
	}
	response.Created(w, "Check-in successful", result)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Summary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	body, err := h.attendanceService.Export(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, xlsxContentType, "attendance.xlsx", body)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Correct implements AttendanceHandler.
func (h *attendanceHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req attendance.CorrectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	result, err := h.attendanceService.Correct(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}
