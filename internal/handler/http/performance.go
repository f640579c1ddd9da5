package http

import (
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
)

type PerformanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Analytics(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type performanceHandlerImpl struct {
	reviewService performance.ReviewService
}

func NewPerformanceHandler(reviewService performance.ReviewService) PerformanceHandler {
	return &performanceHandlerImpl{reviewService: reviewService}
}

func reviewFilter(q *queryParser) performance.ReviewFilter {
	return performance.ReviewFilter{
		EmployeeID: q.String("employeeId"),
		Status:     q.String("status"),
		ReviewType: q.String("reviewType"),
	}
}

func (h *performanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	params, ok := pageParams(w, r, performance.DefaultLimit)
	if !ok {
		return
	}

	filter := reviewFilter(newQueryParser(r))
	filter.Params = params

	result, err := h.reviewService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, result)
}

func (h *performanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req performance.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.reviewService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Performance review created successfully", result)
}

func (h *performanceHandlerImpl) Analytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviewService.Analytics(r.Context(), reviewFilter(newQueryParser(r)))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *performanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.reviewService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Update edits a draft or applies {action: submit|approve|acknowledge}.
func (h *performanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req performance.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	result, err := h.reviewService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Performance review updated successfully", result)
}
