package http

import (
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
)

type TaskHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AddComment(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

func (h *taskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	params, ok := pageParams(w, r, task.DefaultLimit)
	if !ok {
		return
	}

	q := newQueryParser(r)
	filter := task.TaskFilter{
		Params:     params,
		AssignedTo: q.String("assignedTo"),
		Status:     q.String("status"),
		Priority:   q.String("priority"),
		Search:     q.String("search"),
	}

	result, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, result)
}

func (h *taskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.taskService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created successfully", result)
}

func (h *taskHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Update accepts any subset of fields; assignees may only send status and
// actualHours.
func (h *taskHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req task.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	result, err := h.taskService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task updated successfully", result)
}

func (h *taskHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task deleted successfully", nil)
}

func (h *taskHandlerImpl) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req task.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TaskID = id

	result, err := h.taskService.AddComment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Comment added successfully", result)
}
