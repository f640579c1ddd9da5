package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etms-hr/etms-backend-go/internal/domain/leave"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/task"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError_Status(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", validator.ValidationErrors{{Field: "email", Message: "email is required"}}, http.StatusBadRequest, "Validation failed"},
		{"unauthenticated", user.ErrUnauthenticated, http.StatusUnauthorized, user.ErrUnauthenticated.Error()},
		{"denied", policy.Decision{Reason: "only admin or hr_manager can manage payroll"}.Err(), http.StatusForbidden, "only admin or hr_manager can manage payroll"},
		{"wrapped not found", fmt.Errorf("failed to get task: %w", task.ErrTaskNotFound), http.StatusNotFound, task.ErrTaskNotFound.Error()},
		{"overlap", leave.ErrOverlappingLeave, http.StatusConflict, leave.ErrOverlappingLeave.Error()},
		{"business rule", leave.ErrInsufficientBalance, http.StatusBadRequest, leave.ErrInsufficientBalance.Error()},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "endDate", Message: "endDate must be after startDate"}})

	body := decode(t, rec)
	assert.Equal(t, map[string]interface{}{"endDate": "endDate must be after startDate"}, body["errors"])
}

func TestServerError_Development(t *testing.T) {
	t.Cleanup(func() { SetDevelopment(false) })

	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("db down"))
	body := decode(t, rec)
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "stack")

	SetDevelopment(true)
	rec = httptest.NewRecorder()
	HandleError(rec, errors.New("db down"))
	body = decode(t, rec)
	assert.Equal(t, "db down", body["error"])
	assert.NotEmpty(t, body["stack"])
}

func TestList_EmptyPage(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, pagination.Result[string, map[string]int]{
		Pagination: pagination.NewMeta(pagination.Params{Page: 3, Limit: 10}, 12),
		Summary:    map[string]int{"total": 12},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": [],
		"pagination": {"page": 3, "limit": 10, "total": 12, "pages": 2},
		"summary": {"total": 12}
	}`, rec.Body.String())
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "application/pdf", "payslip.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="payslip.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}
