package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusTodo, StatusInProgress))
	assert.True(t, CanTransition(StatusReview, StatusCompleted))
	assert.True(t, CanTransition(StatusReview, StatusReview))
	assert.False(t, CanTransition(StatusTodo, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusInProgress))
	assert.False(t, CanTransition(StatusCancelled, StatusTodo))
}

func TestApplyStatus_CompletionDateSetOnce(t *testing.T) {
	first := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	tk := Task{Status: StatusReview}

	require.NoError(t, tk.ApplyStatus(StatusCompleted, first))
	require.NotNil(t, tk.CompletedDate)
	assert.Equal(t, first, *tk.CompletedDate)

	require.NoError(t, tk.ApplyStatus(StatusCompleted, first.Add(time.Hour)))
	assert.Equal(t, first, *tk.CompletedDate)

	assert.ErrorIs(t, tk.ApplyStatus(StatusTodo, first), ErrInvalidTransition)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Totals{
		ByStatus:       map[Status]int64{StatusCompleted: 1, StatusTodo: 2},
		EstimatedHours: 10,
		ActualHours:    12,
	})
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, 33.33, s.CompletionRate)
	assert.Equal(t, 83.33, s.Efficiency)
	assert.Equal(t, int64(0), s.ByStatus[StatusReview])

	empty := Summarize(Totals{})
	assert.Equal(t, 0.0, empty.CompletionRate)
	assert.Equal(t, 0.0, empty.Efficiency)
}

func TestOverdue(t *testing.T) {
	due := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tk := Task{Status: StatusInProgress, DueDate: due}
	assert.False(t, tk.Overdue(due.Add(12*time.Hour)))
	assert.True(t, tk.Overdue(due.Add(25*time.Hour)))

	tk.Status = StatusCompleted
	assert.False(t, tk.Overdue(due.Add(48*time.Hour)))
}

func TestUpdateTaskRequest_ProgressOnly(t *testing.T) {
	status := "in_progress"
	hours := 3.5
	req := UpdateTaskRequest{Status: &status, ActualHours: &hours}
	require.NoError(t, req.Validate())
	assert.True(t, req.ProgressOnly())

	title := "renamed"
	req.Title = &title
	assert.False(t, req.ProgressOnly())
}

func TestCreateTaskRequestValidate(t *testing.T) {
	req := CreateTaskRequest{Title: "Ship", AssignedTo: []string{}, StartDate: "2024-03-04", DueDate: "2024-03-01"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignedTo")
	assert.Contains(t, err.Error(), "dueDate")
}
