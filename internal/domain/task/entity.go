package task

import (
	"time"

	"github.com/etms-hr/etms-backend-go/internal/pkg/stats"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var AllStatuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusReview, StatusTodo, StatusCancelled},
	StatusReview:     {StatusCompleted, StatusInProgress, StatusCancelled},
}

// CanTransition reports whether a task may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Priority       Priority   `json:"priority"`
	Status         Status     `json:"status"`
	AssignedBy     string     `json:"assignedBy"`
	AssignedTo     []string   `json:"assignedTo"`
	StartDate      time.Time  `json:"startDate"`
	DueDate        time.Time  `json:"dueDate"`
	CompletedDate  *time.Time `json:"completedDate,omitempty"`
	EstimatedHours float64    `json:"estimatedHours"`
	ActualHours    float64    `json:"actualHours"`
	Tags           []string   `json:"tags"`
	DeletedAt      *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Comments []Comment `json:"comments,omitempty"`

	// Join
	AssignerEmployeeID *string `json:"-"`
}

// ApplyStatus moves the task to next and stamps the completion date the
// first time it reaches completed.
func (t *Task) ApplyStatus(next Status, at time.Time) error {
	if !CanTransition(t.Status, next) {
		return ErrInvalidTransition
	}
	if next == StatusCompleted && t.CompletedDate == nil {
		t.CompletedDate = &at
	}
	t.Status = next
	return nil
}

// Overdue reports whether the task is open past its due date.
func (t Task) Overdue(now time.Time) bool {
	if t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return now.After(t.DueDate.Add(24 * time.Hour))
}

type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`

	// Join
	AuthorEmail *string `json:"authorEmail,omitempty"`
}

// Totals are the raw aggregates a repository collects for a summary.
type Totals struct {
	ByStatus       map[Status]int64
	Overdue        int64
	EstimatedHours float64
	ActualHours    float64
}

type Summary struct {
	Total          int64            `json:"total"`
	ByStatus       map[Status]int64 `json:"byStatus"`
	Overdue        int64            `json:"overdue"`
	CompletionRate float64          `json:"completionRate"`
	EstimatedHours float64          `json:"estimatedHours"`
	ActualHours    float64          `json:"actualHours"`
	Efficiency     float64          `json:"efficiency"`
}

// Summarize derives completion rate and efficiency from raw totals.
// Efficiency is estimated over actual hours as a percentage.
func Summarize(t Totals) Summary {
	s := Summary{
		ByStatus:       make(map[Status]int64, len(AllStatuses)),
		Overdue:        t.Overdue,
		EstimatedHours: stats.Round2(t.EstimatedHours),
		ActualHours:    stats.Round2(t.ActualHours),
	}
	for _, st := range AllStatuses {
		s.ByStatus[st] = t.ByStatus[st]
		s.Total += t.ByStatus[st]
	}
	s.CompletionRate = stats.Percent(float64(s.ByStatus[StatusCompleted]), float64(s.Total))
	s.Efficiency = stats.Percent(t.EstimatedHours, t.ActualHours)
	return s
}
