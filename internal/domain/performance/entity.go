package performance

import (
	"time"

	"github.com/etms-hr/etms-backend-go/internal/pkg/stats"
)

type ReviewType string

const (
	TypeAnnual    ReviewType = "annual"
	TypeQuarterly ReviewType = "quarterly"
	TypeProbation ReviewType = "probation"
	TypeProject   ReviewType = "project"
)

type Status string

const (
	StatusDraft        Status = "draft"
	StatusSubmitted    Status = "submitted"
	StatusApproved     Status = "approved"
	StatusAcknowledged Status = "acknowledged"
)

var AllStatuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusAcknowledged}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Ratings are category scores from 1 to 5.
type Ratings struct {
	QualityOfWork int `json:"qualityOfWork" validate:"required,min=1,max=5"`
	Productivity  int `json:"productivity" validate:"required,min=1,max=5"`
	Communication int `json:"communication" validate:"required,min=1,max=5"`
	Teamwork      int `json:"teamwork" validate:"required,min=1,max=5"`
	Initiative    int `json:"initiative" validate:"required,min=1,max=5"`
	Punctuality   int `json:"punctuality" validate:"required,min=1,max=5"`
}

// Overall is the mean of all categories rounded to two decimals.
func (r Ratings) Overall() float64 {
	sum := r.QualityOfWork + r.Productivity + r.Communication + r.Teamwork + r.Initiative + r.Punctuality
	return stats.Round2(float64(sum) / 6)
}

type Review struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	ReviewerID       string     `json:"reviewerId"`
	ReviewType       ReviewType `json:"reviewType"`
	PeriodStart      time.Time  `json:"periodStart"`
	PeriodEnd        time.Time  `json:"periodEnd"`
	Ratings          Ratings    `json:"ratings"`
	OverallRating    float64    `json:"overallRating"`
	Goals            []string   `json:"goals"`
	Strengths        *string    `json:"strengths,omitempty"`
	Improvements     *string    `json:"improvements,omitempty"`
	ReviewerComments *string    `json:"reviewerComments,omitempty"`
	EmployeeComments *string    `json:"employeeComments,omitempty"`
	Status           Status     `json:"status"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy       *string    `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	AcknowledgedAt   *time.Time `json:"acknowledgedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Join
	EmployeeName  *string `json:"employeeName,omitempty"`
	ReviewerEmail *string `json:"reviewerEmail,omitempty"`
}

// Submit moves a draft to submitted.
func (r *Review) Submit(at time.Time) error {
	if r.Status != StatusDraft {
		return ErrInvalidTransition
	}
	r.Status = StatusSubmitted
	r.SubmittedAt = &at
	return nil
}

// Approve moves a submitted review to approved.
func (r *Review) Approve(approverID string, at time.Time) error {
	if r.Status != StatusSubmitted {
		return ErrInvalidTransition
	}
	r.Status = StatusApproved
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	return nil
}

// Acknowledge records the employee's sign-off on an approved review.
func (r *Review) Acknowledge(comments *string, at time.Time) error {
	if r.Status != StatusApproved {
		return ErrInvalidTransition
	}
	r.Status = StatusAcknowledged
	r.AcknowledgedAt = &at
	if comments != nil {
		r.EmployeeComments = comments
	}
	return nil
}

type Summary struct {
	Total         int64            `json:"total"`
	ByStatus      map[Status]int64 `json:"byStatus"`
	AverageRating float64          `json:"averageRating"`
}

// Analytics aggregates reviews for the analytics endpoint.
type Analytics struct {
	TotalReviews       int64              `json:"totalReviews"`
	AverageOverall     float64            `json:"averageOverall"`
	CategoryAverages   map[string]float64 `json:"categoryAverages"`
	RatingDistribution map[int]int64      `json:"ratingDistribution"`
	ByType             map[string]int64   `json:"byType"`
	TopPerformers      []Performer        `json:"topPerformers"`
	PendingAcknowledge int64              `json:"pendingAcknowledgement"`
}

type Performer struct {
	EmployeeID    string  `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	AverageRating float64 `json:"averageRating"`
	Reviews       int64   `json:"reviews"`
}
