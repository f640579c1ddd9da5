package performance

import (
	"context"
	"testing"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/performance"
	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bossID = "0198a0f2-7b8c-7b4a-8a2b-000000000001"
	devID  = "0198a0f2-7b8c-7b4a-8a2b-000000000002"
	opsID  = "0198a0f2-7b8c-7b4a-8a2b-000000000003"
)

type memReviews struct {
	rows   map[string]performance.Review
	racing func()
}

func (m *memReviews) Create(_ context.Context, r performance.Review) (performance.Review, error) {
	m.rows[r.ID] = r
	return r, nil
}

func (m *memReviews) GetByID(_ context.Context, id string) (performance.Review, error) {
	r, ok := m.rows[id]
	if !ok {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	return r, nil
}

func (m *memReviews) Update(_ context.Context, r performance.Review, from performance.Status) (performance.Review, error) {
	if m.racing != nil {
		m.racing()
		m.racing = nil
	}
	if m.rows[r.ID].Status != from {
		return performance.Review{}, performance.ErrInvalidTransition
	}
	m.rows[r.ID] = r
	return r, nil
}

func (m *memReviews) visible(filter performance.ReviewFilter) []performance.Review {
	var out []performance.Review
	for _, r := range m.rows {
		if filter.Scope.Allows(r.EmployeeID) || (filter.ReviewerID != "" && r.ReviewerID == filter.ReviewerID) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memReviews) Count(_ context.Context, filter performance.ReviewFilter) (int64, error) {
	return int64(len(m.visible(filter))), nil
}

func (m *memReviews) List(_ context.Context, filter performance.ReviewFilter) ([]performance.Review, error) {
	return m.visible(filter), nil
}

func (m *memReviews) Summarize(_ context.Context, filter performance.ReviewFilter) (performance.Summary, error) {
	s := performance.Summary{ByStatus: map[performance.Status]int64{}}
	var sum float64
	for _, r := range m.visible(filter) {
		s.Total++
		s.ByStatus[r.Status]++
		sum += r.OverallRating
	}
	if s.Total > 0 {
		s.AverageRating = sum / float64(s.Total)
	}
	return s, nil
}

func (m *memReviews) CategoryAverages(context.Context, performance.ReviewFilter) (map[string]float64, error) {
	return map[string]float64{"teamwork": 4}, nil
}

func (m *memReviews) RatingDistribution(_ context.Context, filter performance.ReviewFilter) (map[int]int64, error) {
	out := map[int]int64{}
	for _, r := range m.visible(filter) {
		out[int(r.OverallRating+0.5)]++
	}
	return out, nil
}

func (m *memReviews) CountByType(_ context.Context, filter performance.ReviewFilter) (map[string]int64, error) {
	out := map[string]int64{}
	for _, r := range m.visible(filter) {
		out[string(r.ReviewType)]++
	}
	return out, nil
}

func (m *memReviews) TopPerformers(context.Context, performance.ReviewFilter, int) ([]performance.Performer, error) {
	return nil, nil
}

type memEmployees struct {
	employee.EmployeeRepository
	reports servicetest.Reports
}

func (m memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	switch id {
	case bossID, devID, opsID:
		return employee.Employee{ID: id}, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m memEmployees) ListDirectReportIDs(ctx context.Context, managerID string) ([]string, error) {
	return m.reports.ListDirectReportIDs(ctx, managerID)
}

var (
	boss = servicetest.As("u-boss", user.RoleManager, bossID)
	dev  = servicetest.As("u-dev", user.RoleEmployee, devID)
	hr   = servicetest.As("u-hr", user.RoleHRManager, "")
)

func newTestService() (*ReviewServiceImpl, *memReviews) {
	repo := &memReviews{rows: map[string]performance.Review{}}
	svc := NewReviewService(repo, memEmployees{reports: servicetest.Reports{bossID: {devID}}}).(*ReviewServiceImpl)
	svc.now = servicetest.Clock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	return svc, repo
}

func createReq(employeeID string) performance.CreateReviewRequest {
	return performance.CreateReviewRequest{
		EmployeeID:  employeeID,
		ReviewType:  "quarterly",
		PeriodStart: "2026-01-01",
		PeriodEnd:   "2026-03-31",
		Ratings:     performance.Ratings{QualityOfWork: 5, Productivity: 4, Communication: 4, Teamwork: 5, Initiative: 3, Punctuality: 4},
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)
	assert.Equal(t, performance.StatusDraft, got.Status)
	assert.Equal(t, "u-boss", got.ReviewerID)
	assert.Equal(t, 4.17, got.OverallRating)
	assert.NotNil(t, got.Goals)

	_, err = svc.Create(boss, createReq(opsID))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Create(boss, createReq(bossID))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Create(dev, createReq(devID))
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestLifecycle(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	_, err = svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionApprove})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Update(hr, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionApprove})
	assert.ErrorIs(t, err, performance.ErrInvalidTransition)

	got, err := svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionSubmit})
	require.NoError(t, err)
	assert.Equal(t, performance.StatusSubmitted, got.Status)

	_, err = svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Strengths: servicetest.Ptr("late edit")})
	assert.ErrorIs(t, err, performance.ErrNotEditable)

	_, err = svc.Update(dev, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionAcknowledge})
	assert.ErrorIs(t, err, performance.ErrInvalidTransition)

	got, err = svc.Update(hr, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, "u-hr", *got.ApprovedBy)

	_, err = svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionAcknowledge})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	got, err = svc.Update(dev, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionAcknowledge, EmployeeComments: servicetest.Ptr("thanks")})
	require.NoError(t, err)
	assert.Equal(t, performance.StatusAcknowledged, got.Status)
	assert.Equal(t, "thanks", *got.EmployeeComments)
}

func TestUpdate_StaleStatusIsRejected(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)
	_, err = svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionSubmit})
	require.NoError(t, err)

	repo.racing = func() {
		r := repo.rows[created.ID]
		r.Status = performance.StatusApproved
		repo.rows[created.ID] = r
	}
	_, err = svc.Update(hr, performance.UpdateReviewRequest{ID: created.ID, Action: performance.ActionApprove})
	assert.ErrorIs(t, err, performance.ErrInvalidTransition)
}

func TestUpdate_DraftContent(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(boss, createReq(devID))
	require.NoError(t, err)

	ratings := performance.Ratings{QualityOfWork: 1, Productivity: 1, Communication: 1, Teamwork: 1, Initiative: 1, Punctuality: 1}
	got, err := svc.Update(boss, performance.UpdateReviewRequest{ID: created.ID, Ratings: &ratings, Goals: &[]string{" ship ", ""}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.OverallRating)
	assert.Equal(t, []string{"ship"}, got.Goals)

	_, err = svc.Update(dev, performance.UpdateReviewRequest{ID: created.ID, Strengths: servicetest.Ptr("me")})
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestList_ReviewerSeesOwnReviews(t *testing.T) {
	svc, repo := newTestService()
	repo.rows["r1"] = performance.Review{ID: "r1", EmployeeID: opsID, ReviewerID: "u-boss", Status: performance.StatusDraft, OverallRating: 3}
	repo.rows["r2"] = performance.Review{ID: "r2", EmployeeID: opsID, ReviewerID: "u-hr", Status: performance.StatusApproved, OverallRating: 5}
	repo.rows["r3"] = performance.Review{ID: "r3", EmployeeID: devID, ReviewerID: "u-hr", Status: performance.StatusApproved, OverallRating: 4}

	res, err := svc.List(boss, performance.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = svc.List(dev, performance.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "r3", res.Records[0].ID)

	res, err = svc.List(hr, performance.ReviewFilter{ReviewerID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Summary.Total)
}

func TestAnalytics(t *testing.T) {
	svc, repo := newTestService()
	repo.rows["r1"] = performance.Review{ID: "r1", EmployeeID: devID, ReviewType: performance.TypeAnnual, Status: performance.StatusApproved, OverallRating: 4}
	repo.rows["r2"] = performance.Review{ID: "r2", EmployeeID: opsID, ReviewType: performance.TypeQuarterly, Status: performance.StatusAcknowledged, OverallRating: 2}

	got, err := svc.Analytics(hr, performance.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalReviews)
	assert.Equal(t, 3.0, got.AverageOverall)
	assert.Equal(t, int64(1), got.PendingAcknowledge)
	assert.Equal(t, map[string]int64{"annual": 1, "quarterly": 1}, got.ByType)
	assert.NotNil(t, got.TopPerformers)

	got, err = svc.Analytics(dev, performance.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalReviews)
}
