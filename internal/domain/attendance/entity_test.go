package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T) Rules {
	t.Helper()
	r, err := NewRules("09:00", "UTC", 8)
	require.NoError(t, err)
	return r
}

func TestStatusForCheckIn(t *testing.T) {
	r := mustRules(t)
	day := func(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC) }

	assert.Equal(t, StatusLate, r.StatusForCheckIn(day(9, 15)))
	assert.Equal(t, StatusPresent, r.StatusForCheckIn(day(9, 0)))
	assert.Equal(t, StatusPresent, r.StatusForCheckIn(day(8, 45)))
}

func TestStatusForCheckIn_Timezone(t *testing.T) {
	r, err := NewRules("09:00", "Asia/Jakarta", 8)
	require.NoError(t, err)

	// 02:30 UTC is 09:30 in Jakarta.
	assert.Equal(t, StatusLate, r.StatusForCheckIn(time.Date(2024, 3, 4, 2, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), r.LocalDate(time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)))
}

func TestStatusForCheckIn_DSTDay(t *testing.T) {
	r, err := NewRules("09:00", "Europe/Berlin", 8)
	require.NoError(t, err)
	berlin := r.Location

	// Clocks jump from 02:00 to 03:00 on 2026-03-29 and back on 2026-10-25.
	assert.Equal(t, StatusPresent, r.StatusForCheckIn(time.Date(2026, 3, 29, 8, 45, 0, 0, berlin)))
	assert.Equal(t, StatusLate, r.StatusForCheckIn(time.Date(2026, 3, 29, 9, 15, 0, 0, berlin)))
	assert.Equal(t, StatusPresent, r.StatusForCheckIn(time.Date(2026, 10, 25, 8, 45, 0, 0, berlin)))
	assert.Equal(t, StatusLate, r.StatusForCheckIn(time.Date(2026, 10, 25, 9, 15, 0, 0, berlin)))
}

func TestWorkDays(t *testing.T) {
	r := mustRules(t)
	sunday := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	monday := sunday.AddDate(0, 0, 1)

	assert.False(t, r.IsWorkDay(sunday))
	assert.True(t, r.IsWorkDay(monday))

	r, err := r.WithWorkDays("Sunday, mon")
	require.NoError(t, err)
	assert.True(t, r.IsWorkDay(sunday))
	assert.False(t, r.IsWorkDay(monday.AddDate(0, 0, 1)))

	_, err = r.WithWorkDays("mon,funday")
	assert.Error(t, err)
	_, err = ParseWorkDays(" , ")
	assert.Error(t, err)
}

func TestNewRules_Invalid(t *testing.T) {
	_, err := NewRules("nine", "UTC", 8)
	assert.Error(t, err)
	_, err = NewRules("09:00", "Mars/Base", 8)
	assert.Error(t, err)
}

func TestComputeHours(t *testing.T) {
	r := mustRules(t)
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	working, overtime := r.ComputeHours(in, in.Add(10*time.Hour), 30)
	assert.Equal(t, 9.5, working)
	assert.Equal(t, 1.5, overtime)

	working, overtime = r.ComputeHours(in, in.Add(7*time.Hour+20*time.Minute), 0)
	assert.Equal(t, 7.33, working)
	assert.Equal(t, 0.0, overtime)

	working, _ = r.ComputeHours(in, in.Add(10*time.Minute), 60)
	assert.Equal(t, 0.0, working)
}

func TestStatusAfterCheckOut(t *testing.T) {
	assert.Equal(t, StatusHalfDay, StatusAfterCheckOut(StatusPresent, 3.5))
	assert.Equal(t, StatusLate, StatusAfterCheckOut(StatusLate, 8))
}

func TestEmployeeSummaryFinalize(t *testing.T) {
	s := EmployeeSummary{TotalDays: 3, PresentDays: 1, LateDays: 1, AbsentDays: 1, WorkingHours: 16.666}
	s.Finalize()
	assert.Equal(t, 66.67, s.AttendanceRate)
	assert.Equal(t, 16.67, s.WorkingHours)
}

func TestCorrectionRequestValidate(t *testing.T) {
	in, out := "2024-03-04T17:00:00Z", "2024-03-04T09:00:00Z"
	req := CorrectionRequest{CheckInTime: &in, CheckOutTime: &out}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkOutTime")

	req = CorrectionRequest{}
	assert.Error(t, req.Validate())
}
