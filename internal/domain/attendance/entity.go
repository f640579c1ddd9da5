package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/pkg/stats"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
	StatusOnLeave Status = "on_leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusAbsent, StatusOnLeave:
		return true
	}
	return false
}

// LeaveOverrideNote marks a check-in that replaced an on_leave row.
const LeaveOverrideNote = "checked in during approved leave"

// HalfDayHours is the worked-hours threshold below which a day counts as half.
const HalfDayHours = 4.0

type Attendance struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	Date          time.Time  `json:"date"`
	CheckInTime   *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime  *time.Time `json:"checkOutTime,omitempty"`
	BreakMinutes  int        `json:"breakMinutes"`
	WorkingHours  float64    `json:"workingHours"`
	OvertimeHours float64    `json:"overtimeHours"`
	Status        Status     `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	Location      *string    `json:"location,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Join
	EmployeeName *string `json:"employeeName,omitempty"`
	EmployeeCode *string `json:"employeeCode,omitempty"`
}

// DefaultWorkDays is Monday to Friday.
const DefaultWorkDays = "mon,tue,wed,thu,fri"

// Rules holds the site policy used to derive attendance fields.
type Rules struct {
	Cutoff        time.Duration // wall-clock time after which a check-in is late
	Location      *time.Location
	StandardHours float64
	WorkDays      map[time.Weekday]bool
}

// NewRules parses an HH:MM cutoff and an IANA time zone.
func NewRules(cutoff string, timezone string, standardHours float64) (Rules, error) {
	t, err := time.Parse("15:04", cutoff)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid late cutoff %q: %w", cutoff, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	if standardHours <= 0 {
		standardHours = 8
	}
	workDays, err := ParseWorkDays(DefaultWorkDays)
	if err != nil {
		return Rules{}, err
	}
	return Rules{
		Cutoff:        time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute,
		Location:      loc,
		StandardHours: standardHours,
		WorkDays:      workDays,
	}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWorkDays reads a comma separated list of weekday names such as
// "mon,tue,wed". Full names are accepted too.
func ParseWorkDays(list string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if len(name) > 3 {
			name = name[:3]
		}
		d, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", strings.TrimSpace(part))
		}
		days[d] = true
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one work day is required")
	}
	return days, nil
}

// WithWorkDays returns a copy of r using the given work-day list.
func (r Rules) WithWorkDays(list string) (Rules, error) {
	days, err := ParseWorkDays(list)
	if err != nil {
		return Rules{}, err
	}
	r.WorkDays = days
	return r, nil
}

// IsWorkDay reports whether t falls on a work day in the site zone. An
// empty set means every day is a work day.
func (r Rules) IsWorkDay(t time.Time) bool {
	if len(r.WorkDays) == 0 {
		return true
	}
	return r.WorkDays[t.In(r.loc()).Weekday()]
}

func (r Rules) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// InZone converts t to the site zone.
func (r Rules) InZone(t time.Time) time.Time {
	return t.In(r.loc())
}

// LocalDate is the calendar day of t in the site zone, as a UTC midnight.
func (r Rules) LocalDate(t time.Time) time.Time {
	y, m, d := t.In(r.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatusForCheckIn is late when the local clock time is past the cutoff.
func (r Rules) StatusForCheckIn(t time.Time) Status {
	local := t.In(r.loc())
	clock := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second
	if clock > r.Cutoff {
		return StatusLate
	}
	return StatusPresent
}

// ComputeHours returns worked and overtime hours rounded to two decimals.
func (r Rules) ComputeHours(in, out time.Time, breakMinutes int) (working, overtime float64) {
	worked := out.Sub(in) - time.Duration(breakMinutes)*time.Minute
	if worked < 0 {
		worked = 0
	}
	working = stats.Round2(worked.Hours())
	if working > r.StandardHours {
		overtime = stats.Round2(working - r.StandardHours)
	}
	return working, overtime
}

// StatusAfterCheckOut downgrades short days to half_day.
func StatusAfterCheckOut(current Status, workingHours float64) Status {
	if workingHours < HalfDayHours {
		return StatusHalfDay
	}
	return current
}

type Summary struct {
	ByStatus           map[Status]int64 `json:"byStatus"`
	TotalWorkingHours  float64          `json:"totalWorkingHours"`
	TotalOvertimeHours float64          `json:"totalOvertimeHours"`
}

// EmployeeSummary aggregates one employee's attendance over a date range.
type EmployeeSummary struct {
	EmployeeID     string  `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	EmployeeCode   string  `json:"employeeCode"`
	TotalDays      int64   `json:"totalDays"`
	PresentDays    int64   `json:"presentDays"`
	LateDays       int64   `json:"lateDays"`
	HalfDays       int64   `json:"halfDays"`
	AbsentDays     int64   `json:"absentDays"`
	LeaveDays      int64   `json:"leaveDays"`
	WorkingHours   float64 `json:"workingHours"`
	OvertimeHours  float64 `json:"overtimeHours"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// Finalize derives the attendance rate: days attended over recorded days.
func (s *EmployeeSummary) Finalize() {
	attended := s.PresentDays + s.LateDays + s.HalfDays
	s.AttendanceRate = stats.Percent(float64(attended), float64(s.TotalDays))
	s.WorkingHours = stats.Round2(s.WorkingHours)
	s.OvertimeHours = stats.Round2(s.OvertimeHours)
}

// SweepResult counts rows inserted by the end-of-day sweep.
type SweepResult struct {
	Absent  int64
	OnLeave int64
}
