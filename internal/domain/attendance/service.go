package attendance

import (
	"context"

	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
)

type AttendanceService interface {
	Record(ctx context.Context, req CheckRequest) (Attendance, error)
	CheckIn(ctx context.Context, req CheckRequest) (Attendance, error)
	CheckOut(ctx context.Context, req CheckRequest) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	Correct(ctx context.Context, req CorrectionRequest) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) (pagination.Result[Attendance, Summary], error)
	Summary(ctx context.Context, filter AttendanceFilter) ([]EmployeeSummary, error)
	Export(ctx context.Context, filter AttendanceFilter) ([]byte, error)
	SweepAbsences(ctx context.Context) error
}
