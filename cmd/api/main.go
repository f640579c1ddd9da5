package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/config"
	"github.com/etms-hr/etms-backend-go/internal/domain/attendance"
	"github.com/etms-hr/etms-backend-go/internal/domain/payroll"
	appHTTP "github.com/etms-hr/etms-backend-go/internal/handler/http"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
	"github.com/etms-hr/etms-backend-go/internal/pkg/cron"
	"github.com/etms-hr/etms-backend-go/internal/pkg/database"
	"github.com/etms-hr/etms-backend-go/internal/pkg/jwt"
	"github.com/etms-hr/etms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/etms-hr/etms-backend-go/internal/service/attendance"
	serviceAuth "github.com/etms-hr/etms-backend-go/internal/service/auth"
	departmentService "github.com/etms-hr/etms-backend-go/internal/service/department"
	employeeService "github.com/etms-hr/etms-backend-go/internal/service/employee"
	leaveService "github.com/etms-hr/etms-backend-go/internal/service/leave"
	payrollService "github.com/etms-hr/etms-backend-go/internal/service/payroll"
	performanceService "github.com/etms-hr/etms-backend-go/internal/service/performance"
	taskService "github.com/etms-hr/etms-backend-go/internal/service/task"
	"github.com/go-chi/httplog/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.App.IsDevelopment())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "etms-api"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)
	response.SetDevelopment(cfg.App.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	rules, err := attendance.NewRules(cfg.Attendance.LateCutoff, cfg.Attendance.Timezone, cfg.Attendance.StandardHours)
	if err != nil {
		return err
	}
	if rules, err = rules.WithWorkDays(cfg.Attendance.WorkDays); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_WORK_DAYS: %w", err)
	}
	rates, err := payrollRates(cfg)
	if err != nil {
		return err
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("error creating jwt service: %w", err)
	}

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	reviewRepo := postgresql.NewReviewRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	revocationRepo := postgresql.NewRevocationRepository(db)

	revoked, err := revocationRepo.ListActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("error loading revoked tokens: %w", err)
	}
	JWTService.RestoreRevoked(revoked)

	authSvc := serviceAuth.NewAuthService(userRepo, employeeRepo, revocationRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(tx, employeeRepo, departmentRepo, userRepo)
	departmentSvc := departmentService.NewDepartmentService(departmentRepo, employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, rules, cfg.Attendance.SweepHour)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRepo, employeeRepo)
	taskSvc := taskService.NewTaskService(taskRepo, employeeRepo)
	reviewSvc := performanceService.NewReviewService(reviewRepo, employeeRepo)
	payrollSvc := payrollService.NewPayrollService(tx, payrollRepo, employeeRepo, attendanceRepo, leaveRepo, rates)

	router := appHTTP.NewRouter(cfg.App, logger, JWTService, appHTTP.Handlers{
		Auth:        appHTTP.NewAuthHandler(authSvc),
		Employee:    appHTTP.NewEmployeeHandler(employeeSvc),
		Department:  appHTTP.NewDepartmentHandler(departmentSvc),
		Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:       appHTTP.NewLeaveHandler(leaveSvc),
		Task:        appHTTP.NewTaskHandler(taskSvc),
		Performance: appHTTP.NewPerformanceHandler(reviewSvc),
		Payroll:     appHTTP.NewPayrollHandler(payrollSvc),
	})

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func payrollRates(cfg *config.Config) (payroll.Rates, error) {
	multiplier, err := decimal.NewFromString(cfg.Payroll.OvertimeMultiplier)
	if err != nil {
		return payroll.Rates{}, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %w", err)
	}
	taxRate, err := decimal.NewFromString(cfg.Payroll.TaxRate)
	if err != nil {
		return payroll.Rates{}, fmt.Errorf("invalid PAYROLL_TAX_RATE: %w", err)
	}
	return payroll.Rates{
		WorkingDays:        cfg.Payroll.WorkingDays,
		StandardHours:      cfg.Attendance.StandardHours,
		OvertimeMultiplier: multiplier,
		TaxRate:            taxRate,
	}, nil
}
