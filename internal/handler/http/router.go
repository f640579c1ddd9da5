package http

import (
	"log/slog"
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/config"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/middleware"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
	"github.com/etms-hr/etms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// Handlers groups every resource handler mounted by NewRouter.
type Handlers struct {
	Auth        AuthHandler
	Employee    EmployeeHandler
	Department  DepartmentHandler
	Attendance  AttendanceHandler
	Leave       LeaveHandler
	Task        TaskHandler
	Performance PerformanceHandler
	Payroll     PayrollHandler
}

func NewRouter(cfg config.AppConfig, logger *slog.Logger, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(middleware.Recoverer)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	apiKey := middleware.RequireAPIKey(cfg.APIKey)
	hrOnly := middleware.RequireRoles(user.RolesHR...)
	management := middleware.RequireRoles(user.RolesManagement...)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.Verifier(JWTService))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", h.Auth.Me)
				r.Post("/logout", h.Auth.Logout)
				r.With(hrOnly, apiKey).Post("/register", h.Auth.Register)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.List)
				r.With(hrOnly, apiKey).Post("/", h.Employee.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Employee.Get)
					r.Put("/", h.Employee.Update)
					r.With(hrOnly, apiKey).Delete("/", h.Employee.Delete)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Department.List)
				r.Get("/{id}", h.Department.Get)

				// Admin and HR only
				r.Group(func(r chi.Router) {
					r.Use(hrOnly)
					r.Post("/", h.Department.Create)
					r.Put("/{id}", h.Department.Update)
					r.Delete("/{id}", h.Department.Delete)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Post("/", h.Attendance.Record)
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/summary", h.Attendance.Summary)
				r.With(management).Get("/export", h.Attendance.Export)
				r.Get("/{id}", h.Attendance.Get)
				r.With(hrOnly).Put("/{id}", h.Attendance.Correct)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", h.Leave.List)
				r.Post("/", h.Leave.Create)
				r.Get("/balance", h.Leave.Balance)
				r.Get("/{id}", h.Leave.Get)
				r.Put("/{id}", h.Leave.Act)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Task.List)
				r.With(management).Post("/", h.Task.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Task.Get)
					r.Put("/", h.Task.Update)
					r.Delete("/", h.Task.Delete)
					r.Post("/comments", h.Task.AddComment)
				})
			})

			r.Route("/performance", func(r chi.Router) {
				r.Get("/", h.Performance.List)
				r.With(management).Post("/", h.Performance.Create)
				r.Get("/analytics", h.Performance.Analytics)
				r.Get("/{id}", h.Performance.Get)
				r.Put("/{id}", h.Performance.Update)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", h.Payroll.List)
				r.With(hrOnly, apiKey).Post("/generate", h.Payroll.Generate)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Payroll.Get)
					r.With(hrOnly).Put("/status", h.Payroll.UpdateStatus)
					r.Get("/payslip", h.Payroll.Payslip)
				})
			})
		})
	})
	return r
}
