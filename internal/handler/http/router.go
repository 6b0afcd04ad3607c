package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1/attendance", func(r chi.Router) {
		// Authenticated by the short-lived SSE token in the query string
		r.Get("/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			// Teacher self-service
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
				r.Use(middleware.RequireTeacher)
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/early-departures", attendanceHandler.RequestEarlyDeparture)
			})

			r.With(
				middleware.RequirePermission(user.PermissionAttendanceViewOwn),
				middleware.RequireTeacher,
			).Get("/today", attendanceHandler.Today)

			// Reports
			r.With(middleware.RequirePermission(
				user.PermissionAttendanceViewOwn,
				user.PermissionAttendanceViewAll,
				user.PermissionReportsView,
			)).Get("/stats", reportHandler.GetStats)
			r.Route("/reports/monthly", func(r chi.Router) {
				r.With(middleware.RequirePermission(
					user.PermissionAttendanceViewOwn,
					user.PermissionReportsView,
				)).Get("/", reportHandler.GetMonthlyReport)
				r.With(middleware.RequirePermission(user.PermissionReportsView)).
					Get("/export", reportHandler.ExportMonthlyReport)
			})

			// Reads are scoped to the caller unless they hold view_all
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(
					user.PermissionAttendanceViewOwn,
					user.PermissionAttendanceViewAll,
				))
				r.Get("/", attendanceHandler.List)
				r.Get("/{id}", attendanceHandler.Get)
				r.Get("/early-departures", attendanceHandler.ListEarlyDepartures)
				r.Get("/early-departures/{id}", attendanceHandler.GetEarlyDeparture)
			})

			r.With(middleware.RequirePermission(user.PermissionAttendanceOverride)).
				Put("/{id}/override", attendanceHandler.Override)

			// Supervisor inbox
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceApprove))
				r.Post("/early-departures/{id}/approve", attendanceHandler.ApproveEarlyDeparture)
				r.Post("/early-departures/{id}/reject", attendanceHandler.RejectEarlyDeparture)
				r.Get("/events/token", eventsHandler.GetSSEToken)
			})
		})
	})

	return r
}
