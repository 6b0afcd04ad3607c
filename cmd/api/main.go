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
	_ "time/tzdata"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/teacher-attendance-go/internal/service/attendance"
	reportService "github.com/cmlabs-hris/teacher-attendance-go/internal/service/report"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			slog.Error("Error running migrations", "error", err)
			os.Exit(1)
		}
	}

	registry := metrics.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	hub := sse.NewHub()

	txManager := postgresql.NewTxManager(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	earlyDepartureRepo := postgresql.NewEarlyDepartureRepository(db)
	schoolConfigRepo := postgresql.NewSchoolConfigRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		earlyDepartureRepo,
		schoolConfigRepo,
		attendanceService.WithEventHub(hub),
		attendanceService.WithMetrics(recorder),
	)
	reportSvc := reportService.NewReportService(attendanceRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)
	eventsHandler := appHTTP.NewEventsHandler(JWTService, hub)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Metrics:        metrics.Handler(registry),
		},
		JWTService,
		attendanceHandler,
		reportHandler,
		eventsHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
