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

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/metrics"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/attendance-engine/internal/service/correction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	ref, err := config.LoadReference(cfg.Engine.ReferenceFile)
	if err != nil {
		slog.Error("Error loading reference data", "error", err)
		os.Exit(1)
	}
	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		slog.Error("Error building engine options", "error", err)
		os.Exit(1)
	}

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

	tx := postgresql.NewTransactor(db)
	punchRepo := postgresql.NewPunchRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	processedRepo := postgresql.NewProcessedRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)

	collector := metrics.NewCollector()
	engine := attendanceService.NewEngine(engineOpts)

	attendanceSvc := attendanceService.NewAttendanceService(
		tx,
		punchRepo,
		correctionRepo,
		leaveRepo,
		processedRepo,
		staffRepo,
		engine,
		attendanceService.ServiceConfig{
			Roster:     ref.Roster,
			Policy:     ref.Policy,
			BatchLimit: cfg.Engine.BatchLimit,
			MaxPeriods: cfg.Cache.MaxPeriods,
		},
		collector,
	)
	correctionSvc := correctionService.NewCorrectionService(tx, correctionRepo, staffRepo, attendanceSvc)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	correctionHandler := appHTTP.NewCorrectionHandler(correctionSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		attendanceHandler,
		correctionHandler,
		metrics.Handler(),
	)

	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewAttendanceJobs(attendanceSvc, engineOpts.Location, cfg.Cron.RefreshInterval, cfg.Cron.PruneInterval).RegisterJobs(scheduler)
		scheduler.Start()
	}

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
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
}
