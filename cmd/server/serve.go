package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/api"
	"gwi.com/synthetic-respondents/internal/config"
	"gwi.com/synthetic-respondents/internal/core"
	"gwi.com/synthetic-respondents/internal/metrics"
	"gwi.com/synthetic-respondents/internal/observability"
	"gwi.com/synthetic-respondents/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.LoadConfig(); err != nil {
		return err
	}
	cfg := config.AppConfig

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	if cfg.Tracing.Endpoint != "" {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName, version)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
		logger.Info("tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	m := metrics.NewMetrics()

	// The archive is optional; both interfaces stay nil when it is off.
	var archive core.Archive
	var studyReader api.StudyArchive
	if cfg.DatabaseURL != "" {
		dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbStore.Close()
		archive, studyReader = dbStore, dbStore
		logger.Info("study archive enabled", zap.String("database", cfg.DatabaseURL))
	}

	llmService, err := core.NewLLMService(ctx, cfg.Inference, m, logger)
	if err != nil {
		return err
	}
	defer llmService.Close()

	personaService := core.NewPersonaService(llmService, cfg.Temperatures.Persona, m, archive, logger)
	studyService := core.NewStudyService(llmService, core.StudyOptions{
		InterviewTemperature: cfg.Temperatures.Interview,
		SummaryTemperature:   cfg.Temperatures.Summary,
		FailureMode:          cfg.Study.FailureMode,
		PersonaConcurrency:   cfg.Study.PersonaConcurrency,
	}, m, archive, logger)

	apiHandler := api.NewAPIHandler(personaService, studyService, llmService, m, studyReader, logger)
	router := api.NewRouter(apiHandler, cfg.CORSOrigins, logger)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// A study is personas x questions sequential model calls.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", serverAddr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
