package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/inbound/httpapi"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/detector"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/jobstore"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/llm"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/report"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/validator"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/workspace"
	"github.com/abdidvp/pourfix/internal/application"
	appconfig "github.com/abdidvp/pourfix/internal/config"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/logger"
	"github.com/abdidvp/pourfix/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	var native bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload/poll/download HTTP API",
		Long:  "Start the HTTP API. Settings come from the environment (PORT, DATA_DIR, JOB_STORE, REDIS_URL, SQLITE_PATH, OPENAI_API_KEY, OTEL_EXPORTER_OTLP_ENDPOINT, LOG_LEVEL).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			return serve(ctx, cfg, native)
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "Only run checkers that need no Node.js tooling")
	return cmd
}

func serve(ctx context.Context, cfg appconfig.Config, native bool) error {
	// OTel before the logger so trace ids are available to the handler.
	tel, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	logger.Setup(logger.Options{JSON: cfg.IsProduction(), Level: cfg.LogLevel})
	if tel != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	}

	store, closeStore, err := openJobStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	var fallback domain.FixSuggester
	if cfg.OpenAI.Enabled() {
		fallback = llm.New(cfg.OpenAI)
	}
	validators := validator.All(validator.ExecRunner{})
	if native {
		validators = validator.Native()
	}

	sc := scanner.New()
	ws := workspace.New(cfg.DataDir, sc)
	reports := report.New(cfg.DataDir)
	coord := application.NewCoordinator(application.CoordinatorDeps{
		Store:     store,
		Workspace: ws,
		Detector:  detector.New(),
		Router:    application.NewRouter(remediators(fallback)...),
		Validator: application.NewValidateService(validators, nil),
		Reports:   reports,
	})
	jobs := application.NewJobService(store, coord)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	routerCfg := httpapi.RouterConfig{MaxUploadBytes: workspace.DefaultLimits().MaxTotalBytes}
	if cfg.OTel.Enabled() {
		routerCfg.ServiceName = cfg.OTel.ServiceName
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(jobs, ws, reports), routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port, "job_store", cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	// Started jobs are never cancelled; let them finish.
	jobs.Wait()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}
	slog.InfoContext(shutdownCtx, "shutdown complete")
	return nil
}

// openJobStore builds the configured JobStore and its closer.
func openJobStore(ctx context.Context, cfg appconfig.StoreConfig) (domain.JobStore, func(), error) {
	closer := func(c io.Closer) func() {
		return func() {
			if err := c.Close(); err != nil {
				slog.Warn("closing job store", "error", err)
			}
		}
	}

	switch cfg.Backend {
	case appconfig.StoreRedis:
		s, err := jobstore.OpenRedis(ctx, cfg.RedisURL, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		slog.InfoContext(ctx, "redis job store connected")
		return s, closer(s), nil
	case appconfig.StoreSQLite:
		s, err := jobstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite job store: %w", err)
		}
		return s, closer(s), nil
	default:
		return jobstore.NewMemory(), func() {}, nil
	}
}
