package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"macrocycle/internal/analysis"
	"macrocycle/internal/config"
	"macrocycle/internal/infrastructure"
	transport "macrocycle/internal/transport/http"
)

// Application is the HTTP service container.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Analyzer  *analysis.Analyzer
	Version   string
}

// NewApplication builds the service from a loaded configuration.
func NewApplication(cfg *config.Config, logger *slog.Logger, version string) (*Application, error) {
	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, version, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		Analyzer:  analysis.NewAnalyzer(logger, tel.Metrics),
		Version:   version,
	}
	a.Router = transport.NewRouter(transport.RouterDeps{
		Logger:    logger,
		Telemetry: tel,
		Service:   a.Analyzer,
		Options:   analysis.OptionsFromConfig(cfg.Analysis, logger),
		Server:    cfg.Server,
		Version:   version,
	})
	a.createServer()
	return a, nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
	}
}

// Run serves on the configured port until ctx is cancelled, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("version", a.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("base_quarter", a.Config.Analysis.BaseQuarter))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			_ = a.Telemetry.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
	}
	return a.Stop(context.WithoutCancel(ctx))
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Server stopped", slog.Duration("took", time.Since(start)))
	return errors.Join(errs...)
}
