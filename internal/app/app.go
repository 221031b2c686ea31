package app

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/infrastructure"
	customMiddleware "bikepulse/internal/middleware"
	"bikepulse/internal/services"
	handlers "bikepulse/internal/transport/http"
	"bikepulse/internal/validation"
	ws "bikepulse/internal/websocket"
	"bikepulse/pkg/contracts"
)

// DatasetError reports a dataset that could not be loaded at startup
type DatasetError struct {
	Path string
	Err  error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("failed to load dataset %s: %v", e.Path, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub
	ErrorHandler     *apierrors.ErrorHandler
}

// NewApplication loads configuration from the environment and builds the
// application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an explicit configuration: telemetry,
// then the dataset, then services, router and server
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("build", contracts.GetFullVersionString()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	if err := app.initializeServices(ctx); err != nil {
		if shutdownErr := otelProviders.Shutdown(ctx); shutdownErr != nil {
			logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", shutdownErr.Error()))
		}
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and wires the services around it
func (a *Application) initializeServices(ctx context.Context) error {
	table, err := a.loadDataset(ctx)
	if err != nil {
		if a.Config.Dataset.Required {
			return err
		}
		a.Logger.WarnContext(ctx, "Starting without a dataset",
			slog.String("path", a.Config.Dataset.Path),
			slog.String("error", err.Error()))
	}

	a.DashboardService = services.NewDashboardService(table, a.Metrics, a.Logger)

	hub := ws.NewHub(a.Metrics, a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	a.HealthService = services.NewHealthService(a.DashboardService, hub, a.Logger)
	return nil
}

// loadDataset validates and reads the configured dataset file. Failures are
// returned as *DatasetError.
func (a *Application) loadDataset(ctx context.Context) (*dataprocessing.Table, error) {
	path := a.Config.Dataset.Path

	if err := validation.NewFileValidator(a.Logger).ValidateDatasetFile(path); err != nil {
		return nil, &DatasetError{Path: path, Err: err}
	}

	start := time.Now()
	table, err := dataprocessing.LoadFile(ctx, path, dataprocessing.LoadOptions{
		Sheet:  a.Config.Dataset.Sheet,
		Logger: a.Logger,
	})
	if err != nil {
		return nil, &DatasetError{Path: path, Err: err}
	}

	infrastructure.RecordDatasetMetrics(ctx, a.Metrics, table.Len(), time.Since(start))
	return table, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that does not wrap the ResponseWriter, so the
	// websocket upgrade can hijack the connection
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	wsHandler := ws.NewHandler(
		a.WebSocketHub,
		a.DashboardService,
		ws.NewHandlerConfig(a.Config.WebSocket, a.Config.Security, a.Config.Logging.Development),
		a.Metrics,
		a.Logger,
		a.ErrorHandler,
	)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	// Prometheus scrapes skip the logging and rate limiting chain
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	// Everything else gets the full chain:
	// OTel → Logger → Recoverer → SecureHeaders → Compress → CORS → RateLimiter → Timeout
	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics, a.Logger)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders(a.Config.Logging.Development).Handler)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, a.ErrorHandler))

		a.setupAPIRoutes(r)
		r.Get("/", handlers.ServeIndex(a.DashboardService, a.Logger))
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, a.ErrorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
}

// getCORSConfig allows the configured origins; development mode adds the
// usual local front-end ports
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: append([]string(nil), a.Config.Security.AllowedOrigins...),
		Logger:         a.Logger,
	}

	if a.Config.Logging.Development {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		)
	}

	a.Logger.Info("CORS configured",
		slog.Bool("development", a.Config.Logging.Development),
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure calls cancel
// so Run can shut down instead of exiting the process.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("dataset", a.Config.Dataset.Path),
		slog.Bool("dataset_loaded", a.DashboardService.Ready()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	a.WebSocketHub.Stop()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// The run context may already be cancelled
	return a.Stop(context.Background())
}
