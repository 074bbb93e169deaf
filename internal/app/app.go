package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"carpulse/internal/config"
	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
	customMiddleware "carpulse/internal/middleware"
	"carpulse/internal/pricing"
	"carpulse/internal/services"
	handlers "carpulse/internal/transport/http"
	ws "carpulse/internal/websocket"
	"carpulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	Logger       *slog.Logger
	Telemetry    *infrastructure.Telemetry
	Metrics      *infrastructure.PricingMetrics
	Engine       *pricing.Engine
	Services     *ServiceContainer
	ErrorHandler *apierrors.ErrorHandler
	Validator    *customMiddleware.Validator
	LiveServer   *ws.Server

	logSink *infrastructure.LogSink
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Pricing *services.PricingService
	Health  *services.HealthService
}

// NewApplication loads configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, sink, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := New(cfg, logger)
	if err != nil {
		sink.Close()
		return nil, err
	}
	app.logSink = sink
	return app, nil
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", cfg.Server.Port))

	tel, err := infrastructure.NewTelemetry(infrastructure.TelemetryConfigFrom(cfg.Metrics), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.NewPricingMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:       cfg,
		Logger:       logger,
		Telemetry:    tel,
		Metrics:      metrics,
		ErrorHandler: apierrors.NewErrorHandler(logger, false),
		Validator:    customMiddleware.NewValidator(logger),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the engine and everything that depends on it
func (a *Application) initializeServices() error {
	engine, err := pricing.NewEngine(a.Config.Pricing.Params(), a.Logger)
	if err != nil {
		return err
	}
	a.Engine = engine

	pricingService := services.NewPricingService(engine, a.Metrics, a.Telemetry.Tracer, a.Logger)

	a.LiveServer = ws.NewServer(
		pricingService,
		a.Validator,
		a.ErrorHandler,
		a.Metrics,
		ws.OptionsFrom(a.Config.WebSocket, a.Config.Security.AllowedOrigins),
		a.Logger,
	)

	healthService := services.NewHealthService(map[string]services.ReadinessProbe{
		"pricing_engine": pricingService,
		"websocket":      a.LiveServer,
	}, a.LiveServer, a.Logger)

	a.Services = &ServiceContainer{
		Pricing: pricingService,
		Health:  healthService,
	}

	a.Logger.Info("pricing engine ready",
		slog.Int("reference_year", engine.ReferenceYear()),
		slog.Float64("expected_km_per_year", engine.Params().ExpectedKmPerYear))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware that does not wrap the ResponseWriter, safe for upgrades
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Handle("/ws/kilometraje", a.LiveServer)

	if a.Telemetry.MetricsHandler != nil {
		r.Handle("/metrics", a.Telemetry.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit
		r.Use(customMiddleware.NewOTelMiddleware(a.Telemetry.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		handlers.NewHealthHandler(a.Services.Health, a.Logger).RegisterRoutes(r)

		r.Route("/api/"+contracts.APIVersion, func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, a.ErrorHandler))
			r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes))
			r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json"))

			handlers.NewPricingHandler(a.Services.Pricing, a.Validator, a.ErrorHandler, a.Logger).RegisterRoutes(r)
		})
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run listens on the configured port until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		return a.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Stop closes live sessions, drains HTTP requests and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	var errs []error

	// Hijacked websocket connections are not tracked by http.Server
	if err := a.LiveServer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("websocket shutdown: %w", err))
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		a.Logger.Error("shutdown completed with errors", slog.String("error", err.Error()))
	} else {
		a.Logger.Info("shutdown complete")
	}

	if cerr := a.logSink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (a *Application) shutdownTimeout() time.Duration {
	if a.Config.Server.ShutdownTimeout > 0 {
		return a.Config.Server.ShutdownTimeout
	}
	return 30 * time.Second
}
