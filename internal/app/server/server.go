package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfsys/internal/domain/audit"
	"perfsys/internal/domain/auth"
	"perfsys/internal/domain/core"
	"perfsys/internal/domain/evaluations"
	"perfsys/internal/domain/goals"
	"perfsys/internal/domain/notifications"
	"perfsys/internal/domain/pips"
	"perfsys/internal/domain/training"
	"perfsys/internal/platform/config"
	"perfsys/internal/platform/db"
	"perfsys/internal/platform/metrics"
	"perfsys/internal/transport/http/api"
	audithandler "perfsys/internal/transport/http/handlers/audit"
	authhandler "perfsys/internal/transport/http/handlers/auth"
	corehandler "perfsys/internal/transport/http/handlers/core"
	evaluationshandler "perfsys/internal/transport/http/handlers/evaluations"
	goalshandler "perfsys/internal/transport/http/handlers/goals"
	notificationshandler "perfsys/internal/transport/http/handlers/notifications"
	pipshandler "perfsys/internal/transport/http/handlers/pips"
	traininghandler "perfsys/internal/transport/http/handlers/training"
	"perfsys/internal/transport/http/middleware"
)

type App struct {
	Config    config.Config
	Pool      *pgxpool.Pool
	Router    http.Handler
	Collector *metrics.Collector
}

// New connects to the database, runs migrations and seeding when the
// config asks for them, and wires the full HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, Pool: pool, Collector: metrics.New()}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) buildRouter() http.Handler {
	cfg := a.Config

	coreSvc := core.NewService(core.NewStore(a.Pool))
	goalsSvc := goals.NewService(goals.NewStore(a.Pool))
	evaluationsSvc := evaluations.NewService(evaluations.NewStore(a.Pool))
	pipsSvc := pips.NewService(pips.NewStore(a.Pool))
	trainingSvc := training.NewService(training.NewStore(a.Pool))
	notifySvc := notifications.New(notifications.NewStore(a.Pool), nil)
	auditSvc := audit.New(a.Pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Collector))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermMetricsRead)).
				Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
					api.Success(w, a.Collector.Snapshot(), middleware.GetRequestID(r.Context()))
				})
		}

		authhandler.NewHandler(a.Pool, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		corehandler.NewHandler(coreSvc, auditSvc).RegisterRoutes(r)
		goalshandler.NewHandler(goalsSvc, notifySvc, auditSvc).RegisterRoutes(r)
		evaluationshandler.NewHandler(evaluationsSvc, coreSvc, notifySvc, auditSvc).RegisterRoutes(r)
		pipshandler.NewHandler(pipsSvc, auditSvc).RegisterRoutes(r)
		traininghandler.NewHandler(trainingSvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
