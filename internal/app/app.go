// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/bissquit/fieldops/internal/config"
	"github.com/bissquit/fieldops/internal/identity"
	"github.com/bissquit/fieldops/internal/identity/jwt"
	"github.com/bissquit/fieldops/internal/pkg/ctxlog"
	"github.com/bissquit/fieldops/internal/pkg/httputil"
	"github.com/bissquit/fieldops/internal/pkg/metrics"
	"github.com/bissquit/fieldops/internal/pkg/postgres"
	"github.com/bissquit/fieldops/internal/team"
	teammemory "github.com/bissquit/fieldops/internal/team/memory"
	teampostgres "github.com/bissquit/fieldops/internal/team/postgres"
	"github.com/bissquit/fieldops/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	catalog       *access.Catalog
	teamService   *team.Service
	identity      *identity.Service
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance.
// It refuses to start if the role policy is malformed.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	catalog, err := access.LoadCatalog(cfg.Policy.File)
	if err != nil {
		return nil, fmt.Errorf("load access policy: %w", err)
	}
	logger.Info("access policy loaded",
		"file", cfg.Policy.File,
		"roles", len(catalog.AllRoles()),
		"permissions", len(catalog.Permissions()),
	)

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		catalog:       catalog,
		metricsCancel: metricsCancel,
	}

	repo, err := app.initRepository()
	if err != nil {
		metricsCancel()
		return nil, err
	}

	app.teamService = team.NewService(repo)

	authenticator := jwt.NewAuthenticator(jwt.Config{
		SecretKey:           cfg.JWT.SecretKey,
		Issuer:              cfg.JWT.Issuer,
		AccessTokenDuration: cfg.JWT.AccessTokenDuration,
	})
	app.identity = identity.NewService(app.teamService, authenticator)

	if err := app.bootstrapOwner(); err != nil {
		app.close()
		return nil, err
	}

	go app.collectMetrics(metricsCtx)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

func (a *App) initRepository() (team.Repository, error) {
	switch a.config.Storage.Driver {
	case config.StoragePostgres:
		connectCtx, connectCancel := context.WithTimeout(context.Background(), a.config.Database.ConnectTimeout)
		defer connectCancel()

		db, err := postgres.Connect(connectCtx, postgres.Config{
			URL:             a.config.Database.URL,
			MaxOpenConns:    a.config.Database.MaxOpenConns,
			MaxIdleConns:    a.config.Database.MaxIdleConns,
			ConnMaxLifetime: a.config.Database.ConnMaxLifetime,
			ConnectAttempts: a.config.Database.ConnectAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		return teampostgres.NewRepository(db), nil
	default:
		a.logger.Warn("using in-memory user storage: users are lost on restart")
		return teammemory.NewRepository(), nil
	}
}

func (a *App) bootstrapOwner() error {
	if a.config.Bootstrap.OwnerEmail == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner, err := a.teamService.EnsureOwner(ctx, a.config.Bootstrap.OwnerName, a.config.Bootstrap.OwnerEmail)
	if err != nil {
		return fmt.Errorf("bootstrap owner: %w", err)
	}
	if owner != nil {
		a.logger.Info("bootstrap owner created", "user_id", owner.ID)
	}
	return nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"version", version.Version,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.close()

	return errors.Join(errs...)
}

func (a *App) close() {
	a.metricsCancel()
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) collectMetrics(ctx context.Context) {
	a.recordMetrics(ctx)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.recordMetrics(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) recordMetrics(ctx context.Context) {
	if a.db != nil {
		metrics.RecordDBPoolMetrics(a.db)
	}

	users, err := a.teamService.ListUsers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("failed to collect directory metrics", "error", err)
		}
		return
	}

	counts := make(map[string][2]int)
	for _, u := range users {
		c := counts[string(u.Role)]
		if u.Active {
			c[0]++
		} else {
			c[1]++
		}
		counts[string(u.Role)] = c
	}
	metrics.RecordDirectoryUsers(counts)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Catalog returns the loaded access catalog.
func (a *App) Catalog() *access.Catalog {
	return a.catalog
}

// Team returns the user directory service.
func (a *App) Team() *team.Service {
	return a.teamService
}

// Identity returns the identity service.
func (a *App) Identity() *identity.Service {
	return a.identity
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httputil.RateLimitMiddleware(a.config.Server.RateLimit, a.config.Server.RateBurst))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	accessHandler := access.NewHandler(a.catalog)
	teamHandler := team.NewHandler(a.teamService, a.catalog)
	identityHandler := identity.NewHandler(a.identity, a.catalog)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(a.identity))

			identityHandler.RegisterProtectedRoutes(r)
			accessHandler.RegisterRoutes(r)
			teamHandler.RegisterRoutes(r)
		})
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		httputil.Text(w, http.StatusOK, "OK")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, version.Get())
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
